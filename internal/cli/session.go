package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/proofcarrying/roadmap/internal/config"
	"github.com/proofcarrying/roadmap/internal/resolve"
	"github.com/proofcarrying/roadmap/internal/session"
)

// openSession locates .roadmap/, loads its optional config.yaml, and
// opens a Session whose resolver mode follows opts.JSON: Strict for JSON
// output (agent-facing) and Lenient for interactive text output,
// mirroring spec.md §4.4.
func openSession(opts *RootOptions) (*session.Session, error) {
	repoRoot := opts.RepoRoot
	if repoRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, WrapExitError("determine working directory", err)
		}
		repoRoot = cwd
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		roadmapDir, err := locateRoadmapDir(repoRoot)
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(roadmapDir, "state.db")
		repoRoot = filepath.Dir(roadmapDir)
	}

	cfgPath := filepath.Join(filepath.Dir(dbPath), "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, WrapExitError("load config", err)
	}

	mode := resolve.Lenient
	if opts.JSON {
		mode = resolve.Strict
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	sess, err := session.Open(dbPath, repoRoot, cfg, mode, logger)
	if err != nil {
		return nil, WrapExitError("open session", err)
	}
	return sess, nil
}
