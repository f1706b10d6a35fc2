package cli

import (
	"os"
	"path/filepath"
)

// roadmapDirName is the on-disk directory every command locates by
// walking upward from the working directory (spec.md §6 On-disk layout).
const roadmapDirName = ".roadmap"

// locateRoadmapDir walks upward from start looking for a .roadmap
// directory, returning its path. Fails if none is found before
// reaching the filesystem root.
func locateRoadmapDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, roadmapDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &ExitError{Code: ExitStoreError, Message: "no " + roadmapDirName + " directory found above " + start}
		}
		dir = parent
	}
}
