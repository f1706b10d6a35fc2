// Package verify implements the Verification Runner: it turns a claim
// into a new proof record by executing its prove_cmd under the Law of
// Hygiene, or by recording an operator attestation. See spec.md §4.6.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/proofcarrying/roadmap/internal/model"
)

// tailLimit is the number of trailing bytes retained from stdout and
// stderr (spec.md §4.6: "≤4 KiB tail retained").
const tailLimit = 4 * 1024

// gracePeriod is how long the Runner waits after asking the child to
// terminate before escalating to a kill (spec.md §5 Cancellation).
const gracePeriod = 3 * time.Second

// ProofAppender is the Store surface the Runner writes through.
type ProofAppender interface {
	AppendProof(ctx context.Context, p model.Proof) (model.Proof, error)
}

// RepoState is the RepoContext surface the Runner consults for the
// hygiene gate and the commit id a proof is pinned to.
type RepoState interface {
	Head(ctx context.Context) (string, bool, error)
	IsClean(ctx context.Context) (bool, error)
}

// Runner executes prove_cmd for a claim and records the outcome.
type Runner struct {
	store  ProofAppender
	repo   RepoState
	logger *slog.Logger
}

// New builds a Runner bound to a proof store and a repo snapshot.
func New(store ProofAppender, repo RepoState, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: store, repo: repo, logger: logger}
}

// Outcome is the rendered result of a single check invocation.
type Outcome struct {
	Proof  model.Proof
	Status model.Status // PROVEN or BROKEN
}

// Check executes claim.ProveCmd per spec.md §4.6 steps 1-6. timeout <=
// 0 means no deadline is imposed beyond ctx's own.
func (r *Runner) Check(ctx context.Context, claim model.Claim, timeout time.Duration) (Outcome, error) {
	if claim.ProveCmd == "" {
		return Outcome{}, model.NewError(model.ErrNoProveCommand, "claim has no prove_cmd")
	}

	clean, err := r.repo.IsClean(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("check working tree: %w", err)
	}
	if !clean {
		return Outcome{}, model.NewError(model.ErrDirtyWorkingTree, "working tree is dirty; commit before checking")
	}

	head, hasHead, err := r.repo.Head(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("read repo head: %w", err)
	}
	if !hasHead {
		return Outcome{}, model.NewError(model.ErrNoCommits, "repository has no commits")
	}

	result := r.execute(ctx, claim.ProveCmd, timeout)

	proof := model.Proof{
		ClaimID:    claim.ID,
		Cmd:        claim.ProveCmd,
		ExitCode:   result.exitCode,
		CommitID:   head,
		DurationMS: result.duration.Milliseconds(),
		StdoutTail: result.stdout,
		StderrTail: result.stderr,
		Kind:       model.KindVerified,
	}

	appended, err := r.store.AppendProof(ctx, proof)
	if err != nil {
		return Outcome{}, fmt.Errorf("append proof: %w", err)
	}

	status := model.StatusProven
	if appended.ExitCode != 0 {
		status = model.StatusBroken
	}
	r.logger.Info("check completed",
		slog.Int64("claim_id", claim.ID),
		slog.Int("exit_code", appended.ExitCode),
		slog.String("status", string(status)),
	)
	return Outcome{Proof: appended, Status: status}, nil
}

// Attest records an operator attestation in place of an executed
// proof (spec.md §4.6 Attested variant). Hygiene is still required:
// the tree must be clean and head must exist, since attestations are
// pinned to a commit like any other proof.
func (r *Runner) Attest(ctx context.Context, claim model.Claim, reason string) (Outcome, error) {
	if reason == "" {
		return Outcome{}, model.NewError(model.ErrScopeSyntax, "attestation requires a non-empty reason")
	}

	clean, err := r.repo.IsClean(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("check working tree: %w", err)
	}
	if !clean {
		return Outcome{}, model.NewError(model.ErrDirtyWorkingTree, "working tree is dirty; commit before attesting")
	}

	head, hasHead, err := r.repo.Head(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("read repo head: %w", err)
	}
	if !hasHead {
		return Outcome{}, model.NewError(model.ErrNoCommits, "repository has no commits")
	}

	proof := model.Proof{
		ClaimID:  claim.ID,
		Cmd:      "",
		ExitCode: 0,
		CommitID: head,
		Kind:     model.KindAttested,
		Reason:   reason,
	}
	appended, err := r.store.AppendProof(ctx, proof)
	if err != nil {
		return Outcome{}, fmt.Errorf("append proof: %w", err)
	}
	r.logger.Info("attested", slog.Int64("claim_id", claim.ID), slog.String("reason", reason))
	return Outcome{Proof: appended, Status: model.StatusProven}, nil
}

type execResult struct {
	exitCode int
	stdout   string
	stderr   string
	duration time.Duration
}

// execute runs cmd through the platform shell (spec.md §6 Shell
// contract), capturing bounded tails of stdout/stderr and honoring an
// optional timeout with a graceful-then-kill escalation.
func (r *Runner) execute(ctx context.Context, cmd string, timeout time.Duration) execResult {
	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shell, flag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	child := exec.CommandContext(runCtx, shell, flag, cmd)
	child.Cancel = func() error {
		return child.Process.Signal(os.Interrupt)
	}
	child.WaitDelay = gracePeriod

	stdout := newTailWriter(tailLimit)
	stderr := newTailWriter(tailLimit)
	child.Stdout = stdout
	child.Stderr = stderr

	start := time.Now()
	runErr := child.Run()
	duration := time.Since(start)

	result := execResult{
		stdout:   stdout.String(),
		stderr:   stderr.String(),
		duration: duration,
	}

	if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.exitCode = model.TimeoutExitCode
		result.stderr += "\n[timeout: process killed after exceeding its deadline]"
		return result
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.exitCode = 0
	case errors.As(runErr, &exitErr):
		result.exitCode = exitErr.ExitCode()
	default:
		result.exitCode = model.TimeoutExitCode
		result.stderr += fmt.Sprintf("\n[execution error: %v]", runErr)
	}
	return result
}
