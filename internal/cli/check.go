package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/proofcarrying/roadmap/internal/model"
)

func newCheckCommand(opts *RootOptions) *cobra.Command {
	var force bool
	var reason string
	var timeoutMS int

	cmd := &cobra.Command{
		Use:   "check [ref]",
		Short: "Execute a claim's falsifier and record the resulting proof",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			hasTimeout := cmd.Flags().Changed("timeout")
			return runCheck(opts, ref, force, reason, timeoutMS, hasTimeout, cmd)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "record an attestation instead of executing prove_cmd")
	cmd.Flags().StringVar(&reason, "reason", "", "justification for an attestation (required with --force)")
	cmd.Flags().IntVar(&timeoutMS, "timeout", 0, "kill prove_cmd after this many milliseconds (0 = no limit; defaults to config's prove_timeout_ms)")
	return cmd
}

func runCheck(opts *RootOptions, ref string, force bool, reason string, timeoutMS int, hasTimeout bool, cmd *cobra.Command) error {
	sess, err := openSession(opts)
	if err != nil {
		return renderError(opts, cmd, "open session", err)
	}
	defer sess.Close()

	// SIGINT/SIGTERM cancel ctx, which the Runner passes on to the child
	// through exec.Cmd.Cancel and WaitDelay.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	claim, err := resolveOrActive(ctx, sess, ref)
	if err != nil {
		return renderError(opts, cmd, "resolve claim", err)
	}

	if !hasTimeout {
		timeoutMS = sess.Config.ProveTimeoutMS
	}

	runner := sess.Runner()
	var outcome struct {
		Proof  model.Proof
		Status model.Status
	}
	if force {
		out, err := runner.Attest(ctx, claim, reason)
		if err != nil {
			return renderError(opts, cmd, "attest claim", err)
		}
		outcome.Proof, outcome.Status = out.Proof, out.Status
	} else {
		timeout := time.Duration(timeoutMS) * time.Millisecond
		out, err := runner.Check(ctx, claim, timeout)
		if err != nil {
			return renderError(opts, cmd, "check claim", err)
		}
		outcome.Proof, outcome.Status = out.Proof, out.Status
	}

	if err := renderClaim(opts, cmd, claim, outcome.Status, &outcome.Proof); err != nil {
		return err
	}
	if outcome.Status == model.StatusBroken {
		if !opts.JSON {
			fmt.Fprintln(cmd.ErrOrStderr(), outcome.Proof.StderrTail)
		}
		return &ExitError{Code: ExitVerificationFailed, Message: "prove_cmd failed"}
	}
	return nil
}
