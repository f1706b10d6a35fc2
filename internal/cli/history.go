package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/proofcarrying/roadmap/internal/model"
)

func newHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [ref]",
		Short: "Show the proof log for a claim, or every claim if omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			return runHistory(opts, ref, cmd)
		},
	}
}

func runHistory(opts *RootOptions, ref string, cmd *cobra.Command) error {
	sess, err := openSession(opts)
	if err != nil {
		return renderError(opts, cmd, "open session", err)
	}
	defer sess.Close()

	ctx := context.Background()

	if ref != "" {
		claim, err := sess.Resolve(ctx, ref)
		if err != nil {
			return renderError(opts, cmd, "resolve claim", err)
		}
		history, err := sess.Store.ProofHistory(ctx, claim.ID)
		if err != nil {
			return renderError(opts, cmd, "load proof history", err)
		}
		return renderProofs(opts, cmd, history)
	}

	claims, err := sess.Store.ListClaims(ctx)
	if err != nil {
		return renderError(opts, cmd, "list claims", err)
	}
	var all []model.Proof
	for _, c := range claims {
		history, err := sess.Store.ProofHistory(ctx, c.ID)
		if err != nil {
			return renderError(opts, cmd, "load proof history", err)
		}
		all = append(all, history...)
	}
	return renderProofs(opts, cmd, all)
}
