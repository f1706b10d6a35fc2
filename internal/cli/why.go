package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newWhyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "why <ref>",
		Short: "Explain why a claim isn't focusable: list its unproven blockers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhy(opts, args[0], cmd)
		},
	}
}

func runWhy(opts *RootOptions, ref string, cmd *cobra.Command) error {
	sess, err := openSession(opts)
	if err != nil {
		return renderError(opts, cmd, "open session", err)
	}
	defer sess.Close()

	ctx := context.Background()
	claim, err := sess.Resolve(ctx, ref)
	if err != nil {
		return renderError(opts, cmd, "resolve claim", err)
	}

	g, err := sess.LoadGraph(ctx)
	if err != nil {
		return renderError(opts, cmd, "load graph", err)
	}
	statusFn, err := cachedStatusFn(ctx, sess)
	if err != nil {
		return renderError(opts, cmd, "derive status", err)
	}

	_, unprovenIDs := g.ValidateFocus(claim.ID, statusFn)
	dtos := make([]ClaimDTO, 0, len(unprovenIDs))
	for _, id := range unprovenIDs {
		blocker, ok := g.Claim(id)
		if !ok {
			continue
		}
		dtos = append(dtos, toClaimDTO(blocker, statusFn(blocker), nil))
	}
	return renderClaims(opts, cmd, dtos)
}
