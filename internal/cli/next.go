package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newNextCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "List the frontier: unproven claims whose blockers are all proven",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(opts, cmd)
		},
	}
}

func runNext(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts)
	if err != nil {
		return renderError(opts, cmd, "open session", err)
	}
	defer sess.Close()

	ctx := context.Background()
	g, err := sess.LoadGraph(ctx)
	if err != nil {
		return renderError(opts, cmd, "load graph", err)
	}

	statusFn, err := cachedStatusFn(ctx, sess)
	if err != nil {
		return renderError(opts, cmd, "derive status", err)
	}

	frontier := g.Frontier(statusFn)
	dtos := make([]ClaimDTO, 0, len(frontier))
	for _, c := range frontier {
		dtos = append(dtos, toClaimDTO(c, statusFn(c), nil))
	}
	return renderClaims(opts, cmd, dtos)
}
