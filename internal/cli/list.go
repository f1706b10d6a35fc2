package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every claim in topological order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
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

	ordered := g.TopoOrder()
	dtos := make([]ClaimDTO, 0, len(ordered))
	for _, c := range ordered {
		dtos = append(dtos, toClaimDTO(c, statusFn(c), nil))
	}
	return renderClaims(opts, cmd, dtos)
}
