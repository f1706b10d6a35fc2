package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/proofcarrying/roadmap/internal/model"
)

func newStaleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stale",
		Short: "List every claim whose derived status is STALE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStale(opts, cmd)
		},
	}
}

func runStale(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts)
	if err != nil {
		return renderError(opts, cmd, "open session", err)
	}
	defer sess.Close()

	ctx := context.Background()
	claims, err := sess.Store.ListClaims(ctx)
	if err != nil {
		return renderError(opts, cmd, "list claims", err)
	}
	deriver := sess.Deriver()

	var dtos []ClaimDTO
	for _, c := range claims {
		st, err := deriver.Derive(ctx, c)
		if err != nil {
			return renderError(opts, cmd, "derive status", err)
		}
		if st == model.StatusStale {
			dtos = append(dtos, toClaimDTO(c, st, nil))
		}
	}
	return renderClaims(opts, cmd, dtos)
}
