package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [ref]",
		Short: "Show one claim's derived status, or every claim's if omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			return runStatus(opts, ref, cmd)
		},
	}
}

func runStatus(opts *RootOptions, ref string, cmd *cobra.Command) error {
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
		status, err := sess.StatusOf(ctx, claim)
		if err != nil {
			return renderError(opts, cmd, "derive status", err)
		}
		latest, ok, err := sess.Store.LatestProof(ctx, claim.ID)
		if err != nil {
			return renderError(opts, cmd, "load latest proof", err)
		}
		if ok {
			return renderClaim(opts, cmd, claim, status, &latest)
		}
		return renderClaim(opts, cmd, claim, status, nil)
	}

	claims, err := sess.Store.ListClaims(ctx)
	if err != nil {
		return renderError(opts, cmd, "list claims", err)
	}
	deriver := sess.Deriver()
	dtos := make([]ClaimDTO, 0, len(claims))
	for _, c := range claims {
		st, err := deriver.Derive(ctx, c)
		if err != nil {
			return renderError(opts, cmd, "derive status", err)
		}
		dtos = append(dtos, toClaimDTO(c, st, nil))
	}
	return renderClaims(opts, cmd, dtos)
}
