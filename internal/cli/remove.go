package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <ref>",
		Short: "Delete a claim and cascade its edges and proofs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, args[0], cmd)
		},
	}
}

func runRemove(opts *RootOptions, ref string, cmd *cobra.Command) error {
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
	if err := sess.Store.RemoveClaim(ctx, claim.ID); err != nil {
		return renderError(opts, cmd, "remove claim", err)
	}
	if opts.JSON {
		return writeJSON(cmd.OutOrStdout(), map[string]int64{"removed": claim.ID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed #%d %s\n", claim.ID, claim.Slug)
	return nil
}
