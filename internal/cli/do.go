package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/proofcarrying/roadmap/internal/resolve"
)

func newDoCommand(opts *RootOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "do <ref>",
		Short: "Focus a claim, failing if any of its blockers aren't proven",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDo(opts, args[0], strict, cmd)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "require an exact id/slug match instead of fuzzy resolution")
	return cmd
}

func runDo(opts *RootOptions, ref string, strict bool, cmd *cobra.Command) error {
	sess, err := openSession(opts)
	if err != nil {
		return renderError(opts, cmd, "open session", err)
	}
	defer sess.Close()

	ctx := context.Background()
	if strict {
		sess.Resolver = resolve.New(sess, resolve.Strict)
	}

	claim, err := sess.Resolve(ctx, ref)
	if err != nil {
		return renderError(opts, cmd, "resolve claim", err)
	}
	if err := sess.Focus(ctx, claim.ID); err != nil {
		return renderError(opts, cmd, "focus claim", err)
	}

	status, err := sess.StatusOf(ctx, claim)
	if err != nil {
		return renderError(opts, cmd, "derive status", err)
	}
	return renderClaim(opts, cmd, claim, status, nil)
}
