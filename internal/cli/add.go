package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofcarrying/roadmap/internal/model"
	"github.com/proofcarrying/roadmap/internal/session"
)

func newAddCommand(opts *RootOptions) *cobra.Command {
	var after, blocks, scope []string
	var proveCmd string

	cmd := &cobra.Command{
		Use:   "add <statement>",
		Short: "Create a new claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasScope := cmd.Flags().Changed("scope")
			return runAdd(opts, args[0], after, blocks, proveCmd, scope, hasScope, cmd)
		},
	}
	cmd.Flags().StringSliceVar(&after, "after", nil, "claims that must be PROVEN before this one (repeatable)")
	cmd.Flags().StringSliceVar(&blocks, "blocks", nil, "claims that depend on this one (repeatable)")
	cmd.Flags().StringVar(&proveCmd, "test", "", "falsifier command")
	cmd.Flags().StringSliceVar(&scope, "scope", nil, "ordered glob patterns limiting proof decay (repeatable; defaults to config's default_scope)")
	return cmd
}

func runAdd(opts *RootOptions, statement string, after, blocks []string, proveCmd string, scope []string, hasScope bool, cmd *cobra.Command) error {
	sess, err := openSession(opts)
	if err != nil {
		return renderError(opts, cmd, "open session", err)
	}
	defer sess.Close()

	ctx := context.Background()
	afterIDs, err := resolveAll(ctx, sess, after)
	if err != nil {
		return renderError(opts, cmd, "resolve dependency", err)
	}
	blockIDs, err := resolveAll(ctx, sess, blocks)
	if err != nil {
		return renderError(opts, cmd, "resolve dependency", err)
	}

	if !hasScope {
		scope = sess.Config.DefaultScope
	}

	claim, err := sess.InsertClaim(ctx, model.ClaimSpec{Statement: statement, ProveCmd: proveCmd, Scope: scope}, afterIDs, blockIDs)
	if err != nil {
		return renderError(opts, cmd, "add claim", err)
	}

	status, err := sess.StatusOf(ctx, claim)
	if err != nil {
		return renderError(opts, cmd, "derive status", err)
	}
	return renderClaim(opts, cmd, claim, status, nil)
}

// resolveAll resolves every ref in refs to a claim id, in order.
func resolveAll(ctx context.Context, sess *session.Session, refs []string) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		c, err := sess.Resolve(ctx, ref)
		if err != nil {
			return nil, WrapExitError(fmt.Sprintf("resolve %q", ref), err)
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}
