package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/proofcarrying/roadmap/internal/model"
)

func newEditCommand(opts *RootOptions) *cobra.Command {
	var statement, proveCmd string
	var scope, after, blocks []string
	var hasStatement, hasProveCmd, hasScope, hasDeps bool

	cmd := &cobra.Command{
		Use:   "edit <ref>",
		Short: "Edit a claim's non-identity fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasStatement = cmd.Flags().Changed("statement")
			hasProveCmd = cmd.Flags().Changed("test")
			hasScope = cmd.Flags().Changed("scope")
			hasDeps = cmd.Flags().Changed("after") || cmd.Flags().Changed("blocks")
			return runEdit(opts, args[0], editInputs{
				statement: statement, hasStatement: hasStatement,
				proveCmd: proveCmd, hasProveCmd: hasProveCmd,
				scope: scope, hasScope: hasScope,
				after: after, blocks: blocks, hasDeps: hasDeps,
			}, cmd)
		},
	}
	cmd.Flags().StringVar(&statement, "statement", "", "new statement text")
	cmd.Flags().StringVar(&proveCmd, "test", "", "new falsifier command")
	cmd.Flags().StringSliceVar(&scope, "scope", nil, "new ordered glob patterns")
	cmd.Flags().StringSliceVar(&after, "after", nil, "replace blockers (repeatable)")
	cmd.Flags().StringSliceVar(&blocks, "blocks", nil, "replace dependents (repeatable)")
	return cmd
}

type editInputs struct {
	statement    string
	hasStatement bool
	proveCmd     string
	hasProveCmd  bool
	scope        []string
	hasScope     bool
	after        []string
	blocks       []string
	hasDeps      bool
}

func runEdit(opts *RootOptions, ref string, in editInputs, cmd *cobra.Command) error {
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

	edits := model.ClaimEdits{}
	if in.hasStatement {
		edits.Statement = &in.statement
	}
	if in.hasProveCmd {
		edits.ProveCmd = &in.proveCmd
	}
	if in.hasScope {
		edits.Scope = &in.scope
	}

	updated, err := sess.Store.EditClaim(ctx, claim.ID, edits)
	if err != nil {
		return renderError(opts, cmd, "edit claim", err)
	}

	if in.hasDeps {
		afterIDs, err := resolveAll(ctx, sess, in.after)
		if err != nil {
			return renderError(opts, cmd, "resolve dependency", err)
		}
		blockIDs, err := resolveAll(ctx, sess, in.blocks)
		if err != nil {
			return renderError(opts, cmd, "resolve dependency", err)
		}
		if err := sess.ReplaceDependencies(ctx, claim.ID, afterIDs, blockIDs); err != nil {
			return renderError(opts, cmd, "replace dependencies", err)
		}
	}

	status, err := sess.StatusOf(ctx, updated)
	if err != nil {
		return renderError(opts, cmd, "derive status", err)
	}
	return renderClaim(opts, cmd, updated, status, nil)
}
