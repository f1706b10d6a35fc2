package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by every command.
type RootOptions struct {
	Verbose  bool
	JSON     bool
	RepoRoot string
	DBPath   string
}

// NewRootCommand builds the roadmap root command and wires every
// subcommand under it.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "roadmap",
		Short:         "A local, proof-carrying project tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "emit machine-readable JSON")
	cmd.PersistentFlags().StringVar(&opts.RepoRoot, "repo", "", "repository root (defaults to the current directory)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to .roadmap/state.db (defaults to a walk-up lookup)")

	cmd.AddCommand(
		newAddCommand(opts),
		newEditCommand(opts),
		newRemoveCommand(opts),
		newNextCommand(opts),
		newDoCommand(opts),
		newCheckCommand(opts),
		newStatusCommand(opts),
		newListCommand(opts),
		newWhyCommand(opts),
		newStaleCommand(opts),
		newHistoryCommand(opts),
	)

	return cmd
}
