// Command roadmap tracks a project as a DAG of claims, each backed by a
// shell command that either proves or disproves it.
package main

import (
	"fmt"
	"os"

	"github.com/proofcarrying/roadmap/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Every RunE error path renders its own message via renderError
		// before returning; what reaches here unprinted is cobra's own
		// usage/argument validation, which never went through it.
		if _, alreadyRendered := err.(*cli.ExitError); !alreadyRendered {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
