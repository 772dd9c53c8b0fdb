package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the claw command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "claw",
		Short: "claw is the command line client for the ClawHub skill registry",
		Long: `claw publishes and browses skill packages on a ClawHub registry.

Authenticate by minting a publish token in the web UI (POST /api/tokens)
and running: claw login <token>`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newLoginCmd(),
		newWhoamiCmd(),
		newListCmd(),
		newGetCmd(),
		newPublishCmd(),
		newDeleteCmd(),
	)

	return root
}
