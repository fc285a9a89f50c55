package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridden at link time.
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/sensemap"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sensemap version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "sensemap v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
