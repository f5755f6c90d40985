package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealhawk/dealhawk/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dealhawk", version.String())
		},
	}
}
