package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexmcp/internal/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("lexmcp " + mcp.Version)
	},
}
