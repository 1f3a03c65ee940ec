package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexmcp/internal/config"
	"lexmcp/internal/mcp"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the published tool catalog",
	RunE:  runTools,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "emit the catalog as JSON")
}

func runTools(_ *cobra.Command, _ []string) error {
	// Catalog listing needs no datastore or credentials.
	cfg, err := config.Load(config.Options{
		ConfigPath:   globalFlags.ConfigPath,
		SkipValidate: true,
	})
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	tools := mcp.NewServer(cfg, nil).Tools()

	if toolsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	}

	for _, tool := range tools {
		fmt.Printf("%s\n    %s\n", tool.Name, tool.Description)
		if required, ok := tool.InputSchema["required"].([]string); ok && len(required) > 0 {
			fmt.Printf("    required:")
			for _, field := range required {
				fmt.Printf(" %s", field)
			}
			fmt.Println()
		}
	}
	return nil
}
