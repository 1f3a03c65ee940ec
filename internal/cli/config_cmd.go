package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lexmcp/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration with secrets redacted",
	RunE:  runConfigPrint,
}

func init() {
	configCmd.AddCommand(configPrintCmd)
}

func runConfigPrint(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{
		ConfigPath:   globalFlags.ConfigPath,
		SkipValidate: true,
	})
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	redacted := *cfg
	redacted.Gemini.APIKey = redactSecret(cfg.Gemini.APIKey)
	redacted.Database.URL = redactConnString(cfg.Database.URL)

	out, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func redactSecret(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return "***"
}

// redactConnString hides the credential portion of a postgres URL while
// keeping host and database visible for debugging.
func redactConnString(v string) string {
	if v == "" {
		return ""
	}
	schemeEnd := strings.Index(v, "://")
	at := strings.LastIndex(v, "@")
	if schemeEnd < 0 || at < 0 || at < schemeEnd {
		return "***"
	}
	return v[:schemeEnd+3] + "***" + v[at:]
}
