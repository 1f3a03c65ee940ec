package config

import (
	"fmt"
	"strings"
)

// Validate checks invariants that would otherwise surface as confusing
// runtime failures. Credentials are checked here rather than at first use so
// a misconfigured deployment fails at startup with exit code 2.
func Validate(cfg *Config) error {
	switch strings.TrimSpace(cfg.Server.Transport) {
	case "stdio", "http":
	default:
		return fmt.Errorf("CONFIG_INVALID: server.transport must be stdio or http, got %q", cfg.Server.Transport)
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("CONFIG_INVALID: database.url is required (set DATABASE_URL)")
	}
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return fmt.Errorf("CONFIG_INVALID: gemini.api_key is required (set GEMINI_API_KEY)")
	}
	if cfg.Database.MaxConns < 1 {
		return fmt.Errorf("CONFIG_INVALID: database.max_conns must be >= 1")
	}
	if cfg.Gemini.Dimensions < 1 {
		return fmt.Errorf("CONFIG_INVALID: gemini.dimensions must be >= 1")
	}
	if cfg.Gemini.MaxInputChars < 1 {
		return fmt.Errorf("CONFIG_INVALID: gemini.max_input_chars must be >= 1")
	}
	if !strings.HasPrefix(cfg.Server.MCPPath, "/") {
		return fmt.Errorf("CONFIG_INVALID: server.mcp_path must start with /")
	}
	for name, k := range map[string]int{
		"provisions_k": cfg.Retrieval.ProvisionsK,
		"case_law_k":   cfg.Retrieval.CaseLawK,
		"playbooks_k":  cfg.Retrieval.PlaybooksK,
		"semantic_k":   cfg.Retrieval.SemanticK,
	} {
		if k < 1 {
			return fmt.Errorf("CONFIG_INVALID: retrieval.%s must be >= 1", name)
		}
	}
	return nil
}
