package config

import "time"

// Default returns the built-in configuration. Every loader starts from this
// and overlays file, env and flag values on top.
func Default() Config {
	return Config{
		Version: 1,
		Database: Database{
			URL:            "",
			MaxConns:       8,
			ConnectTimeout: 10 * time.Second,
		},
		Gemini: Gemini{
			APIKey:        "",
			EmbedModel:    "gemini-embedding-001",
			Dimensions:    768,
			MaxInputChars: 8000,
		},
		Server: Server{
			Transport:       "stdio",
			Listen:          "127.0.0.1:0",
			MCPPath:         "/mcp",
			ProtocolVersion: "2025-06-18",
			RequestTimeout:  30 * time.Second,
			AuthTokenEnv:    "LEXMCP_AUTH_TOKEN",
		},
		Retrieval: Retrieval{
			ProvisionsK: 5,
			CaseLawK:    3,
			PlaybooksK:  3,
			SemanticK:   5,
		},
	}
}
