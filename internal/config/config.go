package config

import "time"

// Config is the full effective configuration. YAML tags match the on-disk
// .lexmcp.yaml layout; env vars and CLI flags overlay individual fields.
type Config struct {
	Version   int       `yaml:"version"`
	Database  Database  `yaml:"database"`
	Gemini    Gemini    `yaml:"gemini"`
	Server    Server    `yaml:"server"`
	Retrieval Retrieval `yaml:"retrieval"`
}

// Database configures the read-only Postgres pool.
type Database struct {
	URL            string        `yaml:"url"`
	MaxConns       int32         `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Gemini configures the embedding provider.
type Gemini struct {
	APIKey        string `yaml:"api_key"`
	EmbedModel    string `yaml:"embed_model"`
	Dimensions    int    `yaml:"dimensions"`
	MaxInputChars int    `yaml:"max_input_chars"`
}

// Server configures the tool transport.
type Server struct {
	Transport       string        `yaml:"transport"` // stdio | http
	Listen          string        `yaml:"listen"`
	MCPPath         string        `yaml:"mcp_path"`
	ProtocolVersion string        `yaml:"protocol_version"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	AuthTokenEnv    string        `yaml:"auth_token_env"`
}

// Retrieval holds the per-tool default result caps. Callers may override
// per call down to a minimum of 1; these are only the defaults.
type Retrieval struct {
	ProvisionsK int `yaml:"provisions_k"`
	CaseLawK    int `yaml:"case_law_k"`
	PlaybooksK  int `yaml:"playbooks_k"`
	SemanticK   int `yaml:"semantic_k"`
}
