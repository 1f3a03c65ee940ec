package protocol

const (
	ToolNameProvisions = "search_legal_provisions"
	ToolNameCaseLaw    = "get_case_law"
	ToolNamePlaybooks  = "get_playbook_guidance"
	ToolNameTemplate   = "get_template"
	ToolNameCompliance = "check_compliance"
	ToolNameSemantic   = "semantic_search"
)

const (
	ErrorCodeMethodNotFound  = "METHOD_NOT_FOUND"
	ErrorCodeMissingField    = "MISSING_FIELD"
	ErrorCodeInvalidField    = "INVALID_FIELD"
	ErrorCodeInvalidRange    = "INVALID_RANGE"
	ErrorCodeEmbeddingFailed = "EMBEDDING_FAILED"
	ErrorCodeDatastoreError  = "DATASTORE_ERROR"
	ErrorCodeInternalError   = "INTERNAL_ERROR"
	ErrorCodeUnauthorized    = "UNAUTHORIZED"
)

const (
	ServerName = "lexmcp"

	DefaultMCPPath = "/mcp"

	MCPSessionHeader = "MCP-Session-Id"
)
