package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexmcp/internal/config"
	"lexmcp/internal/model"
	"lexmcp/internal/protocol"
)

// Server is the transport-neutral tool dispatcher: it owns the static tool
// catalog and routes tools/call requests to the retrieval engine. The stdio
// and HTTP adapters both feed handleRPC, so dispatch behavior is identical
// regardless of transport.
type Server struct {
	cfg      *config.Config
	engine   model.Retriever
	defaults config.Retrieval
	tools    map[string]toolDefinition
	logger   *log.Logger
}

func NewServer(cfg *config.Config, engine model.Retriever) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		defaults: cfg.Retrieval,
	}
	s.tools = s.buildToolRegistry()
	return s
}

// SetLogger routes diagnostics to logger instead of the process default.
func (s *Server) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Tools returns the catalog in publication order, for the CLI listing.
func (s *Server) Tools() []ToolInfo {
	defs := s.orderedTools()
	out := make([]ToolInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	return out
}

// ToolInfo is the published descriptor for one tool.
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// handleRPC dispatches one JSON-RPC request. A nil return means the request
// was a notification and no response is written. Every tool failure is
// reported in-band; nothing below the dispatcher may take the process down.
func (s *Server) handleRPC(ctx context.Context, req rpcRequest) *rpcResponse {
	if s.cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Server.RequestTimeout)
		defer cancel()
	}

	switch req.Method {
	case "initialize":
		resp := newRPCResult(req.ID, map[string]interface{}{
			"protocolVersion": s.cfg.Server.ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{"listChanged": false},
			},
			"serverInfo": map[string]interface{}{
				"name":    protocol.ServerName,
				"version": Version,
			},
		})
		return &resp

	case "notifications/initialized":
		return nil

	case "ping":
		resp := newRPCResult(req.ID, map[string]interface{}{})
		return &resp

	case "tools/list":
		resp := newRPCResult(req.ID, map[string]interface{}{
			"tools": s.orderedTools(),
		})
		return &resp

	case "tools/call":
		result, rpcErr := s.processToolsCall(ctx, req.Params)
		if rpcErr != nil {
			resp := rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
			return &resp
		}
		resp := newRPCResult(req.ID, result)
		return &resp

	default:
		if req.ID == nil {
			// Unknown notification; ignore per JSON-RPC.
			return nil
		}
		resp := newRPCError(req.ID, rpcCodeMethodNotFound, "method not found: "+req.Method, protocol.ErrorCodeMethodNotFound)
		return &resp
	}
}

// Version is the reported server version; overridden at build time via
// -ldflags "-X lexmcp/internal/mcp.Version=...".
var Version = "dev"

// maxRequestBytes bounds a single request on either transport.
const maxRequestBytes = 1 << 20

// Handler returns the HTTP adapter: POST JSON-RPC on the configured path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Server.MCPPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !s.authorized(r) {
			s.logf("rejected unauthorized request from %s", r.RemoteAddr)
			writeResponse(w, http.StatusUnauthorized, newRPCError(nil, rpcCodeInvalidRequest, "missing or invalid bearer token", protocol.ErrorCodeUnauthorized))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			s.logf("failed reading request body from %s: %v", r.RemoteAddr, err)
			writeResponse(w, http.StatusBadRequest, newRPCError(nil, rpcCodeParseError, "cannot read request body", protocol.ErrorCodeInvalidField))
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.logf("malformed JSON-RPC request from %s: %v", r.RemoteAddr, err)
			writeResponse(w, http.StatusBadRequest, newRPCError(nil, rpcCodeParseError, "malformed JSON-RPC request", protocol.ErrorCodeInvalidField))
			return
		}

		if req.Method == "initialize" {
			w.Header().Set(protocol.MCPSessionHeader, uuid.NewString())
		}

		resp := s.handleRPC(r.Context(), req)
		if resp == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		writeResponse(w, http.StatusOK, *resp)
	})
	return mux
}

func (s *Server) authorized(r *http.Request) bool {
	tokenEnv := strings.TrimSpace(s.cfg.Server.AuthTokenEnv)
	if tokenEnv == "" {
		return true
	}
	want := strings.TrimSpace(os.Getenv(tokenEnv))
	if want == "" {
		// No token configured: local single-user deployment, auth disabled.
		return true
	}
	got := strings.TrimSpace(r.Header.Get("Authorization"))
	return got == "Bearer "+want
}

// Serve blocks while handling HTTP on listener. Cancel ctx to initiate
// graceful shutdown; in-flight requests are allowed to drain.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
