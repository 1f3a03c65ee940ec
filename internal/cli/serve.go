package cli

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lexmcp/internal/config"
	"lexmcp/internal/gemini"
	"lexmcp/internal/mcp"
	"lexmcp/internal/retrieval"
	"lexmcp/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP tool server",
	RunE:  runServe,
}

var (
	serveTransport string
	serveListen    string
	serveMCPPath   string
)

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "transport: stdio|http (default from config)")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "host:port to listen on (http transport)")
	serveCmd.Flags().StringVar(&serveMCPPath, "mcp-path", "", "HTTP path for the MCP endpoint")
}

func runServe(cmd *cobra.Command, _ []string) error {
	overrides := &config.Overrides{}
	if cmd.Flags().Changed("transport") {
		overrides.Transport = &serveTransport
	}
	if cmd.Flags().Changed("listen") {
		overrides.Listen = &serveListen
	}
	if cmd.Flags().Changed("mcp-path") {
		overrides.MCPPath = &serveMCPPath
	}

	cfg, err := config.Load(config.Options{
		ConfigPath: globalFlags.ConfigPath,
		Overrides:  overrides,
	})
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	// On stdio transport stdout belongs to the protocol; diagnostics must
	// stay on stderr.
	logger := log.New(os.Stderr, "lexmcp: ", log.LstdFlags)
	if globalFlags.Quiet {
		logger.SetOutput(discardWriter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The pool and the embedding client are acquired once here and released
	// on the way out; the engine only borrows them.
	pg, err := store.New(ctx, store.Options{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: cannot open datastore: "+err.Error())
	}
	defer pg.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	err = pg.Ping(pingCtx)
	cancel()
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: datastore unreachable: "+err.Error())
	}

	embedder, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbedModel, cfg.Gemini.Dimensions, cfg.Gemini.MaxInputChars)
	if err != nil {
		exitWith(ExitGenericError, "ERROR: cannot initialize embedding client: "+err.Error())
	}
	defer func() { _ = embedder.Close() }()

	engine := retrieval.NewEngine(pg, embedder)
	engine.SetLogger(logger)

	server := mcp.NewServer(cfg, engine)
	server.SetLogger(logger)

	switch cfg.Server.Transport {
	case "http":
		listener, err := net.Listen("tcp", cfg.Server.Listen)
		if err != nil {
			exitWith(ExitBindFailure, "ERROR: cannot bind "+cfg.Server.Listen+": "+err.Error())
		}
		logger.Printf("serving MCP over HTTP on %s%s", listener.Addr(), cfg.Server.MCPPath)
		if err := server.Serve(ctx, listener); err != nil {
			exitWith(ExitGenericError, "ERROR: server failed: "+err.Error())
		}
	default:
		logger.Printf("serving MCP over stdio")
		if err := server.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			exitWith(ExitGenericError, "ERROR: stdio transport failed: "+err.Error())
		}
	}
	return nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
