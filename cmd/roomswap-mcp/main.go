package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/roomswap-mcp/internal/config"
	"github.com/ironsheep/roomswap-mcp/internal/scene"
	"github.com/ironsheep/roomswap-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("roomswap-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("roomswap-mcp - MCP server for the room furniture swap wizard")
			fmt.Println()
			fmt.Println("Usage: roomswap-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  ROOMSWAP_LOG_LEVEL=debug            Log level (debug, info, warn, error)")
			fmt.Println("  ROOMSWAP_SCENE_BACKEND=local        Region proposals: gemini, ollama, local, none")
			fmt.Println("  GEMINI_API_KEY=...                  Enables the gemini backend")
			fmt.Println("  ROOMSWAP_GEMINI_MODEL=...           Gemini model name")
			fmt.Println("  ROOMSWAP_OLLAMA_URL=...             Ollama server URL")
			fmt.Println("  ROOMSWAP_OLLAMA_MODEL=...           Ollama vision model")
			fmt.Println("  ROOMSWAP_ANALYZE_TIMEOUT=120        Scene analysis timeout in seconds")
			fmt.Println("  ROOMSWAP_OUTPUT_FORMAT=png          Rendered image format (png, jpeg, webp)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "roomswap-mcp: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomswap-mcp: %v\n", err)
		os.Exit(1)
	}

	// Log to stderr (stdout is for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	analyzer, err := scene.New(cfg, logger)
	if err != nil {
		logger.Error("scene analyzer unavailable", "backend", cfg.SceneBackend, "error", err)
		os.Exit(1)
	}
	if analyzer != nil {
		logger.Info("scene analyzer ready", "backend", analyzer.Name())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(cfg, logger, analyzer)

	compositor, err := scene.NewCompositor(cfg, logger)
	if err != nil {
		logger.Error("compositor unavailable", "error", err)
		os.Exit(1)
	}
	if compositor != nil {
		srv.SetCompositor(compositor)
		logger.Info("compositor ready", "backend", compositor.Name(), "model", cfg.CompositeModel)
	}
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
