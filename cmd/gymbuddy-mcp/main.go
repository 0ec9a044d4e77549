package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/gymbuddy/internal/config"
	"github.com/claude/gymbuddy/internal/mcp"
	"github.com/claude/gymbuddy/internal/session"
	"github.com/claude/gymbuddy/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	username := flag.String("user", "local", "username whose data the MCP tools expose")
	flag.Parse()

	// Logs go to stderr: stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userID, err := db.GetOrCreateUser(ctx, *username)
	if err != nil {
		log.Error("failed to resolve user", "user", *username, "error", err)
		os.Exit(1)
	}

	sessions := session.New(db, db, db, log)
	srv := mcp.New(db, sessions, Version, log)

	log.Info("MCP server starting (stdio)", "user", *username)
	err = mcpserver.ServeStdio(srv, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, userID)
	}))
	if err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
