package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lectern-app/lectern/internal/logger"
	"github.com/lectern-app/lectern/server"
)

func main() {
	// Load .env if present; environment variables win over file values.
	_ = godotenv.Load()

	log, err := logger.NewLogger(logger.LogConfig{})
	if err != nil {
		// Fall back to stderr if logger initialization fails
		panic(err)
	}

	log.Info("Starting lectern server")

	srv := server.CreateServer(log)
	err = srv.Run(context.Background(), &mcp.StdioTransport{})
	if err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
