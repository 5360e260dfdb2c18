package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/dwizi/board-agent/internal/cli"
	"github.com/dwizi/board-agent/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(logOutput(os.Args[1:]), &slog.HandlerOptions{Level: config.FromEnv().SlogLevel()}))
	if err := cli.NewRoot(logger).Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// logOutput keeps stdout free for the MCP protocol when serving.
func logOutput(args []string) io.Writer {
	if len(args) > 0 && args[0] == "serve" {
		return os.Stderr
	}
	return os.Stdout
}
