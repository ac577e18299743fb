package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Serve the HTTP API."`
	Ingest  ingestCmd  `cmd:"" help:"Fetch the configured series into the document store."`
	Upsert  upsertCmd  `cmd:"" help:"Embed stored observations and upsert them to the vector index."`
	Query   queryCmd   `cmd:"" help:"Print the nearest observations for a question."`
	Chat    chatCmd    `cmd:"" help:"Ask a question grounded on the indexed observations."`
	Analyze analyzeCmd `cmd:"" help:"Fit regressions over a stored series."`
	Models  modelsCmd  `cmd:"" help:"List the Gemini models eligible for rotation."`
}

func main() {
	// Load .env when present
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	// Parse inputs
	var c cli
	kctx := kong.Parse(
		&c,
		kong.Name("fred"),
		kong.Description("Retrieval-augmented chat and analysis over FRED economic series."),
		kong.UsageOnError(),
	)

	// Create logger
	slog.SetDefault(slog.New(c.handler(os.Stderr)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(&c.Globals); err != nil {
		slog.ErrorContext(ctx, "command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
