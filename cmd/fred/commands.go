package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/generator/google"
	"github.com/w-h-a/fred/internal/service/analysis"
	"github.com/w-h-a/fred/internal/service/chat"
	"github.com/w-h-a/fred/router"
	"github.com/w-h-a/fred/server"
	httpserver "github.com/w-h-a/fred/server/http"
)

type serveCmd struct {
	Address     string        `help:"Listen address" default:":5050" env:"FRED_ADDRESS"`
	PublicURL   string        `help:"Server URL advertised in the OpenAPI document" default:"http://localhost:5050" env:"FRED_PUBLIC_URL"`
	AllowOrigin string        `help:"Access-Control-Allow-Origin value" default:"*" env:"FRED_ALLOW_ORIGIN"`
	Grace       time.Duration `help:"Shutdown grace period" default:"10s"`
}

func (c *serveCmd) Run(ctx context.Context, g *Globals) error {
	f := g.Build()

	// Create server
	s := httpserver.NewServer(
		server.WithAddress(c.Address),
		httpserver.WithAllowOrigin(c.AllowOrigin),
	)

	f.Register(s, c.PublicURL)

	errCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "serving", "address", c.Address)
		errCh <- s.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Grace)
	defer cancel()

	slog.InfoContext(shutdownCtx, "shutting down")

	return s.Stop(shutdownCtx)
}

type ingestCmd struct{}

func (c *ingestCmd) Run(ctx context.Context, g *Globals) error {
	results, err := g.Build().Ingest(ctx)
	if err != nil {
		return err
	}

	return printJSON(results)
}

type upsertCmd struct{}

func (c *upsertCmd) Run(ctx context.Context, g *Globals) error {
	n, err := g.Build().Upsert(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("upserted %d vectors to namespace %q\n", n, g.Namespace)

	return nil
}

type queryCmd struct {
	Text string `arg:"" help:"Question to search for."`
	TopK int    `help:"Number of matches" default:"5"`
}

func (c *queryCmd) Run(ctx context.Context, g *Globals) error {
	matches, err := g.Build().Query(ctx, c.Text, c.TopK)
	if err != nil {
		return err
	}

	return printJSON(matches)
}

type chatCmd struct {
	Message  []string `arg:"" help:"Message to send."`
	Provider string   `help:"Model provider" enum:"google,anthropic,openai,azure" default:"google"`
	System   string   `help:"System instruction for this message"`
}

func (c *chatCmd) Run(ctx context.Context, g *Globals) error {
	reply, err := g.Build().Chat(ctx, chat.Request{
		Provider:          c.Provider,
		Message:           strings.Join(c.Message, " "),
		SystemInstruction: c.System,
	})
	if err != nil {
		return err
	}

	fmt.Println(reply)

	return nil
}

type analyzeCmd struct {
	SeriesId      string `arg:"" help:"Series to analyze."`
	From          string `help:"First date, YYYY-MM-DD"`
	To            string `help:"Last date, YYYY-MM-DD"`
	Clean         bool   `help:"Drop invalid values and outliers before fitting"`
	Normalize     bool   `help:"Min-max normalize values onto [0, 1] before fitting"`
	MovingAverage int    `help:"Trailing moving-average window, 0 disables" default:"0"`
	Summary       bool   `help:"Ask the summarizer for a plain-language summary"`
	Chart         bool   `help:"Also write the linear and logarithmic fit charts as PNG files"`
	ChartDir      string `help:"Directory the charts are written to" default:"." type:"existingdir"`
}

func (c *analyzeCmd) Run(ctx context.Context, g *Globals) error {
	from, err := parseDay(c.From)
	if err != nil {
		return err
	}

	to, err := parseDay(c.To)
	if err != nil {
		return err
	}

	f := g.Build()

	req := analysis.Request{
		SeriesId:      c.SeriesId,
		From:          from,
		To:            to,
		Clean:         c.Clean,
		Normalize:     c.Normalize,
		MovingAverage: c.MovingAverage,
		Summarize:     c.Summary,
	}

	report, err := f.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if c.Chart {
		for _, scale := range []analysis.Scale{analysis.ScaleLinear, analysis.ScaleLog} {
			img, err := f.Chart(ctx, req, scale)
			if err != nil {
				return err
			}

			path := filepath.Join(c.ChartDir, analysis.ChartName(c.SeriesId, scale))
			if err := os.WriteFile(path, img, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}

			slog.InfoContext(ctx, "wrote chart", "series", c.SeriesId, "scale", scale, "path", path)
		}
	}

	return printJSON(report)
}

type modelsCmd struct{}

func (c *modelsCmd) Run(ctx context.Context, g *Globals) error {
	gen := google.NewGenerator(generator.WithApiKey(g.GoogleAPIKey))

	if err := gen.Validate(); err != nil {
		return err
	}

	lister, ok := gen.(router.Lister)
	if !ok {
		return errors.New("google generator cannot list models")
	}

	models, err := router.New(lister).Models(ctx)
	if err != nil {
		return err
	}

	for _, model := range models {
		fmt.Println(model)
	}

	return nil
}

func parseDay(s string) (time.Time, error) {
	if len(s) == 0 {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}

	return t, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
