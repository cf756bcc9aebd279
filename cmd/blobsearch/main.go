// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/blobsearch"
	"github.com/poiesic/blobsearch/config"
	"github.com/poiesic/blobsearch/index"
	"github.com/poiesic/blobsearch/ingestion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

// Exit codes of the run command.
const (
	exitFatal  = 1
	exitFailed = 2
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "blobsearch",
		Usage: "Index object store documents into a search index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file (defaults are used when it does not exist)",
				Value:   "blobsearch.yaml",
				EnvVars: []string{"BLOBSEARCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "store-key",
				Usage:   "Storage account shared key",
				EnvVars: []string{"AZURE_STORAGE_KEY"},
			},
			&cli.StringFlag{
				Name:    "search-api-key",
				Usage:   "Search service admin API key",
				EnvVars: []string{"AZURE_SEARCH_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "llm-token",
				Usage:   "API token for the enrichment LLM",
				EnvVars: []string{"BLOBSEARCH_LLM_TOKEN"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Reset the index and index every document under the prefix",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Only index documents whose names start with this prefix",
					},
					&cli.IntFlag{
						Name:  "parallelism",
						Usage: "Number of batches processed concurrently (0 keeps the config value)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents per batch (0 keeps the config value)",
					},
					&cli.StringFlag{
						Name:    "metrics-addr",
						Usage:   "Serve Prometheus metrics on this address, e.g. :9090",
						EnvVars: []string{"BLOBSEARCH_METRICS_ADDR"},
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: fmt.Sprintf("Exit with status %d when any document was not indexed", exitFailed),
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List the documents a run would index",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Only list documents whose names start with this prefix",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query the embedded index",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Suggest people, organizations and locations from the embedded index",
				ArgsUsage: "<prefix>",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of suggestions",
						Value: 5,
					},
				},
			},
			{
				Name:   "schema",
				Usage:  "Print the index definition a run creates",
				Action: schemaCommand,
			},
			{
				Name:   "init",
				Usage:  "Write the default configuration to the config path",
				Action: initCommand,
			},
		},
	}
}

// loadConfig reads the config file and applies the secret flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if key := c.String("store-key"); key != "" {
		cfg.Store.Key = key
	}
	if key := c.String("search-api-key"); key != "" {
		cfg.Index.APIKey = key
	}
	if token := c.String("llm-token"); token != "" {
		cfg.Enrichment.LLMToken = token
	}
	return cfg, nil
}

func openEngine(cfg *config.Config, opts ...blobsearch.Option) (*blobsearch.Engine, error) {
	opts = append([]blobsearch.Option{blobsearch.WithLogger(slog.Default())}, opts...)
	engine, err := blobsearch.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return engine, nil
}

func runCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, exitFatal)
	}
	if c.IsSet("prefix") {
		cfg.Store.Prefix = c.String("prefix")
	}
	if n := c.Int("parallelism"); n > 0 {
		cfg.Pipeline.Parallelism = n
	}
	if n := c.Int("batch-size"); n > 0 {
		cfg.Pipeline.BatchSize = n
	}
	if addr := c.String("metrics-addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}

	opts := []blobsearch.Option{blobsearch.WithProgress(c.App.ErrWriter)}
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, blobsearch.WithRegisterer(reg))

		shutdown := serveMetrics(cfg.Metrics.Addr, reg)
		defer shutdown()
	}

	engine, err := openEngine(cfg, opts...)
	if err != nil {
		return cli.Exit(err, exitFatal)
	}
	defer engine.Close()

	fmt.Fprintf(c.App.ErrWriter, "Store: %s %s (prefix %q)\n", cfg.Store.Type, cfg.Store.Container, cfg.Store.Prefix)
	fmt.Fprintf(c.App.ErrWriter, "Index: %s %s\n", cfg.Index.Type, cfg.Index.Name)
	fmt.Fprintf(c.App.ErrWriter, "Extractor: %s\n", cfg.Extractor.Type)
	fmt.Fprintln(c.App.ErrWriter)

	summary, err := engine.Run(ctx)
	if summary != nil {
		printSummary(c, summary)
	}
	if code := exitCode(summary, err, c.Bool("strict")); code != 0 {
		if err == nil {
			err = fmt.Errorf("%d document(s) were not indexed", summary.Failed())
		}
		return cli.Exit(fmt.Errorf("run failed: %w", err), code)
	}
	return nil
}

// exitCode maps a run result to the process exit status. Isolated document
// and publish failures only fail the process in strict mode.
func exitCode(summary *ingestion.Summary, err error, strict bool) int {
	switch {
	case err != nil:
		return exitFatal
	case strict && summary != nil && summary.Failed() > 0:
		return exitFailed
	default:
		return 0
	}
}

func printSummary(c *cli.Context, s *ingestion.Summary) {
	fmt.Fprintf(c.App.ErrWriter, "Run %s: indexed %d of %d documents in %d batches (%d document errors, %d publish errors) in %v\n",
		s.RunID, s.Indexed, s.Enumerated, s.Batches, s.DocumentErrors, s.PublishErrors, s.Elapsed.Round(time.Second))
}

// serveMetrics serves reg on addr until the returned function is called.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func listCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("prefix") {
		cfg.Store.Prefix = c.String("prefix")
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	names, err := engine.ListDocuments(c.Context)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(c.App.Writer, name)
	}
	fmt.Fprintf(c.App.ErrWriter, "%d document(s)\n", len(names))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	searcher, closeEngine, err := openSearcher(c)
	if err != nil {
		return err
	}
	defer closeEngine()

	results, err := searcher.Search(c.Context, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	for _, rec := range results {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", rec.StorageName, snippet(rec.Content, 80))
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	prefix := c.Args().First()
	if prefix == "" {
		return fmt.Errorf("prefix is required")
	}

	searcher, closeEngine, err := openSearcher(c)
	if err != nil {
		return err
	}
	defer closeEngine()

	suggestions, err := searcher.Suggest(c.Context, prefix, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}
	for _, s := range suggestions {
		fmt.Fprintln(c.App.Writer, s)
	}
	return nil
}

func openSearcher(c *cli.Context) (index.Searcher, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	searcher, err := engine.NewSearcher()
	if err != nil {
		engine.Close()
		return nil, nil, err
	}
	return searcher, func() { engine.Close() }, nil
}

func schemaCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	def := index.DefaultDefinition(cfg.Index.Name)
	if err := def.Validate(); err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(def)
}

func initCommand(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "Wrote %s\n", path)
	return nil
}

// snippet returns the first n runes of s on one line.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
