package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"searchserver/internal/config"
	"searchserver/internal/corpus"
	"searchserver/internal/index"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file")
	listen := flag.String("listen", "", "Override the listen address (e.g. :8080)")
	corpusPath := flag.String("corpus", "", "Override the corpus file loaded at startup")
	consoleMode := flag.Bool("console", false, "Read stop words, documents and queries from stdin instead of serving HTTP")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			newLogger(os.Stderr, cfg.Logging).Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if envPath := os.Getenv("SEARCHSERVER_CORPUS"); envPath != "" {
		cfg.Engine.Corpus = envPath
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *corpusPath != "" {
		cfg.Engine.Corpus = *corpusPath
	}

	if *consoleMode {
		// stdout carries query results in console mode.
		logger := newLogger(os.Stderr, cfg.Logging)
		if err := runConsole(os.Stdin, os.Stdout); err != nil {
			logger.Error("console session failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger := newLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx, err := buildIndex(cfg.Engine, logger)
	if err != nil {
		logger.Error("failed to initialize index", "error", err)
		os.Exit(1)
	}

	telemetry := newTelemetry(ctx, logger, cfg.MetricsEnabled())
	server := newAPIServer(newSearchEngine(idx, telemetry, logger), telemetry, logger)

	handler := withJSONHeaders(server.routes())
	handler = withTelemetry(handler, telemetry, cfg.RequestLogsEnabled())

	httpServer := &http.Server{Addr: cfg.Server.Listen, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("search server listening", "listen", cfg.Server.Listen, "documents", idx.DocumentCount())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildIndex creates the index with the configured stop words and loads the
// corpus file, if any.
func buildIndex(cfg config.EngineConfig, logger *slog.Logger) (*index.Index, error) {
	idx, err := index.NewIndex(cfg.StopWords)
	if err != nil {
		return nil, err
	}
	if cfg.Corpus == "" {
		return idx, nil
	}

	entries, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return nil, err
	}
	added, err := corpus.Apply(idx, entries)
	if err != nil {
		return nil, err
	}
	logger.Info("corpus loaded", "path", cfg.Corpus, "documents", added)
	return idx, nil
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
