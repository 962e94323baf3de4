// Aurum is the banking CRM assistant service.
//
// It accepts natural-language questions over HTTP, classifies them with a
// language model, checks the caller's role against the permission matrix,
// fetches the matching CRM data, and answers in plain language.
//
// Configuration is loaded from a YAML file (default ./aurum.yaml, override
// with AURUM_CONFIG) with environment variables taking precedence over file
// values. See internal/aurum/config for the full set of knobs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calebward/aurum/common/environment"
	"github.com/calebward/aurum/common/version"
	"github.com/calebward/aurum/internal/aurum/config"
	"github.com/calebward/aurum/internal/aurum/directory"
	"github.com/calebward/aurum/internal/aurum/nlp"
	"github.com/calebward/aurum/internal/aurum/query"
	"github.com/calebward/aurum/internal/aurum/server"
	"github.com/calebward/aurum/internal/aurum/store"
)

func main() {
	fmt.Printf("Aurum CRM Assistant\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	cfg, err := config.Load(environment.StringOr("AURUM_CONFIG", "./aurum.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log)

	if err := run(cfg); err != nil {
		slog.Error("aurum exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	completer := nlp.New(nlp.Config{
		APIKey:  cfg.Oracle.APIKey,
		BaseURL: cfg.Oracle.BaseURL,
		Model:   cfg.Oracle.Model,
		Timeout: cfg.Oracle.Timeout,
	})
	classifier := nlp.NewClassifier(completer)

	rateLimit := cfg.Limits.RateLimit
	if rateLimit == 0 {
		rateLimit = nlp.DefaultRateLimit
	}
	limiter := nlp.NewRateLimiter(rateLimit, time.Minute)

	tokenBudget := cfg.Limits.TokenBudget
	if tokenBudget == 0 {
		tokenBudget = nlp.DefaultTokenBudget
	}
	budget := nlp.NewTokenBudget(db, tokenBudget)

	data := directory.New(directory.Config{
		ClientsURL:      cfg.Directory.ClientsURL,
		TransactionsURL: cfg.Directory.TransactionsURL,
		UsersURL:        cfg.Directory.UsersURL,
		Timeout:         cfg.Directory.Timeout,
	})

	engine := query.New(classifier, completer, data, limiter, budget)
	srv := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		JWTSecret: cfg.Server.JWTSecret,
	}, engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("aurum starting",
		"addr", cfg.Server.Addr,
		"model", cfg.Oracle.Model,
		"rate_limit", rateLimit,
		"token_budget", tokenBudget,
	)
	return srv.Run(ctx)
}

// setupLogging installs the process-wide slog handler.
func setupLogging(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
