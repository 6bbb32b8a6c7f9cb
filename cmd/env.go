package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/forge/internal/api"
	"github.com/matheuskafuri/forge/internal/cache"
	"github.com/matheuskafuri/forge/internal/category"
	"github.com/matheuskafuri/forge/internal/config"
	"github.com/matheuskafuri/forge/internal/logging"
)

// env is what every command needs: config, a file logger and a client.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *api.Client
	closer io.Closer
}

func loadEnv(opts *options) (*env, error) {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, closer, err := logging.Open(cfg.LogFilePath(), cfg.LogLevel)
	if err != nil {
		// Logging is best effort; commands still run without it.
		log = zerolog.Nop()
	}

	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(log),
		api.WithUserAgent("forge/"+version),
	)
	return &env{cfg: cfg, log: log, client: client, closer: closer}, nil
}

func (e *env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

func (e *env) openCache() (*cache.Cache, error) {
	db, err := cache.Open(e.cfg.CacheFilePath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return db, nil
}

// context bounds a command's requests by the configured timeout, if any.
func (e *env) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d := e.cfg.Timeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// parseCategory accepts "", "all" or a known category.
func parseCategory(s string) (category.Category, error) {
	if s == "all" {
		return category.Any, nil
	}
	c, ok := category.Parse(s)
	if !ok {
		return "", fmt.Errorf("unknown category %q (valid: all, homelab, coding, personal, learning, creative)", s)
	}
	return c, nil
}
