package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/forge/internal/cache"
	"github.com/matheuskafuri/forge/internal/notes"
	"github.com/matheuskafuri/forge/internal/tui"
)

func runTUI(cmd *cobra.Command, opts *options) error {
	e, err := loadEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	filter, err := parseCategory(opts.category)
	if err != nil {
		return err
	}

	ctl := notes.New(e.client, notes.Options{
		PageSize:   e.cfg.PageSize,
		LoadErrors: notes.LoadErrorPolicy(e.cfg.OnLoadError),
		Timeout:    e.cfg.Timeout(),
		Filter:     filter,
	})

	var db *cache.Cache
	if e.cfg.Cache {
		db, err = e.openCache()
		if err != nil {
			e.log.Warn().Err(err).Msg("cache disabled")
			db = nil
		} else {
			defer db.Close()
		}
	}
	if opts.cached {
		if db == nil {
			return fmt.Errorf("--cached needs the cache enabled in config")
		}
		seed, err := db.GetNotes(cache.QueryOpts{Category: string(filter), Limit: e.cfg.PageSize})
		if err != nil {
			return fmt.Errorf("reading cache: %w", err)
		}
		ctl.Seed(seed)
	}

	e.log.Info().Str("api_url", e.cfg.APIURL).Str("category", filter.Label()).Msg("starting ui")
	return tui.Run(tui.RunOpts{
		Notes:         ctl,
		DB:            db,
		Log:           e.log,
		MarkdownStyle: e.cfg.MarkdownStyle,
		Title:         e.client.BaseURL(),
	})
}
