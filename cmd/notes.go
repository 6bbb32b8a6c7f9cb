package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matheuskafuri/forge/internal/api"
	"github.com/matheuskafuri/forge/internal/cache"
	"github.com/matheuskafuri/forge/internal/markdown"
	"github.com/matheuskafuri/forge/internal/tui"
)

func newAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add [TEXT...]",
		Short: "Submit a note for processing",
		Long:  "Submit a note. With no arguments the note is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				content = string(data)
			}
			content = strings.TrimSpace(content)
			if content == "" {
				return errors.New("note is empty")
			}

			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.context(cmd)
			defer cancel()
			n, err := e.client.CreateNote(ctx, content)
			if err != nil {
				return fmt.Errorf("creating note: %w", err)
			}
			cacheNotes(e, n)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  [%s]  %s\n", n.ID, n.Category, n.Title)
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var (
		cat     string
		limit   int
		offset  int
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseCategory(cat)
			if err != nil {
				return err
			}
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if limit <= 0 {
				limit = e.cfg.PageSize
			}

			var page api.NotesPage
			if offline {
				db, err := e.openCache()
				if err != nil {
					return err
				}
				defer db.Close()
				cached, err := db.GetNotes(cache.QueryOpts{Category: string(filter), Limit: limit})
				if err != nil {
					return fmt.Errorf("reading cache: %w", err)
				}
				page = api.NotesPage{Notes: cached, Total: len(cached)}
			} else {
				ctx, cancel := e.context(cmd)
				defer cancel()
				page, err = e.client.ListNotes(ctx, api.ListOptions{Category: string(filter), Limit: limit, Offset: offset})
				if err != nil {
					return fmt.Errorf("listing notes: %w", err)
				}
				cacheNotes(e, page.Notes...)
			}

			printNotes(cmd.OutOrStdout(), page)
			return nil
		},
	}
	cmd.Flags().StringVar(&cat, "category", "", "only this category")
	cmd.Flags().IntVar(&limit, "limit", 0, "notes per page (default: page_size from config)")
	cmd.Flags().IntVar(&offset, "offset", api.DefaultOffset, "notes to skip")
	cmd.Flags().BoolVar(&offline, "offline", false, "read the local cache instead of the backend")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.context(cmd)
			defer cancel()
			n, err := e.client.GetNote(ctx, args[0])
			if err != nil {
				return fmt.Errorf("fetching note: %w", err)
			}

			out := cmd.OutOrStdout()
			if raw {
				if isTerminal(out) {
					return markdown.Highlight(out, n.Markdown, "")
				}
				_, err := io.WriteString(out, n.Markdown)
				return err
			}
			printNote(out, n, e.cfg.MarkdownStyle)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print only the markdown source")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id := args[0]
			if !yes {
				ok, err := confirmDelete(cmd, e, id)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			// Time spent at the prompt does not count against the delete.
			ctx, cancel := e.context(cmd)
			defer cancel()
			if err := e.client.DeleteNote(ctx, id); err != nil {
				return fmt.Errorf("deleting note: %w", err)
			}
			if e.cfg.Cache {
				if db, err := e.openCache(); err == nil {
					if err := db.DeleteNote(id); err != nil {
						e.log.Warn().Err(err).Str("id", id).Msg("removing cached note")
					}
					db.Close()
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirmDelete(cmd *cobra.Command, e *env, id string) (bool, error) {
	ctx, cancel := e.context(cmd)
	n, err := e.client.GetNote(ctx, id)
	cancel()
	if err != nil {
		return false, fmt.Errorf("fetching note: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Delete %q (%s)? [y/N] ", n.Title, n.Category)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes", nil
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show note counts per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.context(cmd)
			defer cancel()
			counts, err := e.client.Categories(ctx)
			if err != nil {
				return fmt.Errorf("listing categories: %w", err)
			}

			out := cmd.OutOrStdout()
			total := 0
			for _, c := range counts {
				fmt.Fprintf(out, "%-10s %d\n", c.Name, c.Count)
				total += c.Count
			}
			fmt.Fprintf(out, "%-10s %d\n", "all", total)
			return nil
		},
	}
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.context(cmd)
			defer cancel()
			h, err := e.client.Health(ctx)
			if err != nil {
				return fmt.Errorf("checking health: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", e.client.BaseURL())
			fmt.Fprintf(out, "Status: %s\n", h.Status)
			if h.Service != "" {
				fmt.Fprintf(out, "Service: %s\n", h.Service)
			}
			names := make([]string, 0, len(h.Components))
			for name := range h.Components {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				state := "down"
				if h.Components[name] {
					state = "up"
				}
				fmt.Fprintf(out, "  %-10s %s\n", name, state)
			}
			return nil
		},
	}
}

// cacheNotes copies notes into the local snapshot. Failures are logged only.
func cacheNotes(e *env, items ...api.ProcessedNote) {
	if !e.cfg.Cache || len(items) == 0 {
		return
	}
	db, err := e.openCache()
	if err != nil {
		e.log.Warn().Err(err).Msg("cache unavailable")
		return
	}
	defer db.Close()
	if err := db.UpsertNotes(items); err != nil {
		e.log.Warn().Err(err).Msg("caching notes")
		return
	}
	db.SetLastSync()
}

func printNotes(w io.Writer, page api.NotesPage) {
	if len(page.Notes) == 0 {
		fmt.Fprintln(w, "no entries found")
		return
	}
	for _, n := range page.Notes {
		synced := " "
		if n.Synced() {
			synced = "*"
		}
		fmt.Fprintf(w, "%-36s %s %-9s %-8s %s\n", n.ID, synced, n.Category, age(n.CreatedAt), n.Title)
	}
	fmt.Fprintf(w, "\n%d of %d notes\n", len(page.Notes), page.Total)
}

func printNote(w io.Writer, n api.ProcessedNote, style string) {
	fmt.Fprintf(w, "%s\n", n.Title)
	meta := fmt.Sprintf("%s · %s", n.Category, n.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
	if n.Synced() {
		meta += " · [ synced ]"
	}
	if p := markdown.Tasks(n.Markdown); p.Total > 0 {
		meta += fmt.Sprintf(" · tasks %d/%d", p.Done, p.Total)
	}
	fmt.Fprintln(w, meta)
	if n.Original != "" {
		fmt.Fprintf(w, "\n> %s\n", strings.ReplaceAll(n.Original, "\n", "\n> "))
	}
	if strings.TrimSpace(n.Markdown) != "" {
		fmt.Fprintf(w, "\n%s\n", markdown.Render(n.Markdown, terminalWidth(w), style))
	}
	if len(n.Links) > 0 {
		fmt.Fprintln(w, "\nResources")
		for i, l := range n.Links {
			fmt.Fprintf(w, "%d. %s %s\n   %s\n", i+1, tui.LinkLabel(l.Type), l.Title, l.URL)
			if l.Description != "" {
				fmt.Fprintf(w, "   %s\n", l.Description)
			}
		}
	}
}

func age(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return min(width, 100)
		}
	}
	return 80
}
