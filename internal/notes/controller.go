// Package notes holds the state of the displayed note collection.
//
// The Controller never does I/O itself. Each operation hands back a request
// closure; the UI runs it off its event loop and passes the result to the
// matching Apply method on the event loop, so all mutation happens on one
// goroutine and no locking is needed.
package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/forge/internal/api"
	"github.com/matheuskafuri/forge/internal/category"
)

// Backend is the subset of the API client the controller needs.
type Backend interface {
	CreateNote(ctx context.Context, content string) (api.ProcessedNote, error)
	ListNotes(ctx context.Context, opts api.ListOptions) (api.NotesPage, error)
	DeleteNote(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]api.CategoryCount, error)
}

// LoadErrorPolicy decides what a failed list load does to the UI.
type LoadErrorPolicy string

const (
	// IgnoreLoadErrors keeps the previous collection and shows nothing, so an
	// unreachable backend leaves the UI usable.
	IgnoreLoadErrors LoadErrorPolicy = "ignore"
	// SurfaceLoadErrors keeps the previous collection and records the error.
	SurfaceLoadErrors LoadErrorPolicy = "surface"
)

type Options struct {
	PageSize   int
	LoadErrors LoadErrorPolicy
	// Filter is the category the first reload is scoped to.
	Filter category.Category
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

type Controller struct {
	backend Backend
	opts    Options

	notes  []api.ProcessedNote
	total  int
	filter category.Category
	counts []api.CategoryCount

	loadSeq  uint64
	creating bool
	deleting string

	loadErr   error
	createErr error
	deleteErr error
}

func New(backend Backend, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = api.DefaultLimit
	}
	if opts.LoadErrors == "" {
		opts.LoadErrors = IgnoreLoadErrors
	}
	return &Controller{backend: backend, opts: opts, filter: opts.Filter}
}

type LoadResult struct {
	seq    uint64
	Filter category.Category
	Page   api.NotesPage
	Err    error
}

type CreateResult struct {
	Note api.ProcessedNote
	Err  error
}

type DeleteResult struct {
	ID  string
	Err error
}

type CategoriesResult struct {
	Counts []api.CategoryCount
	Err    error
}

func (c *Controller) context() (context.Context, context.CancelFunc) {
	if c.opts.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.opts.Timeout)
	}
	return context.WithCancel(context.Background())
}

// Seed installs a collection as if it had been loaded, without a request.
func (c *Controller) Seed(notes []api.ProcessedNote) {
	c.notes = append([]api.ProcessedNote(nil), notes...)
	c.total = len(c.notes)
}

// Reload returns a request for the first page of the current filter. Only the
// most recently issued reload may replace the collection.
func (c *Controller) Reload() func() LoadResult {
	c.loadSeq++
	seq := c.loadSeq
	filter := c.filter
	opts := api.ListOptions{Category: string(filter), Limit: c.opts.PageSize, Offset: 0}
	backend := c.backend
	return func() LoadResult {
		ctx, cancel := c.context()
		defer cancel()
		page, err := backend.ListNotes(ctx, opts)
		return LoadResult{seq: seq, Filter: filter, Page: page, Err: err}
	}
}

// ApplyLoad reports whether the collection was replaced.
func (c *Controller) ApplyLoad(r LoadResult) bool {
	if r.seq != c.loadSeq {
		return false
	}
	if r.Err != nil {
		if c.opts.LoadErrors == SurfaceLoadErrors {
			c.loadErr = fmt.Errorf("loading notes: %w", r.Err)
		}
		return false
	}
	c.notes = append([]api.ProcessedNote(nil), r.Page.Notes...)
	c.total = r.Page.Total
	c.loadErr = nil
	return true
}

// SetFilter switches the category filter. It returns the reload to issue, or
// nil if the filter did not change.
func (c *Controller) SetFilter(f category.Category) func() LoadResult {
	if f == c.filter {
		return nil
	}
	c.filter = f
	return c.Reload()
}

// Submit starts a create for content. It refuses blank content and a second
// create while one is in flight.
func (c *Controller) Submit(content string) (func() CreateResult, bool) {
	content = strings.TrimSpace(content)
	if content == "" || c.creating {
		return nil, false
	}
	c.creating = true
	c.createErr = nil
	backend := c.backend
	return func() CreateResult {
		ctx, cancel := c.context()
		defer cancel()
		note, err := backend.CreateNote(ctx, content)
		return CreateResult{Note: note, Err: err}
	}, true
}

func (c *Controller) ApplyCreate(r CreateResult) {
	c.creating = false
	if r.Err != nil {
		c.createErr = r.Err
		return
	}
	c.notes = append([]api.ProcessedNote{r.Note}, c.notes...)
	c.total++
	c.createErr = nil
}

// Delete starts a delete for id. The note stays in the collection until the
// backend confirms.
func (c *Controller) Delete(id string) (func() DeleteResult, bool) {
	if id == "" || c.deleting != "" {
		return nil, false
	}
	c.deleting = id
	c.deleteErr = nil
	backend := c.backend
	return func() DeleteResult {
		ctx, cancel := c.context()
		defer cancel()
		return DeleteResult{ID: id, Err: backend.DeleteNote(ctx, id)}
	}, true
}

// ApplyDelete reports whether anything was removed. A failed delete leaves
// the note in place and records the error.
func (c *Controller) ApplyDelete(r DeleteResult) bool {
	if c.deleting == r.ID {
		c.deleting = ""
	}
	if r.Err != nil {
		c.deleteErr = r.Err
		return false
	}
	c.deleteErr = nil
	kept := c.notes[:0]
	removed := 0
	for _, n := range c.notes {
		if n.ID == r.ID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	c.notes = kept
	c.total = max(0, c.total-removed)
	return removed > 0
}

// ClearDeleteErr drops a recorded delete failure, e.g. when the dialog closes.
func (c *Controller) ClearDeleteErr() {
	c.deleteErr = nil
}

func (c *Controller) LoadCategories() func() CategoriesResult {
	backend := c.backend
	return func() CategoriesResult {
		ctx, cancel := c.context()
		defer cancel()
		counts, err := backend.Categories(ctx)
		return CategoriesResult{Counts: counts, Err: err}
	}
}

// ApplyCategories keeps the previous counts on failure.
func (c *Controller) ApplyCategories(r CategoriesResult) {
	if r.Err != nil {
		return
	}
	c.counts = r.Counts
}

// Notes returns a copy of the displayed collection.
func (c *Controller) Notes() []api.ProcessedNote {
	return append([]api.ProcessedNote(nil), c.notes...)
}

func (c *Controller) At(i int) (api.ProcessedNote, bool) {
	if i < 0 || i >= len(c.notes) {
		return api.ProcessedNote{}, false
	}
	return c.notes[i], true
}

func (c *Controller) Find(id string) (api.ProcessedNote, bool) {
	for _, n := range c.notes {
		if n.ID == id {
			return n, true
		}
	}
	return api.ProcessedNote{}, false
}

func (c *Controller) Len() int {
	return len(c.notes)
}

func (c *Controller) Total() int {
	return c.total
}

func (c *Controller) Filter() category.Category {
	return c.filter
}

func (c *Controller) Creating() bool {
	return c.creating
}

func (c *Controller) Deleting() string {
	return c.deleting
}

func (c *Controller) LoadErr() error {
	return c.loadErr
}

func (c *Controller) CreateErr() error {
	return c.createErr
}

func (c *Controller) DeleteErr() error {
	return c.deleteErr
}

func (c *Controller) Counts() []api.CategoryCount {
	return c.counts
}

func (c *Controller) LoadErrorPolicy() LoadErrorPolicy {
	return c.opts.LoadErrors
}

// Count returns the backend's count for cat, or -1 if unknown.
func (c *Controller) Count(cat category.Category) int {
	if cat == category.Any {
		total := 0
		for _, cc := range c.counts {
			total += cc.Count
		}
		if len(c.counts) == 0 {
			return -1
		}
		return total
	}
	for _, cc := range c.counts {
		if cc.Name == string(cat) {
			return cc.Count
		}
	}
	return -1
}
