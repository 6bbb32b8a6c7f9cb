package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/matheuskafuri/forge/internal/api"
	"github.com/matheuskafuri/forge/internal/browser"
	"github.com/matheuskafuri/forge/internal/cache"
	"github.com/matheuskafuri/forge/internal/category"
	"github.com/matheuskafuri/forge/internal/markdown"
	"github.com/matheuskafuri/forge/internal/notes"
)

type focusPane int

const (
	focusList focusPane = iota
	focusCard
)

type mode int

const (
	modeNormal mode = iota
	modeCompose
	modeSearch
	modeFilter
	modeConfirm
	modeHelp
)

type App struct {
	ctl   *notes.Controller
	db    *cache.Cache
	log   zerolog.Logger
	style string
	title string

	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	// Sub-components
	form        noteForm
	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar
	dialog      confirmDialog

	// State
	pendingLoads int
	cardScroll   int
	status       string
	err          error

	// Rendered markdown for the selected card, keyed by note and width.
	mdKey  string
	mdView string
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Notes *notes.Controller
	// DB receives a copy of every loaded note. Nil disables caching.
	DB            *cache.Cache
	Log           zerolog.Logger
	MarkdownStyle string
	// Title is shown on the right of the header, usually the backend URL.
	Title string
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search displayed notes..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	fb := newFilterBar()
	fb.point(opts.Notes.Filter())

	return &App{
		ctl:         opts.Notes,
		db:          opts.DB,
		log:         opts.Log,
		style:       opts.MarkdownStyle,
		title:       opts.Title,
		form:        newNoteForm(),
		searchInput: ti,
		spinner:     sp,
		filterBar:   fb,
	}
}

// Init issues the mount-time reload and the category counts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(a.ctl.Reload()), a.categoriesCmd())
}

// loadCmd runs a reload off the event loop. A nil request means nothing to do.
func (a *App) loadCmd(req func() notes.LoadResult) tea.Cmd {
	if req == nil {
		return nil
	}
	a.pendingLoads++
	return tea.Batch(func() tea.Msg {
		return notesLoadedMsg{res: req()}
	}, a.spinner.Tick)
}

func (a *App) categoriesCmd() tea.Cmd {
	req := a.ctl.LoadCategories()
	return func() tea.Msg {
		return categoriesLoadedMsg{res: req()}
	}
}

func (a *App) cacheNotesCmd(items []api.ProcessedNote) tea.Cmd {
	if a.db == nil || len(items) == 0 {
		return nil
	}
	db, log := a.db, a.log
	return func() tea.Msg {
		if err := db.UpsertNotes(items); err != nil {
			log.Warn().Err(err).Msg("caching notes")
			return nil
		}
		if err := db.SetLastSync(); err != nil {
			log.Warn().Err(err).Msg("recording sync time")
		}
		return nil
	}
}

func (a *App) uncacheCmd(id string) tea.Cmd {
	if a.db == nil {
		return nil
	}
	db, log := a.db, a.log
	return func() tea.Msg {
		if err := db.DeleteNote(id); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("removing cached note")
		}
		return nil
	}
}

func openLinkCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errMsg{err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return statusMsg{text: "copied markdown"}
	}
}

// visible is the displayed collection narrowed by the search query.
func (a *App) visible() []api.ProcessedNote {
	return searchNotes(a.searchInput.Value(), a.ctl.Notes())
}

func (a *App) selected() *api.ProcessedNote {
	items := a.visible()
	if a.cursor < 0 || a.cursor >= len(items) {
		return nil
	}
	n := items[a.cursor]
	return &n
}

func (a *App) clampCursor() {
	n := len(a.visible())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) busy() bool {
	return a.pendingLoads > 0 || a.ctl.Creating() || a.ctl.Deleting() != ""
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.form.setWidth(msg.Width - 6)
		return a, nil

	case tea.KeyMsg:
		// Clear sticky messages on any keypress
		a.err = nil
		a.status = ""
		return a.handleKey(msg)

	case notesLoadedMsg:
		a.pendingLoads = max(0, a.pendingLoads-1)
		if !a.ctl.ApplyLoad(msg.res) {
			if msg.res.Err != nil {
				a.log.Warn().Err(msg.res.Err).Str("category", msg.res.Filter.Label()).Msg("list load failed")
			}
			return a, nil
		}
		a.log.Debug().Int("count", len(msg.res.Page.Notes)).Int("total", msg.res.Page.Total).
			Str("category", msg.res.Filter.Label()).Msg("notes loaded")
		a.clampCursor()
		return a, a.cacheNotesCmd(msg.res.Page.Notes)

	case noteCreatedMsg:
		a.ctl.ApplyCreate(msg.res)
		a.form.settle(msg.res.Err == nil)
		if msg.res.Err != nil {
			a.log.Warn().Err(msg.res.Err).Msg("create failed")
			return a, nil
		}
		a.log.Info().Str("id", msg.res.Note.ID).Str("category", msg.res.Note.Category).Msg("note created")
		a.searchInput.SetValue("")
		a.cursor = 0
		a.cardScroll = 0
		return a, tea.Batch(a.cacheNotesCmd([]api.ProcessedNote{msg.res.Note}), a.categoriesCmd())

	case noteDeletedMsg:
		removed := a.ctl.ApplyDelete(msg.res)
		if msg.res.Err != nil {
			a.log.Warn().Err(msg.res.Err).Str("id", msg.res.ID).Msg("delete failed")
			return a, nil
		}
		a.log.Info().Str("id", msg.res.ID).Bool("removed", removed).Msg("note deleted")
		if a.dialog.open && a.dialog.note.ID == msg.res.ID {
			a.dialog.close()
			a.mode = modeNormal
		}
		a.clampCursor()
		return a, tea.Batch(a.uncacheCmd(msg.res.ID), a.categoriesCmd())

	case categoriesLoadedMsg:
		if msg.res.Err != nil {
			a.log.Debug().Err(msg.res.Err).Msg("category counts unavailable")
		}
		a.ctl.ApplyCategories(msg.res)
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	switch a.mode {
	case modeCompose:
		return a, a.form.update(msg)
	case modeSearch:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeCompose:
		return a.handleComposeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeConfirm:
		return a.handleConfirmKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	key := msg.String()
	switch key {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.visible())-1 {
			a.cursor++
			a.cardScroll = 0
		} else if a.focus == focusCard {
			a.cardScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.cardScroll = 0
		} else if a.focus == focusCard && a.cardScroll > 0 {
			a.cardScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusCard
		} else {
			a.focus = focusList
		}
		return a, nil
	case "n", "i":
		a.mode = modeCompose
		return a, a.form.focus()
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		a.filterBar.point(a.ctl.Filter())
		return a, nil
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key[0] - '0')
		if a.focus == focusCard && idx > 0 {
			return a, a.openLink(idx - 1)
		}
		if c, ok := a.filterBar.at(idx); ok {
			return a, a.applyFilter(c)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "d", "x":
		if n := a.selected(); n != nil {
			a.dialog.show(*n)
			a.ctl.ClearDeleteErr()
			a.mode = modeConfirm
		}
		return a, nil
	case "o", "enter":
		return a, a.openLink(0)
	case "y":
		if n := a.selected(); n != nil {
			return a, copyCmd(n.Markdown)
		}
		return a, nil
	case "r":
		return a, tea.Batch(a.loadCmd(a.ctl.Reload()), a.categoriesCmd())
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) openLink(i int) tea.Cmd {
	n := a.selected()
	if n == nil || i < 0 || i >= len(n.Links) {
		return nil
	}
	return openLinkCmd(n.Links[i].URL)
}

func (a *App) applyFilter(c category.Category) tea.Cmd {
	req := a.ctl.SetFilter(c)
	if req == nil {
		return nil
	}
	a.cursor = 0
	a.cardScroll = 0
	return a.loadCmd(req)
}

// submit starts a create. It does nothing while one is in flight or when the
// trimmed text is blank.
func (a *App) submit() tea.Cmd {
	if !a.form.canSubmit() {
		return nil
	}
	req, ok := a.ctl.Submit(a.form.value())
	if !ok {
		return nil
	}
	a.form.begin()
	return tea.Batch(func() tea.Msg {
		return noteCreatedMsg{res: req()}
	}, a.spinner.Tick)
}

func (a *App) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.form.blur()
		return a, nil
	case "ctrl+s", "alt+enter":
		return a, a.submit()
	}
	return a, a.form.update(msg)
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.clampCursor()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() != before {
		a.cursor = 0
		a.cardScroll = 0
	}
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		a.filterBar.move(-1)
		return a, nil
	case "right", "l":
		a.filterBar.move(1)
		return a, nil
	case " ", "enter":
		return a, a.applyFilter(a.filterBar.current())
	case "0", "1", "2", "3", "4", "5":
		if c, ok := a.filterBar.at(int(key[0] - '0')); ok {
			a.filterBar.point(c)
			return a, a.applyFilter(c)
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Both buttons are disabled while the delete is in flight.
	if a.ctl.Deleting() != "" {
		return a, nil
	}
	switch msg.String() {
	case "n", "esc":
		return a, a.cancelDelete()
	case "y":
		return a, a.confirmDelete()
	case "enter":
		if a.dialog.button == buttonCancel {
			return a, a.cancelDelete()
		}
		return a, a.confirmDelete()
	case "tab", "shift+tab", "left", "right", "h", "l":
		a.dialog.toggle()
		return a, nil
	}
	return a, nil
}

func (a *App) cancelDelete() tea.Cmd {
	a.dialog.close()
	a.ctl.ClearDeleteErr()
	a.mode = modeNormal
	return nil
}

func (a *App) confirmDelete() tea.Cmd {
	req, ok := a.ctl.Delete(a.dialog.note.ID)
	if !ok {
		return nil
	}
	return tea.Batch(func() tea.Msg {
		return noteDeletedMsg{res: req()}
	}, a.spinner.Tick)
}

// renderedMarkdown memoizes the glamour output for the selected card.
func (a *App) renderedMarkdown(n *api.ProcessedNote, width int) string {
	if n == nil {
		return ""
	}
	key := fmt.Sprintf("%s/%d/%d", n.ID, width, len(n.Markdown))
	if key != a.mdKey {
		a.mdKey = key
		a.mdView = markdown.Render(n.Markdown, width, a.style)
	}
	return a.mdView
}

func (a *App) hints() string {
	switch a.mode {
	case modeCompose:
		return "ctrl+s submit  esc leave"
	case modeSearch:
		return "esc clear  enter keep"
	case modeFilter:
		return "←/→ move  enter pick  0-5 jump  esc done"
	case modeConfirm:
		return "y delete  n cancel"
	}
	return "n new  f filter  / search  d delete  ? help  q quit"
}

func (a *App) busyLabel() string {
	switch {
	case a.ctl.Creating():
		return a.spinner.View() + " processing"
	case a.ctl.Deleting() != "":
		return a.spinner.View() + " deleting"
	case a.pendingLoads > 0:
		return a.spinner.View() + " loading"
	}
	return ""
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  forge")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	// Header
	headerLeft := headerStyle.Render("forge")
	headerRight := headerMetaStyle.Render(a.title)
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Filter bar, replaced by the search input while searching
	filter := a.filterBar.render(a.ctl.Filter(), a.ctl.Count, a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	composer := a.form.view(a.width, a.ctl.CreateErr())

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(filter) - lipgloss.Height(composer) - 1 - 2
	if contentHeight < 3 {
		contentHeight = 3
	}

	items := a.visible()
	var content string
	if a.mode == modeConfirm && a.dialog.open {
		deleting := a.ctl.Deleting() != ""
		content = lipgloss.Place(a.width, contentHeight+2, lipgloss.Center, lipgloss.Center,
			a.dialog.view(deleting, a.ctl.DeleteErr()))
	} else {
		listWidth := int(float64(a.width) * 0.35)
		cardWidth := a.width - listWidth - 1

		listContent := renderList(items, a.cursor, a.ctl.Deleting(), contentHeight, listWidth-4)
		listStyle := listPaneStyle
		if a.focus == focusList {
			listStyle = listPaneActiveStyle
		}
		listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

		sel := a.selected()
		innerCard := cardWidth - 4
		md := a.renderedMarkdown(sel, innerCard-2)
		a.cardScroll = min(a.cardScroll, maxCardScroll(sel, innerCard, contentHeight, md))
		cardContent := renderCard(sel, innerCard, contentHeight, a.cardScroll, md)
		cardStyle := cardPaneStyle
		if a.focus == focusCard {
			cardStyle = cardPaneActiveStyle
		}
		cardPane := cardStyle.Width(cardWidth - 2).Height(contentHeight).Render(cardContent)

		content = lipgloss.JoinHorizontal(lipgloss.Top, listPane, cardPane)
	}

	var loadErr error
	if a.err != nil {
		loadErr = a.err
	} else if a.ctl.LoadErr() != nil {
		loadErr = a.ctl.LoadErr()
	}
	status := renderStatusBar(statusLine{
		shown:   len(items),
		total:   a.ctl.Total(),
		filter:  a.ctl.Filter().Label(),
		search:  a.searchInput.Value(),
		busy:    a.busyLabel(),
		message: a.status,
		err:     loadErr,
		hints:   a.hints(),
	}, a.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, composer, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("forge")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓      Move through notes (scroll in card focus)\n" +
		"  tab           Switch focus between list and card\n\n" +
		dim.Render("Notes") + "\n" +
		"  n, i          Compose a note\n" +
		"  ctrl+s        Submit (also alt+enter)\n" +
		"  d, x          Delete selected note\n" +
		"  y             Copy markdown\n" +
		"  o, enter      Open first link\n" +
		"  1-9           Open link N (card focus)\n" +
		"  r             Reload\n\n" +
		dim.Render("Filtering") + "\n" +
		"  f             Category filter mode\n" +
		"  0-5           Pick filter (0 is all)\n" +
		"  /             Search displayed notes\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

