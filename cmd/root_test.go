package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/forge/internal/api"
	"github.com/matheuskafuri/forge/internal/api/apitest"
	"github.com/matheuskafuri/forge/internal/config"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(72 * time.Hour); got != "3d" {
		t.Errorf("formatDuration(72h) = %q", got)
	}
	if got := formatDuration(5 * time.Hour); got != "5h" {
		t.Errorf("formatDuration(5h) = %q", got)
	}
}

func TestParseCategory(t *testing.T) {
	for _, s := range []string{"", "all", "homelab", "Coding"} {
		if _, err := parseCategory(s); err != nil {
			t.Errorf("parseCategory(%q): %v", s, err)
		}
	}
	if _, err := parseCategory("groceries"); err == nil {
		t.Error("expected error for unknown category")
	}
}

type harness struct {
	t      *testing.T
	srv    *apitest.Server
	config string
	dir    string
}

func newHarness(t *testing.T, seed ...api.ProcessedNote) *harness {
	t.Helper()
	t.Setenv(config.EnvAPIURL, "")
	os.Unsetenv(config.EnvAPIURL)

	srv := apitest.NewServer(t, seed...)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	content := "api_url: " + srv.URL + "\n" +
		"markdown_style: notty\n" +
		"cache_file: " + filepath.Join(dir, "notes.db") + "\n" +
		"log_file: " + filepath.Join(dir, "forge.log") + "\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return &harness{t: t, srv: srv, config: cfg, dir: dir}
}

// setConfig appends raw YAML lines to the harness config.
func (h *harness) setConfig(lines string) {
	h.t.Helper()
	f, err := os.OpenFile(h.config, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		h.t.Fatalf("opening config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(lines); err != nil {
		h.t.Fatalf("writing config: %v", err)
	}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	return h.runInput(strings.NewReader(stdin), args...)
}

func (h *harness) runInput(stdin io.Reader, args ...string) (string, error) {
	h.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(stdin)
	root.SetArgs(append(args, "--config", h.config))
	err := root.Execute()
	return out.String(), err
}

func sampleNote() api.ProcessedNote {
	return api.ProcessedNote{
		ID:        "n1",
		Original:  "pihole dns",
		Title:     "Pi-hole DNS",
		Category:  "homelab",
		Markdown:  "- [x] flash\n- [ ] configure",
		Links:     []api.Link{{Title: "pi-hole", URL: "https://github.com/pi-hole/pi-hole", Type: "github"}},
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "forge ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestVersionCheck(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v9.9.9"}`))
	}))
	defer srv.Close()

	out, err := h.run("", "version", "--check", "--release-url", srv.URL)
	if err != nil {
		t.Fatalf("version --check: %v", err)
	}
	if !strings.Contains(out, "forge 9.9.9 is available.") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAddThenListOffline(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "add", "buy", "milk")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Buy milk") || !strings.Contains(out, "[personal]") {
		t.Errorf("unexpected add output %q", out)
	}
	if n := h.srv.Notes(); len(n) != 1 || n[0].Original != "buy milk" {
		t.Fatalf("backend notes = %+v", n)
	}

	out, err = h.run("", "list", "--offline")
	if err != nil {
		t.Fatalf("list --offline: %v", err)
	}
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("created note should be cached, got %q", out)
	}
}

func TestAddFromStdin(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("read the rust book\n", "add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if n := h.srv.Notes(); len(n) != 1 || n[0].Original != "read the rust book" {
		t.Errorf("stdin content not submitted: %+v", n)
	}
}

func TestAddBlankIssuesNothing(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("", "add", "   "); err == nil {
		t.Error("expected error for blank note")
	}
	if len(h.srv.Requests()) != 0 {
		t.Error("blank note must not reach the backend")
	}
}

func TestListScopesAndFails(t *testing.T) {
	h := newHarness(t, sampleNote())

	out, err := h.run("", "list", "--category", "homelab", "--limit", "10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Pi-hole DNS") || !strings.Contains(out, "1 of 1 notes") {
		t.Errorf("unexpected list output %q", out)
	}
	reqs := h.srv.Requests()
	q := reqs[len(reqs)-1].Query
	if q["category"] != "homelab" || q["limit"] != "10" || q["offset"] != "0" {
		t.Errorf("unexpected query %v", q)
	}

	h.srv.FailNext("GET", "/api/notes", 503)
	if _, err := h.run("", "list"); err == nil || !strings.Contains(err.Error(), "injected failure") {
		t.Errorf("list must report backend failures, got %v", err)
	}

	if _, err := h.run("", "list", "--category", "groceries"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestListEmpty(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "no entries found") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestShow(t *testing.T) {
	h := newHarness(t, sampleNote())

	out, err := h.run("", "show", "n1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Pi-hole DNS", "homelab", "tasks 1/2", "[ GH ] pi-hole", "> pihole dns"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, err = h.run("", "show", "n1", "--raw")
	if err != nil {
		t.Fatalf("show --raw: %v", err)
	}
	if out != sampleNote().Markdown {
		t.Errorf("raw output = %q", out)
	}

	if _, err := h.run("", "show", "missing"); err == nil || !strings.Contains(err.Error(), "Note not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestDeletePrompt(t *testing.T) {
	h := newHarness(t, sampleNote())

	out, err := h.run("n\n", "delete", "n1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, `Delete "Pi-hole DNS" (homelab)?`) || !strings.Contains(out, "Cancelled.") {
		t.Errorf("unexpected prompt output %q", out)
	}
	if len(h.srv.Notes()) != 1 {
		t.Fatal("declined prompt must keep the note")
	}

	if _, err := h.run("y\n", "delete", "n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(h.srv.Notes()) != 0 {
		t.Error("confirmed delete should remove the note")
	}
}

// slowReader delays its first read, like a user thinking before answering.
type slowReader struct {
	delay time.Duration
	r     io.Reader
	once  bool
}

func (s *slowReader) Read(p []byte) (int, error) {
	if !s.once {
		s.once = true
		time.Sleep(s.delay)
	}
	return s.r.Read(p)
}

func TestDeletePromptOutlastsTimeout(t *testing.T) {
	h := newHarness(t, sampleNote())
	h.setConfig("request_timeout: 300ms\n")

	in := &slowReader{delay: 500 * time.Millisecond, r: strings.NewReader("y\n")}
	out, err := h.runInput(in, "delete", "n1")
	if err != nil {
		t.Fatalf("delete after slow answer: %v", err)
	}
	if !strings.Contains(out, "Deleted n1.") {
		t.Errorf("unexpected output %q", out)
	}
	if len(h.srv.Notes()) != 0 {
		t.Error("confirmed delete should remove the note")
	}
}

func TestDeleteYes(t *testing.T) {
	h := newHarness(t, sampleNote())
	out, err := h.run("", "delete", "n1", "--yes")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Deleted n1.") || len(h.srv.Notes()) != 0 {
		t.Errorf("unexpected result %q, notes=%d", out, len(h.srv.Notes()))
	}

	h.srv.FailNext("DELETE", "/api/notes", 500)
	if _, err := h.run("", "delete", "n2", "-y"); err == nil {
		t.Error("failed delete must be reported")
	}
}

func TestCategoriesAndHealth(t *testing.T) {
	h := newHarness(t, sampleNote())

	out, err := h.run("", "categories")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !strings.Contains(out, "homelab    1") || !strings.Contains(out, "all        1") {
		t.Errorf("unexpected categories output:\n%s", out)
	}

	out, err = h.run("", "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "Status: healthy") {
		t.Errorf("unexpected health output:\n%s", out)
	}
}

func TestExportJSON(t *testing.T) {
	h := newHarness(t, sampleNote())
	path := filepath.Join(h.dir, "notes.json")
	if _, err := h.run("", "export", "--format", "json", "--out", path); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var got []api.ProcessedNote
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestExportParquetFile(t *testing.T) {
	h := newHarness(t, sampleNote())
	path := filepath.Join(h.dir, "notes.parquet")
	if _, err := h.run("", "export", "--out", path); err != nil {
		t.Fatalf("export: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("expected a parquet file, stat err=%v", err)
	}
	if _, err := h.run("", "export", "--out", "-"); err == nil {
		t.Error("parquet to stdout should be refused")
	}
}

func TestCacheStatsAndPrune(t *testing.T) {
	h := newHarness(t, sampleNote())
	if _, err := h.run("", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}

	out, err := h.run("", "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !strings.Contains(out, "Notes: 1") {
		t.Errorf("unexpected stats output:\n%s", out)
	}

	out, err = h.run("", "cache", "prune", "--older-than", "1d")
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	if !strings.Contains(out, "Nothing to prune.") {
		t.Errorf("fresh notes should survive prune, got %q", out)
	}

	if _, err := h.run("", "cache", "prune", "--older-than", "soon"); err == nil {
		t.Error("expected error for bad --older-than")
	}
}
