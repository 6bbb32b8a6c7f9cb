package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matheuskafuri/forge/internal/api"
	"github.com/matheuskafuri/forge/internal/api/apitest"
)

func sampleNote(id, category string) api.ProcessedNote {
	return api.ProcessedNote{
		ID:        id,
		Original:  "raw " + id,
		Title:     "Note " + id,
		Category:  category,
		Markdown:  "# " + id,
		Links:     []api.Link{{Title: "Repo", URL: "https://github.com/x/y", Type: "github"}},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateNote(t *testing.T) {
	srv := apitest.NewServer(t)
	c := api.New(srv.URL)

	note, err := c.CreateNote(context.Background(), "buy milk")
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.Title != "Buy milk" || note.Category != "personal" || note.Original != "buy milk" {
		t.Errorf("unexpected note: %+v", note)
	}
	if _, err := uuid.Parse(note.ID); err != nil {
		t.Errorf("expected server-assigned uuid, got %q", note.ID)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if got := reqs[0].Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if _, err := uuid.Parse(reqs[0].Header.Get("X-Request-ID")); err != nil {
		t.Errorf("expected uuid request id, got %q", reqs[0].Header.Get("X-Request-ID"))
	}
}

func TestListNotesQuery(t *testing.T) {
	tests := []struct {
		name string
		opts api.ListOptions
		want map[string]string
	}{
		{"defaults", api.ListOptions{}, map[string]string{"limit": "50", "offset": "0"}},
		{"category", api.ListOptions{Category: "coding"}, map[string]string{"category": "coding", "limit": "50", "offset": "0"}},
		{"paging", api.ListOptions{Limit: 10, Offset: 20}, map[string]string{"limit": "10", "offset": "20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			c := api.New(srv.URL)
			if _, err := c.ListNotes(context.Background(), tt.opts); err != nil {
				t.Fatalf("ListNotes: %v", err)
			}
			q := srv.Requests()[0].Query
			if len(q) != len(tt.want) {
				t.Errorf("query = %v, want %v", q, tt.want)
			}
			for k, v := range tt.want {
				if q[k] != v {
					t.Errorf("query[%s] = %q, want %q", k, q[k], v)
				}
			}
		})
	}
}

func TestListNotesFiltersAndTotals(t *testing.T) {
	srv := apitest.NewServer(t, sampleNote("1", "coding"), sampleNote("2", "homelab"), sampleNote("3", "coding"))
	c := api.New(srv.URL)

	page, err := c.ListNotes(context.Background(), api.ListOptions{Category: "coding"})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if page.Total != 2 || len(page.Notes) != 2 {
		t.Fatalf("expected 2 coding notes, got total=%d len=%d", page.Total, len(page.Notes))
	}
	if page.Notes[0].ID != "1" || page.Notes[1].ID != "3" {
		t.Errorf("unexpected order: %s, %s", page.Notes[0].ID, page.Notes[1].ID)
	}
}

func TestListNotesNullNotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notes": null, "total": 0}`))
	}))
	defer srv.Close()

	page, err := api.New(srv.URL).ListNotes(context.Background(), api.ListOptions{})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if page.Notes == nil {
		t.Error("expected empty slice for null notes")
	}
}

func TestGetAndDeleteNote(t *testing.T) {
	srv := apitest.NewServer(t, sampleNote("abc", "learning"))
	c := api.New(srv.URL + "/")

	got, err := c.GetNote(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Note abc" || len(got.Links) != 1 || got.Links[0].Type != "github" {
		t.Errorf("unexpected note: %+v", got)
	}
	if got.Synced() {
		t.Error("note without synced_at should not report synced")
	}

	if err := c.DeleteNote(context.Background(), "abc"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if len(srv.Notes()) != 0 {
		t.Error("expected note removed on server")
	}

	_, err = c.GetNote(context.Background(), "abc")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Note not found" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"structured", 400, `{"error":"Content is required"}`, "Content is required"},
		{"empty body", 500, ``, "Request failed: 500"},
		{"not json", 502, `<html>bad gateway</html>`, "Request failed: 502"},
		{"no error field", 503, `{"message":"down"}`, "Request failed: 503"},
		{"blank error field", 500, `{"error":"  "}`, "Request failed: 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := api.New(srv.URL).CreateNote(context.Background(), "x")
			var apiErr *api.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *api.Error, got %T %v", err, err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if err.Error() != tt.want {
				t.Errorf("message = %q, want %q", err.Error(), tt.want)
			}
			if apiErr.RequestID == "" {
				t.Error("expected request id on error")
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := api.New(url).ListNotes(context.Background(), api.ListOptions{})
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *api.TransportError, got %T %v", err, err)
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		t.Error("transport failure must not look like an application error")
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := api.New(srv.URL, api.WithTimeout(20*time.Millisecond)).Health(context.Background())
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error on timeout, got %v", err)
	}
}

func TestTimeoutSurvivesHTTPClientOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	hc := &http.Client{}
	c := api.New(srv.URL, api.WithTimeout(20*time.Millisecond), api.WithHTTPClient(hc))
	_, err := c.Health(context.Background())
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("timeout set before WithHTTPClient was lost: %v", err)
	}
	if hc.Timeout != 0 {
		t.Error("the caller's http.Client must not be modified")
	}
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notes": "nope"}`))
	}))
	defer srv.Close()

	_, err := api.New(srv.URL).ListNotes(context.Background(), api.ListOptions{})
	if err == nil {
		t.Fatal("expected decode error")
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		t.Error("decode failure must not be an *api.Error")
	}
}

func TestCategoriesAndHealth(t *testing.T) {
	srv := apitest.NewServer(t, sampleNote("1", "coding"), sampleNote("2", "coding"))
	c := api.New(srv.URL)

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(cats))
	}
	if cats[1].Name != "coding" || cats[1].Count != 2 {
		t.Errorf("unexpected coding count: %+v", cats[1])
	}

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "healthy" {
		t.Errorf("status = %q", h.Status)
	}
}

func TestPathEscaping(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RequestURI
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := api.New(srv.URL).GetNote(context.Background(), "a/b c"); err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got != "/api/notes/a%2Fb%20c" {
		t.Errorf("RequestURI = %q", got)
	}
}
