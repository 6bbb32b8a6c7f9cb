package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"bogus", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		log := New(&buf, tt.level)
		log.Debug().Msg("d")
		log.Info().Msg("i")
		out := buf.String()
		if got := strings.Contains(out, `"message":"d"`); got != tt.debugSeen {
			t.Errorf("level %q: debug logged = %v, want %v", tt.level, got, tt.debugSeen)
		}
		if got := strings.Contains(out, `"message":"i"`); got != tt.infoSeen {
			t.Errorf("level %q: info logged = %v, want %v", tt.level, got, tt.infoSeen)
		}
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "forge.log")

	for i := 0; i < 2; i++ {
		log, closer, err := Open(path, "info")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		log.Info().Int("run", i).Msg("started")
		closer.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["app"] != "forge" || entry["time"] == nil {
		t.Errorf("unexpected entry: %v", entry)
	}
}
