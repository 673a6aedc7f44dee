package github

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantCreated bool
		wantKey     string
	}{
		{
			name:        "issue opened",
			payload:     `{"action":"opened","issue":{"number":12,"title":"Crash"},"repository":{"full_name":"org/app"}}`,
			wantCreated: true,
			wantKey:     "org/app#12",
		},
		{
			name:    "issue edited",
			payload: `{"action":"edited","issue":{"number":12},"repository":{"full_name":"org/app"}}`,
			wantKey: "org/app#12",
		},
		{
			name:    "pull request opened",
			payload: `{"action":"opened","issue":{"number":3,"pull_request":{}},"repository":{"full_name":"org/app"}}`,
			wantKey: "org/app#3",
		},
		{
			name:    "repository from owner and name",
			payload: `{"action":"closed","issue":{"number":7},"repository":{"owner":{"login":"org"},"name":"web"}}`,
			wantKey: "org/web#7",
		},
		{
			name:    "no issue",
			payload: `{"action":"opened","repository":{"full_name":"org/app"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := ParseEvent([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseEvent() error = %v", err)
			}
			if got := event.IsTicketCreated(); got != tt.wantCreated {
				t.Errorf("IsTicketCreated() = %v, want %v", got, tt.wantCreated)
			}
			if got := event.TicketKey(); got != tt.wantKey {
				t.Errorf("TicketKey() = %q, want %q", got, tt.wantKey)
			}
		})
	}
}

func TestParseEventFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(`{"action":"opened","issue":{"number":1},"repository":{"full_name":"org/app"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	event, err := ParseEventFile(path)
	if err != nil {
		t.Fatalf("ParseEventFile() error = %v", err)
	}
	if event.TicketKey() != "org/app#1" {
		t.Errorf("TicketKey() = %q, want %q", event.TicketKey(), "org/app#1")
	}

	if _, err := ParseEventFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ParseEventFile() expected error for missing file")
	}
	if _, err := ParseEvent([]byte("{")); err == nil {
		t.Error("ParseEvent() expected error for invalid JSON")
	}
}
