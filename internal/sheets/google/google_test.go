package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"streamtally/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"}, nil)
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNew_InvalidCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet", CredentialsJSON: "invalid-json"}, nil)
	if err == nil || !strings.Contains(err.Error(), "parse service account") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := loadCredentials(Config{CredentialsFile: path})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("file credentials: %q %v", got, err)
	}

	got, err = loadCredentials(Config{CredentialsJSON: `{"inline":true}`, CredentialsFile: path})
	if err != nil || string(got) != `{"inline":true}` {
		t.Fatalf("inline credentials should win: %q %v", got, err)
	}

	if _, err := loadCredentials(Config{CredentialsFile: filepath.Join(dir, "missing.json")}); err == nil {
		t.Fatal("expected error for unreadable file")
	}
}

func TestRowOf(t *testing.T) {
	values := [][]any{{"Activity ID"}, {}, {"a1"}, {" a2 "}}
	tests := []struct {
		id   string
		want int
	}{
		{"a1", 3},
		{"a2", 4},
		{"a3", 0},
	}
	for _, tt := range tests {
		if got := rowOf(values, tt.id); got != tt.want {
			t.Errorf("rowOf(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestClient_AppendActivityValidates(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Activities"} // svc is nil
	h, err := core.NewHeader("2024-03-10", "Alice", "Morning Stream")
	if err != nil {
		t.Fatal(err)
	}

	bad := core.Activity{ID: "a1", Timestamp: time.Now(), Username: "u", Kind: core.KindSub, Tier: "Tier 9", Count: 1}
	if _, err := c.AppendActivity(context.Background(), h, bad); err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}

	good := core.Activity{ID: "a1", Timestamp: time.Now(), Username: "u", Kind: core.KindPrimeSub}
	if _, err := c.AppendActivity(context.Background(), h, good); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected uninitialized service error, got %v", err)
	}
}

func TestRowRef(t *testing.T) {
	c := &Client{sheetName: "Activities"}
	if got := c.rowRef(7); got != "Activities!A7:J7" {
		t.Errorf("rowRef(7) = %q", got)
	}
}
