package memory

import (
	"context"
	"testing"
	"time"

	"streamtally/internal/core"
	"streamtally/internal/sheets"
)

func header(t *testing.T) core.Header {
	t.Helper()
	h, err := core.NewHeader("2024-03-10", "Alice", "Morning Stream")
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}
	return h
}

func TestMemoryStoreAppend(t *testing.T) {
	s := New()
	ts := time.Date(2024, 3, 10, 20, 15, 0, 0, time.UTC)
	gift := core.Activity{ID: "a1", Timestamp: ts, Username: "g", Kind: core.KindGiftSub, Tier: core.Tier2, Count: 5}

	ref, err := s.AppendActivity(context.Background(), header(t), gift)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows := s.Rows()
	if len(rows) != 1 || len(rows[0]) != len(sheets.Columns) {
		t.Fatalf("unexpected rows: %v", rows)
	}
	want := []any{"2024-03-10", "Alice", "Morning Stream", "2024-03-10T20:15:00Z", "Gift Sub", "g", "Tier 2", 5, "", "a1"}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("column %s = %v, want %v", sheets.Columns[i], rows[0][i], want[i])
		}
	}
}

func TestMemoryStoreAppendIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := core.Activity{ID: "a1", Timestamp: time.Now(), Username: "d", Kind: core.KindDonation, Amount: core.Money{Cents: 1550}}

	first, err := s.AppendActivity(ctx, header(t), d)
	if err != nil {
		t.Fatalf("AppendActivity() error = %v", err)
	}
	second, err := s.AppendActivity(ctx, header(t), d)
	if err != nil {
		t.Fatalf("AppendActivity() error = %v", err)
	}
	if first != second || len(s.Rows()) != 1 {
		t.Fatalf("redelivery duplicated a row: %q %q rows=%d", first, second, len(s.Rows()))
	}
	if got := s.Rows()[0][8]; got != 15.5 {
		t.Errorf("amount = %v, want 15.5", got)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	bad := core.Activity{ID: "a1", Username: "u", Kind: core.KindSub, Tier: core.Tier1}
	if _, err := s.AppendActivity(context.Background(), header(t), bad); err == nil {
		t.Fatal("expected validation error for zero count")
	}
	if len(s.Rows()) != 0 {
		t.Fatal("invalid activity was stored")
	}
}
