package scheduler

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"golang.org/x/exp/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

func TestLedgerLoadMissingFile(t *testing.T) {
	ledger := NewLedger(filepath.Join(t.TempDir(), "missing.json"), testLogger())

	state := ledger.Load()
	if state.LastProcessedDate != "" {
		t.Fatalf("expected empty last processed date, got %q", state.LastProcessedDate)
	}
	if len(state.ChannelDates) != 0 {
		t.Fatalf("expected empty channel dates, got %v", state.ChannelDates)
	}
}

func TestLedgerLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := NewLedger(path, testLogger()).Load()
	if len(state.ChannelDates) != 0 {
		t.Fatalf("corrupt file must yield a zero state, got %v", state.ChannelDates)
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ledger := NewLedger(path, testLogger())

	state := NewPublishingState()
	state.LastProcessedDate = "2026-08-29"
	state.Record("UCabc", "2026-08-28")
	state.Record("UCabc", "2026-08-29")
	state.Record("UCabc", "2026-08-29")
	state.Record("UCdef", "2026-08-29")

	if err := ledger.Save(state); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	reloaded := ledger.Load()
	if !reflect.DeepEqual(state, reloaded) {
		t.Fatalf("round trip mismatch:\nsaved:    %+v\nreloaded: %+v", state, reloaded)
	}

	// saving the reloaded state unchanged must stay identical
	if err := ledger.Save(reloaded); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if again := ledger.Load(); !reflect.DeepEqual(reloaded, again) {
		t.Fatalf("second round trip mismatch: %+v vs %+v", reloaded, again)
	}
}

func TestRotateIfNewDayKeepsHistory(t *testing.T) {
	state := NewPublishingState()
	state.LastProcessedDate = "2026-08-28"
	state.Record("UCabc", "2026-08-28")

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	state.RotateIfNewDay(now)

	if state.LastProcessedDate != "2026-08-29" {
		t.Fatalf("expected rotation to 2026-08-29, got %s", state.LastProcessedDate)
	}
	if got := state.ConsumedOn("UCabc", "2026-08-28"); got != 1 {
		t.Fatalf("rotation must not clear history, got %d", got)
	}
	if got := state.ConsumedOn("UCabc", "2026-08-29"); got != 0 {
		t.Fatalf("fresh date must start at zero, got %d", got)
	}
}

func TestRecordIncrementsByOne(t *testing.T) {
	state := NewPublishingState()
	if got := state.ConsumedOn("UCabc", "2026-08-29"); got != 0 {
		t.Fatalf("unknown channel must read zero, got %d", got)
	}

	state.Record("UCabc", "2026-08-29")
	state.Record("UCabc", "2026-08-29")
	if got := state.ConsumedOn("UCabc", "2026-08-29"); got != 2 {
		t.Fatalf("expected 2 after two increments, got %d", got)
	}
	if got := state.ConsumedOn("UCdef", "2026-08-29"); got != 0 {
		t.Fatalf("other channels must be unaffected, got %d", got)
	}
}
