package scheduler

import (
	"testing"
	"time"
)

var testSlots = SlotConfig{PublishHours: []int{9, 12}, UTCOffsetHours: 1}

func TestNextSlotWalksTheHourList(t *testing.T) {
	state := NewPublishingState()

	// 08:00 civil time (UTC+1) on the target day
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)

	slot := NextSlot(state, "UCabc", 2, testSlots, now)
	want := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC) // 09:00 local
	if !slot.Equal(want) {
		t.Fatalf("first slot: got %s, want %s", slot, want)
	}

	state.Record("UCabc", DateKey(now))
	now = time.Date(2026, 8, 29, 7, 30, 0, 0, time.UTC)
	slot = NextSlot(state, "UCabc", 2, testSlots, now)
	want = time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC) // 12:00 local
	if !slot.Equal(want) {
		t.Fatalf("second slot: got %s, want %s", slot, want)
	}

	state.Record("UCabc", DateKey(now))
	slot = NextSlot(state, "UCabc", 2, testSlots, now)
	want = time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC) // tomorrow 09:00 local
	if !slot.Equal(want) {
		t.Fatalf("exhausted day: got %s, want %s", slot, want)
	}
}

func TestNextSlotDayRollover(t *testing.T) {
	state := NewPublishingState()

	// 23:55 civil time with every hour of the day long gone
	now := time.Date(2026, 8, 29, 22, 55, 0, 0, time.UTC)
	slot := NextSlot(state, "UCabc", 5, testSlots, now)

	want := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	if !slot.Equal(want) {
		t.Fatalf("rollover slot: got %s, want %s", slot, want)
	}
	if !slot.After(now.Add(10 * time.Minute)) {
		t.Fatalf("slot %s is not past the safety margin from %s", slot, now)
	}
}

func TestNextSlotGraceWindow(t *testing.T) {
	state := NewPublishingState()

	// 20 minutes past the 09:00 civil slot: still eligible
	now := time.Date(2026, 8, 29, 8, 20, 0, 0, time.UTC)
	slot := NextSlot(state, "UCabc", 2, testSlots, now)
	want := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	if !slot.Equal(want) {
		t.Fatalf("within grace: got %s, want %s", slot, want)
	}

	// 40 minutes past: the slot has lapsed, next hour wins
	now = time.Date(2026, 8, 29, 8, 40, 0, 0, time.UTC)
	slot = NextSlot(state, "UCabc", 2, testSlots, now)
	want = time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)
	if !slot.Equal(want) {
		t.Fatalf("past grace: got %s, want %s", slot, want)
	}
}

func TestNextSlotRotatesLedger(t *testing.T) {
	state := NewPublishingState()
	state.LastProcessedDate = "2026-08-28"

	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	NextSlot(state, "UCabc", 2, testSlots, now)

	if state.LastProcessedDate != "2026-08-29" {
		t.Fatalf("expected ledger rotation, got %s", state.LastProcessedDate)
	}
}

func TestPublishAtEnforcesMargin(t *testing.T) {
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	logger := testLogger()

	ok := now.Add(11 * time.Minute)
	if got := PublishAt(ok, now, logger); !got.Equal(ok) {
		t.Fatalf("slot past the margin must pass through, got %s", got)
	}

	tooClose := now.Add(5 * time.Minute)
	got := PublishAt(tooClose, now, logger)
	if !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("near-past slot must fall back to now+1h, got %s", got)
	}
}
