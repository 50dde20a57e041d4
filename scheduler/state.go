package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slog"
)

const dateLayout = "2006-01-02"

// PublishingState is the quota ledger: per channel, per UTC calendar date,
// the number of publish slots consumed. Historical dates are kept around for
// reporting; only lastProcessedDate moves forward.
type PublishingState struct {
	LastProcessedDate string                    `json:"lastProcessedDate"`
	ChannelDates      map[string]map[string]int `json:"channelDates"`
}

func NewPublishingState() *PublishingState {
	return &PublishingState{
		ChannelDates: make(map[string]map[string]int),
	}
}

// RotateIfNewDay advances lastProcessedDate when the UTC calendar date has
// moved past it. Counts for old dates are never cleared; a fresh date key
// simply starts at zero.
func (s *PublishingState) RotateIfNewDay(now time.Time) {
	today := DateKey(now)
	if s.LastProcessedDate != today {
		s.LastProcessedDate = today
	}
}

// ConsumedOn returns the slot count for a channel on a date, zero when the
// channel or date has never been recorded.
func (s *PublishingState) ConsumedOn(channelID, date string) int {
	dates, ok := s.ChannelDates[channelID]
	if !ok {
		return 0
	}
	return dates[date]
}

// Record increments the slot count for (channel, date) by one. It is the
// only mutation path for counts and is called exactly once per successful
// upload.
func (s *PublishingState) Record(channelID, date string) {
	if s.ChannelDates == nil {
		s.ChannelDates = make(map[string]map[string]int)
	}
	if s.ChannelDates[channelID] == nil {
		s.ChannelDates[channelID] = make(map[string]int)
	}
	s.ChannelDates[channelID][date]++
}

func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Ledger persists a PublishingState as a single JSON file.
type Ledger struct {
	path   string
	logger *slog.Logger
}

func NewLedger(path string, logger *slog.Logger) *Ledger {
	return &Ledger{path: path, logger: logger}
}

// Load reads the state file. A missing or malformed file yields a zero state
// instead of an error; corruption must never block the pipeline.
func (l *Ledger) Load() *PublishingState {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("could not read publishing state, starting fresh", slog.String("path", l.path), slog.String("error", err.Error()))
		}
		return NewPublishingState()
	}

	state := NewPublishingState()
	if err := json.Unmarshal(data, state); err != nil {
		l.logger.Warn("publishing state is malformed, starting fresh", slog.String("path", l.path), slog.String("error", err.Error()))
		return NewPublishingState()
	}
	if state.ChannelDates == nil {
		state.ChannelDates = make(map[string]map[string]int)
	}

	return state
}

// Save overwrites the state file through a temp file and rename so a crash
// mid-write cannot leave a partial file behind.
func (l *Ledger) Save(state *PublishingState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal publishing state: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state file %s: %w", l.path, err)
	}

	return nil
}
