package scheduler

import (
	"time"

	"golang.org/x/exp/slog"
)

// graceWindow keeps an hour slot eligible for a short while after its start,
// absorbing scheduling latency inside a run.
const graceWindow = 30 * time.Minute

// publishMargin is the minimum distance into the future a publish timestamp
// must have when it is handed to the upload transport.
const publishMargin = 10 * time.Minute

// SlotConfig holds the publish-hour list and the fixed civil-time offset
// used to convert those hours to UTC. The conversion is deliberately not
// DST-aware; one offset applies to the whole system.
type SlotConfig struct {
	PublishHours   []int
	UTCOffsetHours int
}

// NextSlot computes the next available publish timestamp for a channel.
// Each slot already consumed today claims one entry of the hour list, so the
// scan starts at index consumedToday. A slot qualifies while now is before
// its start plus the grace window. When the channel is exhausted for today,
// or no hour qualifies, the first hour of tomorrow is used.
func NextSlot(state *PublishingState, channelID string, dailyLimit int, cfg SlotConfig, now time.Time) time.Time {
	state.RotateIfNewDay(now)

	today := DateKey(now)
	consumed := state.ConsumedOn(channelID, today)

	if consumed >= dailyLimit {
		return slotOn(now.UTC().AddDate(0, 0, 1), cfg.PublishHours[0], cfg.UTCOffsetHours)
	}

	for i := consumed; i < len(cfg.PublishHours); i++ {
		slot := slotOn(now.UTC(), cfg.PublishHours[i], cfg.UTCOffsetHours)
		if now.Before(slot.Add(graceWindow)) {
			return slot
		}
	}

	return slotOn(now.UTC().AddDate(0, 0, 1), cfg.PublishHours[0], cfg.UTCOffsetHours)
}

// slotOn places a civil-time hour on day's UTC calendar date and converts it
// to UTC using the fixed offset.
func slotOn(day time.Time, hour, offsetHours int) time.Time {
	y, m, d := day.UTC().Date()
	zone := time.FixedZone("civil", offsetHours*3600)
	return time.Date(y, m, d, hour, 0, 0, 0, zone).UTC()
}

// PublishAt enforces the safety margin on an allocated slot. A slot closer
// than the margin is a scheduling anomaly; now+1h is substituted rather than
// submitting a past or near-past timestamp to the upload transport.
func PublishAt(slot, now time.Time, logger *slog.Logger) time.Time {
	if slot.After(now.Add(publishMargin)) {
		return slot
	}
	fallback := now.Add(time.Hour)
	logger.Warn("scheduling anomaly, substituting fallback publish time",
		slog.String("slot", slot.Format(time.RFC3339)),
		slog.String("fallback", fallback.Format(time.RFC3339)))
	return fallback
}
