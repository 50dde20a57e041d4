package transcribe

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/exp/slog"
)

// FFProbe reads media durations with ffprobe.
type FFProbe struct {
	logger *slog.Logger
}

func NewFFProbe(logger *slog.Logger) *FFProbe {
	return &FFProbe{logger: logger}
}

// Duration returns the media duration in seconds, or 0 when the probe
// fails. Zero means "unknown duration" downstream: chapters are suppressed,
// nothing else changes.
func (p *FFProbe) Duration(ctx context.Context, mediaPath string) float64 {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath)
	out, err := cmd.Output()
	if err != nil {
		p.logger.Warn("duration probe failed", slog.String("path", mediaPath), slog.String("error", err.Error()))
		return 0
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		p.logger.Warn("duration probe returned no number", slog.String("path", mediaPath), slog.String("error", err.Error()))
		return 0
	}

	return seconds
}
