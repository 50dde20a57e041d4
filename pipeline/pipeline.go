// Package pipeline drives one video through the publishing stages:
// transcribe, metadata, schedule, upload, archive. Failures are isolated
// per video; a failed video is routed to the channel's failure directory
// and never blocks the rest of the run.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/7mcool/Vortex-Automator/model"
)

// ErrQuotaExceeded signals that the remote upload service refused the
// request because the daily API quota is spent. It triggers a cooldown and
// retry instead of an immediate failure.
var ErrQuotaExceeded = errors.New("upload quota exceeded")

type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (string, error)
}

type DurationProber interface {
	Duration(ctx context.Context, mediaPath string) float64
}

type MetadataGenerator interface {
	Generate(ctx context.Context, transcript string, durationMin float64) (model.Metadata, error)
}

type Uploader interface {
	Upload(ctx context.Context, videoPath string, md model.Metadata, publishAt time.Time) (string, error)
}
