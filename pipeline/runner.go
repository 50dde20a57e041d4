package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/7mcool/Vortex-Automator/config"
	"github.com/7mcool/Vortex-Automator/files"
	"github.com/7mcool/Vortex-Automator/metadata"
	"github.com/7mcool/Vortex-Automator/model"
	"github.com/7mcool/Vortex-Automator/scheduler"
	"github.com/7mcool/Vortex-Automator/storage"
	"golang.org/x/exp/slog"
)

const (
	metadataAttempts = 3
	metadataDelay    = 5 * time.Second
	quotaAttempts    = 3
	quotaCooldown    = 5 * time.Minute

	failurePrefix = "FAILED_"
)

// Runner executes the stage sequence for one video at a time. It owns the
// in-memory ledger state for the duration of a run and persists it after
// every successful upload.
type Runner struct {
	transcriber  Transcriber
	prober       DurationProber
	generator    MetadataGenerator
	ledger       *scheduler.Ledger
	state        *scheduler.PublishingState
	slots        scheduler.SlotConfig
	publications storage.PublicationLog
	logger       *slog.Logger

	metadataRetry RetryPolicy
	quotaRetry    RetryPolicy
	now           func() time.Time

	warnings []string
}

func NewRunner(transcriber Transcriber, prober DurationProber, generator MetadataGenerator, ledger *scheduler.Ledger, state *scheduler.PublishingState, slots scheduler.SlotConfig, publications storage.PublicationLog, logger *slog.Logger) *Runner {
	return &Runner{
		transcriber:   transcriber,
		prober:        prober,
		generator:     generator,
		ledger:        ledger,
		state:         state,
		slots:         slots,
		publications:  publications,
		logger:        logger,
		metadataRetry: RetryPolicy{MaxAttempts: metadataAttempts, Delay: metadataDelay},
		quotaRetry:    RetryPolicy{MaxAttempts: quotaAttempts, Delay: quotaCooldown},
		now:           time.Now,
	}
}

// Warnings returns non-fatal problems collected during the run, such as a
// ledger save failure after a successful upload.
func (r *Runner) Warnings() []string {
	return r.warnings
}

// Process runs one video through all stages and reports whether it reached
// DONE. Any failure moves the video to the channel's failure directory and
// leaves the ledger untouched.
func (r *Runner) Process(ctx context.Context, ch config.Channel, uploader Uploader, videoPath string) bool {
	run := model.NewPipelineRun(videoPath, ch.ChannelID)
	video := filepath.Base(videoPath)
	r.logger.Info("processing video",
		slog.String("run", run.ID.String()),
		slog.String("channel", ch.ChannelID),
		slog.String("video", video))

	// --- Transcribe ---
	run.Stage = model.StageTranscribing
	transcript, err := r.transcriber.Transcribe(ctx, videoPath)
	if err != nil {
		return r.fail(run, ch, err)
	}
	if transcript == "" {
		return r.fail(run, ch, fmt.Errorf("transcription returned empty text"))
	}
	run.Transcript = transcript
	r.logger.Info("transcription done",
		slog.String("run", run.ID.String()),
		slog.Int("characters", len(transcript)))

	durationMin := r.prober.Duration(ctx, videoPath) / 60
	r.logger.Info("video duration",
		slog.String("run", run.ID.String()),
		slog.String("minutes", fmt.Sprintf("%.1f", durationMin)))

	// --- Metadata ---
	run.Stage = model.StageMetadata
	run.Metadata = r.generateMetadata(ctx, run, durationMin)
	if run.Metadata.Title == "" {
		return r.fail(run, ch, fmt.Errorf("metadata has no title"))
	}
	r.logger.Info("metadata ready",
		slog.String("run", run.ID.String()),
		slog.String("title", run.Metadata.Title))

	// --- Schedule ---
	run.Stage = model.StageScheduling
	now := r.now()
	slot := scheduler.NextSlot(r.state, ch.ChannelID, ch.DailyLimit, r.slots, now)
	run.PublishAt = scheduler.PublishAt(slot, now, r.logger)
	r.logger.Info("publish slot assigned",
		slog.String("run", run.ID.String()),
		slog.String("publishAt", run.PublishAt.Format(time.RFC3339)))

	// --- Upload ---
	run.Stage = model.StageUploading
	remoteID, err := r.upload(ctx, uploader, run)
	if err != nil {
		return r.fail(run, ch, err)
	}
	if remoteID == "" {
		return r.fail(run, ch, fmt.Errorf("upload returned empty video id"))
	}
	run.RemoteID = remoteID

	// --- Archive ---
	run.Stage = model.StageArchiving
	moved, err := files.SafeMove(videoPath, ch.DoneDir, "")
	if err != nil {
		return r.fail(run, ch, err)
	}

	run.Stage = model.StageDone
	r.state.Record(ch.ChannelID, scheduler.DateKey(run.PublishAt))
	if err := r.ledger.Save(r.state); err != nil {
		r.warn(fmt.Sprintf("ledger save failed after uploading %s: %v", video, err))
	}
	if err := r.publications.Record(model.Publication{
		ID:         run.ID,
		ChannelID:  ch.ChannelID,
		VideoFile:  video,
		RemoteID:   remoteID,
		PublishAt:  run.PublishAt,
		UploadedAt: r.now(),
	}); err != nil {
		r.logger.Warn("could not record publication", slog.String("run", run.ID.String()), slog.String("error", err.Error()))
	}

	r.logger.Info("video published",
		slog.String("run", run.ID.String()),
		slog.String("video", video),
		slog.String("remoteId", remoteID),
		slog.String("archived", moved),
		slog.Int("seconds", int(run.Elapsed().Seconds())))

	return true
}

// generateMetadata retries the service a bounded number of times, then
// degrades to the deterministic fallback. Unlike transcription and upload,
// this stage never fails the video.
func (r *Runner) generateMetadata(ctx context.Context, run *model.PipelineRun, durationMin float64) model.Metadata {
	var md model.Metadata
	err := r.metadataRetry.Do(func() error {
		var genErr error
		md, genErr = r.generator.Generate(ctx, run.Transcript, durationMin)
		if genErr != nil {
			r.logger.Warn("metadata generation failed",
				slog.String("run", run.ID.String()),
				slog.String("error", genErr.Error()))
		}
		return genErr
	}, alwaysRetry)
	if err != nil {
		r.logger.Warn("metadata service exhausted, using fallback", slog.String("run", run.ID.String()))
		return metadata.Fallback(durationMin)
	}

	return md
}

// upload retries only on quota-exceeded, waiting out the cooldown between
// attempts. Any other upload error fails the stage immediately.
func (r *Runner) upload(ctx context.Context, uploader Uploader, run *model.PipelineRun) (string, error) {
	var remoteID string
	err := r.quotaRetry.Do(func() error {
		var upErr error
		remoteID, upErr = uploader.Upload(ctx, run.VideoPath, run.Metadata, run.PublishAt)
		if errors.Is(upErr, ErrQuotaExceeded) {
			r.logger.Warn("upload quota exceeded, backing off",
				slog.String("run", run.ID.String()),
				slog.String("cooldown", r.quotaRetry.Delay.String()))
		}
		return upErr
	}, func(err error) bool {
		return errors.Is(err, ErrQuotaExceeded)
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return remoteID, nil
}

// fail routes a video to the channel's failure directory with the failure
// marker prefix. The ledger is never touched here: no slot is consumed for
// a failed video.
func (r *Runner) fail(run *model.PipelineRun, ch config.Channel, cause error) bool {
	video := filepath.Base(run.VideoPath)
	r.logger.Error("video failed",
		slog.String("run", run.ID.String()),
		slog.String("channel", ch.ChannelID),
		slog.String("video", video),
		slog.String("stage", string(run.Stage)),
		slog.String("error", cause.Error()))
	run.Stage = model.StageFailed

	moved, err := files.SafeMove(run.VideoPath, ch.ErrorDir, failurePrefix+video)
	if err != nil {
		r.warn(fmt.Sprintf("could not move failed video %s: %v", video, err))
		return false
	}
	r.logger.Info("video moved to failure directory",
		slog.String("run", run.ID.String()),
		slog.String("path", moved))

	return false
}

func (r *Runner) warn(msg string) {
	r.logger.Warn(msg)
	r.warnings = append(r.warnings, msg)
}
