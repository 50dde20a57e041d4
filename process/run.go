// Package process orchestrates a full publishing run: channel iteration,
// per-video pipeline execution, the final report, and retention cleanup.
package process

import (
	"context"
	"fmt"
	"time"

	"github.com/7mcool/Vortex-Automator/config"
	"github.com/7mcool/Vortex-Automator/files"
	"github.com/7mcool/Vortex-Automator/pipeline"
	"golang.org/x/exp/slog"
)

// Authenticator yields an upload handle for a channel, or an error when its
// credentials are unusable.
type Authenticator interface {
	Authenticate(ctx context.Context, ch config.Channel) (pipeline.Uploader, error)
}

type Report struct {
	Channels  int
	Succeeded int
	Failed    int
	Warnings  []string
}

func (r Report) String() string {
	return fmt.Sprintf("processed %d channel(s): %d video(s) published, %d failed, %d warning(s)",
		r.Channels, r.Succeeded, r.Failed, len(r.Warnings))
}

// Orchestrator drives one run across all configured channels. Channels and
// videos are processed strictly sequentially; the ledger has exactly one
// writer.
type Orchestrator struct {
	cfg    *config.Config
	auth   Authenticator
	runner *pipeline.Runner
	logger *slog.Logger
}

func NewOrchestrator(cfg *config.Config, auth Authenticator, runner *pipeline.Runner, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		auth:   auth,
		runner: runner,
		logger: logger,
	}
}

// Run validates configuration, authenticates every channel up front, and
// aborts with an error before touching any video when the configuration is
// invalid or no channel can publish. Otherwise it processes each channel
// and returns the aggregate report.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	if err := o.cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid configuration: %w", err)
	}

	uploaders := make(map[string]pipeline.Uploader, len(o.cfg.Channels))
	for _, ch := range o.cfg.Channels {
		uploader, err := o.auth.Authenticate(ctx, ch)
		if err != nil {
			o.logger.Error("channel authentication failed",
				slog.String("channel", ch.ChannelID),
				slog.String("error", err.Error()))
			continue
		}
		uploaders[ch.ChannelID] = uploader
	}
	if len(uploaders) == 0 {
		return Report{}, fmt.Errorf("no authenticated channels")
	}

	report := Report{}
	for _, ch := range o.cfg.Channels {
		o.logger.Info("processing channel",
			slog.String("channel", ch.ChannelID),
			slog.String("name", ch.Name))

		succeeded, total := o.processChannel(ctx, ch, uploaders[ch.ChannelID])
		report.Channels++
		report.Succeeded += succeeded
		report.Failed += total - succeeded

		o.logger.Info("channel done",
			slog.String("channel", ch.ChannelID),
			slog.Int("succeeded", succeeded),
			slog.Int("total", total))
	}
	report.Warnings = o.runner.Warnings()

	o.cleanup()
	o.logger.Info("run finished", slog.String("report", report.String()))

	return report, nil
}

// processChannel lists eligible videos capped at the channel's daily limit
// and drives the pipeline for each. Without a valid upload handle every
// listed video counts as failed and no stage runs: transcription compute is
// never burned for a channel that cannot publish.
func (o *Orchestrator) processChannel(ctx context.Context, ch config.Channel, uploader pipeline.Uploader) (succeeded, total int) {
	sourceDir := ch.EffectiveSourceDir(o.cfg.Global)
	videos, err := files.FindVideos(sourceDir)
	if err != nil {
		o.logger.Error("could not list source videos",
			slog.String("channel", ch.ChannelID),
			slog.String("dir", sourceDir),
			slog.String("error", err.Error()))
		return 0, 0
	}
	if len(videos) > ch.DailyLimit {
		videos = videos[:ch.DailyLimit]
	}
	if len(videos) == 0 {
		o.logger.Info("no videos to process", slog.String("channel", ch.ChannelID))
		return 0, 0
	}

	if uploader == nil {
		o.logger.Warn("skipping channel without valid credentials",
			slog.String("channel", ch.ChannelID),
			slog.Int("videos", len(videos)))
		return 0, len(videos)
	}

	for _, video := range videos {
		if o.runner.Process(ctx, ch, uploader, video) {
			succeeded++
		}
	}

	return succeeded, len(videos)
}

func (o *Orchestrator) cleanup() {
	g := o.cfg.Global
	files.Cleanup(g.LogDir, time.Duration(g.LogRetentionDays)*24*time.Hour, o.logger)
	files.Cleanup(g.TempDir, time.Duration(g.TempRetentionDays)*24*time.Hour, o.logger)
}
