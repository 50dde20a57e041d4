package main

import (
	"context"
	"os"

	"github.com/7mcool/Vortex-Automator/config"
	"github.com/7mcool/Vortex-Automator/metadata"
	"github.com/7mcool/Vortex-Automator/pipeline"
	"github.com/7mcool/Vortex-Automator/process"
	"github.com/7mcool/Vortex-Automator/scheduler"
	"github.com/7mcool/Vortex-Automator/storage"
	"github.com/7mcool/Vortex-Automator/transcribe"
	"github.com/7mcool/Vortex-Automator/upload"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	// optional .env next to the binary
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env", slog.String("error", err.Error()))
	}

	cfg, err := config.Load(getParam("CONFIG_FILE", "config/app_config.yaml"))
	if err != nil {
		logger.Error("unable to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if key := getParam("DEEPSEEK_API_KEY", ""); key != "" {
		cfg.Global.DeepSeekAPIKey = key
	}
	if dsn := getParam("HISTORY_DSN", ""); dsn != "" {
		cfg.Global.HistoryDSN = dsn
	}

	var publications storage.PublicationLog = storage.NopPublicationLog{}
	if cfg.Global.HistoryDSN != "" {
		postgres, err := storage.NewPostgres(cfg.Global.HistoryDSN)
		if err != nil {
			logger.Error("unable to connect to history database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer postgres.Close()
		publications = postgres
	}

	ledger := scheduler.NewLedger(cfg.Global.StateFile, logger)
	state := ledger.Load()
	logger.Info("publishing state loaded", slog.String("file", cfg.Global.StateFile))

	runner := pipeline.NewRunner(
		transcribe.NewWhisper(cfg.Global.WhisperModel, cfg.Global.TempDir),
		transcribe.NewFFProbe(logger),
		metadata.NewDeepSeek(cfg.Global.DeepSeekAPIKey),
		ledger,
		state,
		scheduler.SlotConfig{
			PublishHours:   cfg.Global.PublishHours,
			UTCOffsetHours: cfg.Global.UTCOffsetHours,
		},
		publications,
		logger,
	)

	auth := upload.NewAuthenticator(cfg.Global.AuthDir, logger)
	orchestrator := process.NewOrchestrator(cfg, auth, runner, logger)

	report, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Error("run aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info(report.String())
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
