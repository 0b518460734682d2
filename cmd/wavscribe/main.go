package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaz8081/wavscribe/internal/config"
	"github.com/chaz8081/wavscribe/internal/models"
	"github.com/chaz8081/wavscribe/internal/pipeline"
	"github.com/chaz8081/wavscribe/internal/repair"
	"github.com/chaz8081/wavscribe/internal/transcribe"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/wavscribe/config.yaml)")
	modelPath := flag.String("model", "", "path to whisper model (overrides config)")
	noRepair := flag.Bool("no-repair", false, "fail on unreadable input instead of remuxing it with ffmpeg")
	downloadModel := flag.Bool("download-model", false, "download the whisper model and exit")
	flag.Parse()

	// Load configuration
	cfg, cfgSource, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.Transcribe.ModelPath = *modelPath
	}
	if *noRepair {
		cfg.Repair.Enabled = false
	}
	if flag.NArg() > 0 {
		cfg.Input = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	if cfgSource != "" {
		logger.Info("config loaded", "path", cfgSource)
	}

	if *downloadModel {
		if err := models.Download(cfg.Transcribe.ModelPath); err != nil {
			logger.Error("model download failed", "error", err)
			os.Exit(1)
		}
		return
	}

	printBanner(cfg)

	// Initialize whisper transcriber
	logger.Info("loading whisper model", "path", cfg.Transcribe.ModelPath)
	modelStart := time.Now()
	transcriber, err := transcribe.New(&cfg.Transcribe, logger)
	if err != nil {
		logger.Error("loading model failed, run 'wavscribe -download-model' to fetch it",
			"path", cfg.Transcribe.ModelPath, "error", err)
		os.Exit(1)
	}
	logger.Info("model loaded", "elapsed", time.Since(modelStart).Round(time.Millisecond))

	opts := pipeline.Options{
		Repair: cfg.Repair.Enabled,
		Decode: transcribe.Options{
			Language:  cfg.Transcribe.Language,
			BeamSize:  cfg.Transcribe.BeamSize,
			Translate: cfg.Transcribe.Translate,
			Threads:   cfg.Transcribe.Threads,
		},
		ExpectedRate: cfg.Audio.ExpectedSampleRate,
		Logger:       logger,
	}
	if cfg.Repair.Enabled {
		opts.Remuxer = repair.NewFFmpeg(cfg.Repair.FFmpegPath, cfg.Repair.GetTimeoutDuration())
	}

	// Ctrl+C aborts the run, including an in-flight remux.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, cfg.Input, transcriber, opts)
	if err != nil {
		transcriber.Close()
		logger.Error("transcription failed", "path", cfg.Input, "error", err)
		os.Exit(1)
	}

	if err := transcribe.WriteTranscript(os.Stdout, res.Segments); err != nil {
		transcriber.Close()
		logger.Error("writing transcript failed", "error", err)
		os.Exit(1)
	}

	logger.Info("done",
		"segments", len(res.Segments),
		"audio_seconds", fmt.Sprintf("%.1f", float64(res.Frames)/float64(res.Format.SampleRate)),
		"inference", res.Inference.Round(time.Millisecond))

	if err := transcriber.Close(); err != nil {
		logger.Warn("closing transcriber", "error", err)
	}
}

// printBanner displays the run configuration on stderr, keeping stdout
// clear for the transcript.
func printBanner(cfg *config.Config) {
	fmt.Fprintln(os.Stderr, "=== wavscribe ===")
	fmt.Fprintf(os.Stderr, "  Input:   %s\n", cfg.Input)
	fmt.Fprintf(os.Stderr, "  Model:   %s\n", cfg.Transcribe.ModelPath)
	if cfg.Repair.Enabled {
		fmt.Fprintf(os.Stderr, "  Repair:  %s (timeout %ds)\n", cfg.Repair.FFmpegPath, cfg.Repair.TimeoutSeconds)
	} else {
		fmt.Fprintln(os.Stderr, "  Repair:  disabled")
	}
	fmt.Fprintf(os.Stderr, "  Log:     %s\n", cfg.LogLevel)
	fmt.Fprintln(os.Stderr, "=================")
}
