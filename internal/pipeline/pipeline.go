// Package pipeline runs the WAV-to-transcript flow: open the container
// (repairing it in place when enabled and needed), normalize the samples
// for the engine, transcribe, and collect the segments.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/chaz8081/wavscribe/internal/audio"
	"github.com/chaz8081/wavscribe/internal/repair"
	"github.com/chaz8081/wavscribe/internal/transcribe"
)

// Options configure one pipeline run.
type Options struct {
	// Repair enables the in-place remux attempt for unreadable containers.
	// Remuxer must be set when Repair is true.
	Repair  bool
	Remuxer repair.Remuxer
	// Decode is handed to the transcriber unchanged.
	Decode transcribe.Options
	// ExpectedRate is the sample rate the engine performs best at.
	// A mismatch logs a warning and continues; zero disables the check.
	ExpectedRate uint32
	Logger       *slog.Logger
}

// Result is the outcome of one pipeline run.
type Result struct {
	Format     audio.Format
	RawSamples int
	Frames     int
	Segments   []transcribe.Segment
	Inference  time.Duration
}

// Run executes the stages for one input file. Stages run strictly in
// order and the first failure aborts the run; there is no partial
// transcription.
func Run(ctx context.Context, path string, tr transcribe.Transcriber, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var clip *audio.Clip
	var err error
	if opts.Repair {
		clip, err = repair.OpenWithRepair(ctx, path, opts.Remuxer, logger)
	} else {
		clip, err = audio.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("audio loaded",
		slog.String("path", path),
		slog.Uint64("sample_rate", uint64(clip.Format.SampleRate)),
		slog.Int("channels", int(clip.Format.Channels)),
		slog.Int("bits_per_sample", int(clip.Format.BitDepth)),
		slog.Int("samples", clip.Samples()),
	)

	if opts.ExpectedRate != 0 && clip.Format.SampleRate != opts.ExpectedRate {
		logger.Warn("sample rate differs from engine expectation, transcription quality may suffer",
			slog.Uint64("input_hz", uint64(clip.Format.SampleRate)),
			slog.Uint64("expected_hz", uint64(opts.ExpectedRate)),
		)
	}

	samples, err := audio.Normalize(clip)
	if err != nil {
		return nil, err
	}
	logger.Debug("samples normalized", slog.Int("frames", len(samples)))

	start := time.Now()
	segments, err := tr.Transcribe(samples, opts.Decode)
	if err != nil {
		return nil, err
	}

	return &Result{
		Format:     clip.Format,
		RawSamples: clip.Samples(),
		Frames:     len(samples),
		Segments:   segments,
		Inference:  time.Since(start),
	}, nil
}
