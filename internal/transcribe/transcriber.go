// Package transcribe provides speech-to-text backends and transcript
// formatting.
//
// Supported backends:
//   - whisper: whisper.cpp via Go bindings (default)
package transcribe

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/chaz8081/wavscribe/internal/config"
)

// Segment is one timestamped span of recognized speech. Backends produce
// segments ordered by non-decreasing Start.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Options control one transcription pass. Zero values defer to the
// backend's own defaults.
type Options struct {
	// Language is the spoken language hint ("en", "uk", ...). Ignored by
	// models that only know one language.
	Language string
	// BeamSize requests a beam search width; 0 keeps the backend default.
	// A backend that cannot switch its decoding strategy logs a warning
	// and decodes with its default instead.
	BeamSize int
	// Translate asks the backend to translate the speech to English.
	Translate bool
	// Threads caps inference threads; 0 keeps the backend default.
	Threads uint
}

// Transcriber converts audio samples to timestamped text segments.
type Transcriber interface {
	// Transcribe converts mono 16kHz float32 samples to ordered segments.
	Transcribe(samples []float32, opts Options) ([]Segment, error)
	// Close releases backend resources.
	Close() error
}

// New creates a Transcriber based on the config backend setting. The
// logger carries backend diagnostics; nil falls back to slog.Default().
func New(cfg *config.TranscribeConfig, logger *slog.Logger) (Transcriber, error) {
	switch cfg.Backend {
	case "whisper", "":
		return NewWhisperTranscriber(cfg.ModelPath, logger)
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: whisper)", cfg.Backend)
	}
}
