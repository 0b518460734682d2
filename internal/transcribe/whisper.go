package transcribe

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// SampleRate is the sample rate the whisper engine expects, in Hz.
const SampleRate = whisper.SampleRate

// WhisperTranscriber wraps a whisper.cpp model for speech-to-text.
// The model is loaded once; each Transcribe call runs in a fresh context.
type WhisperTranscriber struct {
	model  whisper.Model
	logger *slog.Logger
}

// NewWhisperTranscriber loads a whisper model from the given path.
// The caller must call Close() when done. A nil logger falls back to
// slog.Default().
func NewWhisperTranscriber(modelPath string, logger *slog.Logger) (*WhisperTranscriber, error) {
	if logger == nil {
		logger = slog.Default()
	}
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: %w", modelPath, err)
	}
	return &WhisperTranscriber{model: model, logger: logger}, nil
}

// Close releases the whisper model resources.
func (t *WhisperTranscriber) Close() error {
	if t.model != nil {
		return t.model.Close()
	}
	return nil
}

// Transcribe runs the model over mono 16kHz float32 samples and returns
// the recognized segments in order.
func (t *WhisperTranscriber) Transcribe(samples []float32, opts Options) ([]Segment, error) {
	ctx, err := t.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("transcribe: create context: %w", err)
	}

	// English-only models reject SetLanguage outright.
	if opts.Language != "" && t.model.IsMultilingual() {
		if err := ctx.SetLanguage(opts.Language); err != nil {
			return nil, fmt.Errorf("transcribe: set language %q: %w", opts.Language, err)
		}
	}
	// The bindings pin greedy sampling when the context is created and
	// expose no strategy setter, so a requested beam width cannot take
	// effect.
	if opts.BeamSize > 0 {
		t.logger.Warn("beam search unavailable in the whisper bindings, decoding greedily",
			"beam_size", opts.BeamSize)
	}
	if opts.Translate {
		ctx.SetTranslate(true)
	}
	if opts.Threads > 0 {
		ctx.SetThreads(opts.Threads)
	}

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("transcribe: process: %w", err)
	}

	var segments []Segment
	for {
		seg, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transcribe: next segment: %w", err)
		}
		segments = append(segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	return segments, nil
}
