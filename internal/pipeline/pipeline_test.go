package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chaz8081/wavscribe/internal/audio"
	"github.com/chaz8081/wavscribe/internal/transcribe"
)

type fakeTranscriber struct {
	calls      int
	gotSamples []float32
	gotOpts    transcribe.Options
	segments   []transcribe.Segment
	err        error
}

func (f *fakeTranscriber) Transcribe(samples []float32, opts transcribe.Options) ([]transcribe.Segment, error) {
	f.calls++
	f.gotSamples = samples
	f.gotOpts = opts
	return f.segments, f.err
}

func (f *fakeTranscriber) Close() error { return nil }

type fakeRemuxer struct {
	calls  int
	output []byte
}

func (f *fakeRemuxer) Remux(_ context.Context, _, dst string) error {
	f.calls++
	return os.WriteFile(dst, f.output, 0644)
}

// writeWAV writes float32 samples as a 16-bit WAV and returns its path.
func writeWAV(t *testing.T, rate uint32, channels uint16, samples []float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := audio.WriteWAVFile(path, rate, channels, samples); err != nil {
		t.Fatalf("WriteWAVFile() error = %v", err)
	}
	return path
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRunHandsNormalizedSamplesToTranscriber(t *testing.T) {
	path := writeWAV(t, 16000, 1, []float32{0.5, -0.5})
	segs := []transcribe.Segment{{Start: 0, End: time.Second, Text: "hi"}}
	tr := &fakeTranscriber{segments: segs}

	res, err := Run(context.Background(), path, tr, Options{ExpectedRate: 16000, Logger: testLogger(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 0.5 encodes to int16 16383, which normalizes back to 16383/32768.
	want := []float32{16383.0 / 32768.0, -16383.0 / 32768.0}
	if len(tr.gotSamples) != len(want) {
		t.Fatalf("transcriber got %d samples, want %d", len(tr.gotSamples), len(want))
	}
	for i := range want {
		if tr.gotSamples[i] != want[i] {
			t.Errorf("sample[%d] = %f, want %f", i, tr.gotSamples[i], want[i])
		}
	}

	if res.Frames != 2 {
		t.Errorf("Frames = %d, want 2", res.Frames)
	}
	if res.RawSamples != 2 {
		t.Errorf("RawSamples = %d, want 2", res.RawSamples)
	}
	wantFormat := audio.Format{SampleRate: 16000, Channels: 1, BitDepth: 16}
	if res.Format != wantFormat {
		t.Errorf("Format = %+v, want %+v", res.Format, wantFormat)
	}
	if len(res.Segments) != 1 || res.Segments[0].Text != "hi" {
		t.Errorf("Segments = %+v, want the transcriber's segments", res.Segments)
	}
}

func TestRunDownmixesStereo(t *testing.T) {
	// Frames (1.0, 1.0) and (-1.0, -1.0) survive the int16 round trip
	// exactly and average to 32767/32768 and -32767/32768.
	path := writeWAV(t, 16000, 2, []float32{1.0, 1.0, -1.0, -1.0})
	tr := &fakeTranscriber{}

	res, err := Run(context.Background(), path, tr, Options{Logger: testLogger(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []float32{32767.0 / 32768.0, -32767.0 / 32768.0}
	if len(tr.gotSamples) != len(want) {
		t.Fatalf("transcriber got %d samples, want %d", len(tr.gotSamples), len(want))
	}
	for i := range want {
		if tr.gotSamples[i] != want[i] {
			t.Errorf("sample[%d] = %f, want %f", i, tr.gotSamples[i], want[i])
		}
	}

	if res.RawSamples != 4 {
		t.Errorf("RawSamples = %d, want 4", res.RawSamples)
	}
	if res.Frames != 2 {
		t.Errorf("Frames = %d, want 2", res.Frames)
	}
}

func TestRunWarnsOnSampleRateMismatch(t *testing.T) {
	path := writeWAV(t, 44100, 1, []float32{0.1, 0.2})
	tr := &fakeTranscriber{}
	var logs bytes.Buffer

	_, err := Run(context.Background(), path, tr, Options{ExpectedRate: 16000, Logger: testLogger(&logs)})
	if err != nil {
		t.Fatalf("Run() error = %v, mismatched rate must not be fatal", err)
	}
	if tr.calls != 1 {
		t.Errorf("transcriber calls = %d, want 1", tr.calls)
	}
	if !strings.Contains(logs.String(), "sample rate differs") {
		t.Errorf("logs should warn about the rate mismatch, got: %s", logs.String())
	}
}

func TestRunNoWarningWhenRateMatches(t *testing.T) {
	path := writeWAV(t, 16000, 1, []float32{0.1, 0.2})
	var logs bytes.Buffer

	_, err := Run(context.Background(), path, &fakeTranscriber{}, Options{ExpectedRate: 16000, Logger: testLogger(&logs)})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(logs.String(), "sample rate differs") {
		t.Errorf("unexpected rate warning in logs: %s", logs.String())
	}
}

func TestRunPropagatesUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("garbage, not a wav"), 0644); err != nil {
		t.Fatal(err)
	}
	tr := &fakeTranscriber{}

	_, err := Run(context.Background(), path, tr, Options{Logger: testLogger(&bytes.Buffer{})})
	if !errors.Is(err, audio.ErrUnreadable) {
		t.Fatalf("Run() error = %v, want ErrUnreadable", err)
	}
	if tr.calls != 0 {
		t.Errorf("transcriber calls = %d, want 0 after a failed open", tr.calls)
	}
}

func TestRunRepairsThenTranscribes(t *testing.T) {
	validPath := writeWAV(t, 16000, 1, []float32{0.25, -0.25})
	validBytes, err := os.ReadFile(validPath)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("garbage, not a wav"), 0644); err != nil {
		t.Fatal(err)
	}

	rmx := &fakeRemuxer{output: validBytes}
	tr := &fakeTranscriber{segments: []transcribe.Segment{{Text: "repaired"}}}

	res, err := Run(context.Background(), path, tr, Options{
		Repair:  true,
		Remuxer: rmx,
		Logger:  testLogger(&bytes.Buffer{}),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rmx.calls != 1 {
		t.Errorf("remux calls = %d, want 1", rmx.calls)
	}
	if tr.calls != 1 {
		t.Errorf("transcriber calls = %d, want 1", tr.calls)
	}
	if len(res.Segments) != 1 || res.Segments[0].Text != "repaired" {
		t.Errorf("Segments = %+v, want the transcriber's segments", res.Segments)
	}
}

func TestRunDecodeOptionsPassedThrough(t *testing.T) {
	path := writeWAV(t, 16000, 1, []float32{0.1})
	tr := &fakeTranscriber{}
	opts := transcribe.Options{Language: "en", BeamSize: 7, Translate: true, Threads: 2}

	_, err := Run(context.Background(), path, tr, Options{Decode: opts, Logger: testLogger(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if tr.gotOpts != opts {
		t.Errorf("transcriber opts = %+v, want %+v", tr.gotOpts, opts)
	}
}

func TestRunTranscriberErrorAborts(t *testing.T) {
	path := writeWAV(t, 16000, 1, []float32{0.1})
	engineErr := errors.New("inference blew up")
	tr := &fakeTranscriber{err: engineErr}

	_, err := Run(context.Background(), path, tr, Options{Logger: testLogger(&bytes.Buffer{})})
	if !errors.Is(err, engineErr) {
		t.Fatalf("Run() error = %v, want the transcriber error", err)
	}
}
