package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// WAV format tags from the fmt chunk.
const (
	wavFormatPCM       = 1 // integer PCM
	wavFormatIEEEFloat = 3 // IEEE 754 float samples
)

var (
	// ErrUnreadable reports a container that cannot be parsed: missing
	// file, bad RIFF structure, or declared chunk sizes that leave no
	// decodable audio. Callers may attempt a remux repair on this class.
	ErrUnreadable = errors.New("audio: unreadable wav container")

	// ErrUnsupportedFormat reports a container that parses correctly but
	// stores audio this pipeline does not accept: compressed codecs,
	// bit depths other than 16-bit PCM or 32-bit float, or more than
	// two channels. Repair cannot fix this class.
	ErrUnsupportedFormat = errors.New("audio: unsupported wav format")
)

// Format describes WAV samples exactly as stored in the container.
// BitDepth 16 means signed integer PCM; BitDepth 32 means IEEE float.
type Format struct {
	SampleRate uint32
	Channels   uint16
	BitDepth   uint16
}

// Clip is a fully decoded WAV payload: the format descriptor plus the raw
// interleaved samples. Exactly one of Int16/Float32 is populated, matching
// Format.BitDepth.
type Clip struct {
	Format  Format
	Int16   []int16
	Float32 []float32
}

// Samples returns the raw interleaved sample count.
func (c *Clip) Samples() int {
	if c.Format.BitDepth == 32 {
		return len(c.Float32)
	}
	return len(c.Int16)
}

// Frames returns the number of complete frames (one sample per channel).
func (c *Clip) Frames() int {
	if c.Format.Channels == 0 {
		return 0
	}
	return c.Samples() / int(c.Format.Channels)
}

// ReadFile opens and decodes a WAV file. The file is never modified.
func ReadFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	clip, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// Decode reads a WAV container and eagerly decodes its PCM payload.
// It accepts 16-bit integer PCM and 32-bit IEEE float samples with one or
// two channels; everything else returns ErrUnsupportedFormat. Containers
// that cannot be parsed, or that yield zero complete samples, return
// ErrUnreadable.
func Decode(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	format := Format{
		SampleRate: dec.SampleRate,
		Channels:   dec.NumChans,
		BitDepth:   dec.BitDepth,
	}
	// A fmt chunk with zero fields is a broken container, not a format
	// choice, so it stays in the repairable class.
	if format.SampleRate == 0 || format.Channels == 0 || format.BitDepth == 0 {
		return nil, fmt.Errorf("%w: missing or malformed fmt chunk", ErrUnreadable)
	}
	if format.Channels > 2 {
		return nil, fmt.Errorf("%w: %d channels (want mono or stereo)", ErrUnsupportedFormat, format.Channels)
	}

	switch {
	case dec.WavAudioFormat == wavFormatPCM && format.BitDepth == 16:
		return decodeInt16(dec, format)
	case dec.WavAudioFormat == wavFormatIEEEFloat && format.BitDepth == 32:
		return decodeFloat32(dec, format)
	default:
		return nil, fmt.Errorf("%w: format tag %d with %d bits per sample", ErrUnsupportedFormat, dec.WavAudioFormat, format.BitDepth)
	}
}

func decodeInt16(dec *wav.Decoder, format Format) (*Clip, error) {
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: decoding pcm data: %v", ErrUnreadable, err)
	}
	if len(buf.Data) == 0 {
		return nil, fmt.Errorf("%w: no audio data", ErrUnreadable)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	return &Clip{Format: format, Int16: samples}, nil
}

// decodeFloat32 reads the data chunk directly: the generic int decode path
// would reinterpret float bit patterns as integers.
func decodeFloat32(dec *wav.Decoder, format Format) (*Clip, error) {
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: locating pcm data: %v", ErrUnreadable, err)
	}

	// The chunk reader stops at the declared size or the real end of the
	// file, whichever comes first, so a lying size field degrades to a
	// short read rather than an allocation of the declared size.
	raw, err := io.ReadAll(dec.PCMChunk)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pcm data: %v", ErrUnreadable, err)
	}
	raw = raw[:len(raw)-len(raw)%4]
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no audio data", ErrUnreadable)
	}

	samples := make([]float32, 0, len(raw)/4)
	for off := 0; off+4 <= len(raw); off += 4 {
		bits := binary.LittleEndian.Uint32(raw[off : off+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return &Clip{Format: format, Float32: samples}, nil
}
