package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAVFile encodes float32 samples as a 16-bit integer PCM WAV file,
// the container format the transcription pipeline ingests. Samples outside
// [-1, 1] are clamped before conversion.
func WriteWAVFile(path string, sampleRate uint32, channels uint16, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, int(sampleRate), 16, int(channels), wavFormatPCM)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(channels),
			SampleRate:  int(sampleRate),
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(float32ToInt16(s))
	}

	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing pcm data: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return f.Close()
}

// float32ToInt16 clamps s to [-1, 1] and scales it to the int16 range.
func float32ToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
