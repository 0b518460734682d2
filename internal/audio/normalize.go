package audio

import (
	"errors"
	"fmt"
)

// ErrUnsupportedBitDepth reports a clip whose bit depth and channel layout
// have no normalization rule. The decoder rejects these before a clip is
// built, so hitting this means the clip was constructed by hand.
var ErrUnsupportedBitDepth = errors.New("audio: unsupported bit depth")

// Normalize converts a clip's raw samples into the mono float32 buffer the
// recognition engine expects, nominally in [-1, 1]. 16-bit samples are
// scaled by 1/32768; stereo frames are averaged into one sample after
// scaling. A trailing partial frame is dropped. The clip is not modified.
func Normalize(clip *Clip) ([]float32, error) {
	depth := clip.Format.BitDepth
	channels := clip.Format.Channels

	switch {
	case depth == 16 && channels == 1:
		out := make([]float32, len(clip.Int16))
		for i, s := range clip.Int16 {
			out[i] = float32(s) / 32768.0
		}
		return out, nil

	case depth == 16 && channels == 2:
		out := make([]float32, 0, len(clip.Int16)/2)
		for i := 0; i+1 < len(clip.Int16); i += 2 {
			l := float32(clip.Int16[i]) / 32768.0
			r := float32(clip.Int16[i+1]) / 32768.0
			out = append(out, (l+r)*0.5)
		}
		return out, nil

	case depth == 32 && channels == 1:
		out := make([]float32, len(clip.Float32))
		copy(out, clip.Float32)
		return out, nil

	case depth == 32 && channels == 2:
		out := make([]float32, 0, len(clip.Float32)/2)
		for i := 0; i+1 < len(clip.Float32); i += 2 {
			out = append(out, (clip.Float32[i]+clip.Float32[i+1])*0.5)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d-bit %d-channel audio", ErrUnsupportedBitDepth, depth, channels)
	}
}
