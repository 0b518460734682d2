package transcribe

import (
	"fmt"
	"io"
)

// FormatSegment renders one segment as "[start - end]: text" with
// timestamps in seconds at two decimals.
func FormatSegment(seg Segment) string {
	return fmt.Sprintf("[%.2fs - %.2fs]: %s", seg.Start.Seconds(), seg.End.Seconds(), seg.Text)
}

// WriteTranscript writes one formatted line per segment, in order.
func WriteTranscript(w io.Writer, segments []Segment) error {
	for _, seg := range segments {
		if _, err := fmt.Fprintln(w, FormatSegment(seg)); err != nil {
			return fmt.Errorf("transcribe: writing transcript: %w", err)
		}
	}
	return nil
}
