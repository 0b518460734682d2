// Package repair recovers unreadable WAV containers by remuxing them with
// an external tool and retrying the read exactly once.
package repair

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrToolUnavailable reports that the remux tool binary was not found.
	ErrToolUnavailable = errors.New("repair: remux tool not found")

	// ErrStillUnreadable reports a container that stayed unreadable after
	// a remux that the tool itself considered successful.
	ErrStillUnreadable = errors.New("repair: container still unreadable after remux")
)

// ToolError reports a remux subprocess that exited with a failure. Stderr
// carries the tool's diagnostic output verbatim.
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("repair: %s failed: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("repair: %s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Remuxer rewrites the container at src into dst, copying the audio stream
// without re-encoding. Implementations must not modify src.
type Remuxer interface {
	Remux(ctx context.Context, src, dst string) error
}

// FFmpeg remuxes WAV containers by shelling out to ffmpeg.
type FFmpeg struct {
	path    string
	timeout time.Duration
}

// NewFFmpeg creates an ffmpeg-backed remuxer. path may be a bare binary
// name resolved via PATH or an absolute path; empty means "ffmpeg".
// timeout bounds one remux invocation; zero means no bound.
func NewFFmpeg(path string, timeout time.Duration) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{path: path, timeout: timeout}
}

// Remux runs `ffmpeg -i src -c:a copy -y dst`. A stream copy rewrites the
// chunk structure with correct sizes without touching the samples.
func (f *FFmpeg) Remux(ctx context.Context, src, dst string) error {
	bin, err := exec.LookPath(f.path)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrToolUnavailable, f.path, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, "-i", src, "-c:a", "copy", "-y", dst)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s", f.timeout)
		}
		return &ToolError{Tool: f.path, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	return nil
}
