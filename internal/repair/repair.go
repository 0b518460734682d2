package repair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaz8081/wavscribe/internal/audio"
)

// OpenWithRepair reads the WAV file at path, and if the container is
// unreadable, remuxes it into a sibling temp file, atomically replaces the
// original, and retries the read exactly once. Unsupported formats are
// returned immediately: remuxing cannot change what the file stores.
//
// On remux failure the original file is left byte-for-byte untouched and
// the temp file is removed. The original path only ever holds either the
// original bytes or a completely written repaired container.
//
// A nil rmx is rejected; callers that do not want repair should read the
// file with audio.ReadFile directly.
func OpenWithRepair(ctx context.Context, path string, rmx Remuxer, logger *slog.Logger) (*audio.Clip, error) {
	if rmx == nil {
		return nil, errors.New("repair: no remuxer configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clip, err := audio.ReadFile(path)
	if err == nil {
		return clip, nil
	}
	if !errors.Is(err, audio.ErrUnreadable) {
		return nil, err
	}

	logger.Warn("container unreadable, attempting remux repair",
		slog.String("path", path),
		slog.String("error", err.Error()),
	)

	tmp := tempPath(path)
	if remuxErr := rmx.Remux(ctx, path, tmp); remuxErr != nil {
		// The tool may have left a partial output behind.
		_ = os.Remove(tmp)
		return nil, remuxErr
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("repair: installing repaired container at %s: %w", path, err)
	}

	logger.Info("container repaired in place", slog.String("path", path))

	clip, err = audio.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStillUnreadable, err)
	}
	return clip, nil
}

// tempPath derives the sibling temp file the remuxed container is written
// to before it replaces the original. Keeping it next to the original
// keeps the final rename on one filesystem, so it stays atomic.
func tempPath(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + ".repaired.tmp.wav"
}
