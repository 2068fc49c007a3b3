package artifact

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/verityhq/verity/internal/constants"
	verrors "github.com/verityhq/verity/internal/errors"
)

// Encoder assembles captured screencast frames into a video file.
type Encoder interface {
	// Encode reads JPEG frames from framesDir and writes a video to
	// outputPath. Returns ErrEncoderUnavailable when the underlying
	// tool is not installed.
	Encode(ctx context.Context, framesDir, outputPath string) error
}

// FFmpegEncoder encodes frames with the ffmpeg binary found on PATH.
type FFmpegEncoder struct {
	// Binary overrides the ffmpeg binary name. Empty means "ffmpeg".
	Binary string
}

var _ Encoder = (*FFmpegEncoder)(nil)

// Encode runs ffmpeg over the frame sequence. The screencast captures at
// a fixed frame rate, so the input rate matches the recorder's.
func (e *FFmpegEncoder) Encode(ctx context.Context, framesDir, outputPath string) error {
	binary := e.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return verrors.Wrapf(verrors.ErrEncoderUnavailable, "%s not found on PATH", binary)
	}

	args := []string{
		"-y",
		"-framerate", strconv.Itoa(constants.ScreencastFPS),
		"-i", filepath.Join(framesDir, "frame-%06d.jpg"),
		"-c:v", "libvpx-vp9",
		"-pix_fmt", "yuv420p",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return verrors.Wrapf(err, "ffmpeg failed: %s", truncateOutput(out))
	}
	return nil
}

// truncateOutput keeps ffmpeg diagnostics short enough for log lines.
func truncateOutput(out []byte) string {
	const limit = 400
	if len(out) <= limit {
		return string(out)
	}
	return string(out[len(out)-limit:])
}

// NoopEncoder never produces a video. Used in tests and when video
// capture is disabled.
type NoopEncoder struct{}

var _ Encoder = (*NoopEncoder)(nil)

// Encode reports the encoder as unavailable.
func (NoopEncoder) Encode(_ context.Context, _, _ string) error {
	return verrors.ErrEncoderUnavailable
}
