package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/verityhq/verity/internal/constants"
	verrors "github.com/verityhq/verity/internal/errors"
)

// Recorder captures the whole-run screencast as a sequence of JPEG frames.
// Frames land in a run-scoped directory; the artifact store encodes them
// into a video at run end.
type Recorder struct {
	mu     sync.Mutex
	active bool
	dir    string
	frames int
	logger zerolog.Logger
}

func newRecorder(logger zerolog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Start begins the screencast. Frames are written to dir as they arrive.
func (r *Recorder) Start(ctx context.Context, s *Session, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return verrors.Wrap(err, "failed to create frames directory")
	}

	r.mu.Lock()
	r.active = true
	r.dir = dir
	r.frames = 0
	r.mu.Unlock()

	err := s.run(ctx, page.StartScreencast().
		WithFormat(page.ScreencastFormatJpeg).
		WithQuality(constants.ScreencastQuality).
		WithEveryNthFrame(2))
	if err != nil {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		return verrors.Wrap(err, "failed to start screencast")
	}
	return nil
}

// Stop ends the screencast and returns the number of captured frames.
func (r *Recorder) Stop(ctx context.Context, s *Session) (int, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return 0, verrors.ErrRecordingInactive
	}
	r.active = false
	frames := r.frames
	r.mu.Unlock()

	if err := s.run(ctx, page.StopScreencast()); err != nil {
		// The frames on disk are still valid evidence; report the count.
		return frames, verrors.Wrap(err, "failed to stop screencast")
	}
	return frames, nil
}

// handleFrame persists one screencast frame and acknowledges it so the
// browser keeps streaming. Runs on the chromedp event goroutine; the ack
// must not block it.
func (r *Recorder) handleFrame(ctx context.Context, ev *page.EventScreencastFrame) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		// Unacked frames stall the screencast; ack even when inactive.
		go ackFrame(ctx, ev.SessionID)
		return
	}
	r.frames++
	seq := r.frames
	dir := r.dir
	r.mu.Unlock()

	go func() {
		ackFrame(ctx, ev.SessionID)

		data, err := base64.StdEncoding.DecodeString(ev.Data)
		if err != nil {
			r.logger.Debug().Err(err).Msg("dropping undecodable screencast frame")
			return
		}
		path := filepath.Join(dir, fmt.Sprintf("frame-%06d.jpg", seq))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			r.logger.Debug().Err(err).Str("path", path).Msg("failed to write screencast frame")
		}
	}()
}

// ackFrame acknowledges a screencast frame.
func ackFrame(ctx context.Context, sessionID int64) {
	_ = chromedp.Run(ctx, page.ScreencastFrameAck(sessionID))
}
