// Package browser manages the Chrome session one orchestration run
// executes against.
//
// A Session wraps a chromedp browser context and exposes the primitive
// operations the execution engine needs, plus continuous console/network
// telemetry capture and screencast recording. A session and its recording
// stream are exclusively owned by one run; sessions are never shared.
package browser

import (
	"context"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	verrors "github.com/verityhq/verity/internal/errors"
)

// Options configures a browser session.
type Options struct {
	// Headless runs Chrome without a visible window.
	Headless bool

	// ChromePath optionally pins the browser binary.
	ChromePath string
}

// Factory creates a fresh session. The orchestrator uses it to recover
// after a mid-run crash without aborting the remaining recipe.
type Factory func(ctx context.Context) (*Session, error)

// NewFactory returns a Factory bound to fixed options.
func NewFactory(opts Options, logger zerolog.Logger) Factory {
	return func(ctx context.Context) (*Session, error) {
		return NewSession(ctx, opts, logger)
	}
}

// Session is one live Chrome browser context.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	telemetry *Telemetry
	recorder  *Recorder

	mu      sync.Mutex
	crashed bool

	logger zerolog.Logger
}

// NewSession launches Chrome and attaches telemetry listeners.
// The caller must Close the session when the run ends.
func NewSession(parent context.Context, opts Options, logger zerolog.Logger) (*Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		telemetry:   NewTelemetry(),
		recorder:    newRecorder(logger),
		logger:      logger,
	}

	// Starting the network domain also forces the browser process to launch,
	// surfacing startup failures here instead of on the first action.
	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		cancel()
		allocCancel()
		return nil, verrors.Wrap(err, "failed to start browser")
	}

	attachListeners(ctx, s.telemetry, s.recorder)

	return s, nil
}

// Close tears down the browser process. Safe to call more than once.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// Telemetry returns the session's console/network capture.
func (s *Session) Telemetry() *Telemetry {
	return s.telemetry
}

// Healthy reports whether the session can still execute actions.
func (s *Session) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.crashed && s.ctx.Err() == nil
}

// run executes chromedp actions against the session, honoring the caller's
// deadline and cancellation. chromedp requires its own context chain, so
// the caller context cannot be passed through directly.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if dl, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(s.ctx, dl)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && isFatalSessionError(err) {
		s.mu.Lock()
		s.crashed = true
		s.mu.Unlock()
		return verrors.Wrapf(verrors.ErrSessionCrashed, "%v", err)
	}
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return verrors.ErrActionTimeout
	}
	return err
}

// isFatalSessionError reports whether an action error means the browser
// process or its connection is gone, as opposed to an element-level failure.
func isFatalSessionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "websocket") ||
		strings.Contains(msg, "chrome failed to start") ||
		strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "browser closed") ||
		strings.Contains(msg, "connection refused")
}

// Navigate loads a URL and waits for the document body.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Click clicks the first visible element matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// Fill types a value into the element matching the selector.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

// WaitVisible blocks until the selector is visible or the context expires.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// BodyText returns the visible text of the page body.
func (s *Session) BodyText(ctx context.Context) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Text("body", &text, chromedp.ByQuery))
	return text, err
}

// Title returns the current page title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	err := s.run(ctx, chromedp.Title(&title))
	return title, err
}

// Screenshot captures a PNG of the current viewport.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// StartRecording begins the whole-run screencast, writing frames to dir.
func (s *Session) StartRecording(ctx context.Context, dir string) error {
	return s.recorder.Start(ctx, s, dir)
}

// StopRecording ends the screencast and returns the frame count.
func (s *Session) StopRecording(ctx context.Context) (int, error) {
	return s.recorder.Stop(ctx, s)
}
