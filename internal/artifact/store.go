// Package artifact manages run evidence: per-scenario screenshots and the
// whole-run screencast video.
//
// Artifacts are written to run-scoped directories keyed by execution id so
// concurrent runs on different recipes never collide, and are made
// addressable over HTTP by the artifact file server.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	verrors "github.com/verityhq/verity/internal/errors"
)

// framesDirName is the screencast frame directory inside a run directory.
const framesDirName = "frames"

// videoFileName is the encoded run video inside a run directory.
const videoFileName = "video.webm"

// Screenshotter captures a viewport screenshot. *browser.Session
// implements it.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Store is the run-scoped artifact store for one execution.
type Store struct {
	root        string
	executionID string
	baseURL     string
	session     Screenshotter
	shotSeq     int
	logger      zerolog.Logger
}

// NewStore creates the run directory for executionID under root.
// baseURL is the public prefix artifacts are addressable under.
func NewStore(root, executionID, baseURL string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		root:        root,
		executionID: executionID,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
	}
	if err := os.MkdirAll(s.RunDir(), 0o750); err != nil {
		return nil, verrors.Wrap(err, "failed to create run artifact directory")
	}
	return s, nil
}

// Bind attaches the browser session screenshots are captured from.
// The store is created before the session exists, so binding is separate
// from construction.
func (s *Store) Bind(session Screenshotter) {
	s.session = session
}

// RunDir returns the run-scoped artifact directory.
func (s *Store) RunDir() string {
	return filepath.Join(s.root, s.executionID)
}

// FramesDir returns the screencast frame directory for this run.
func (s *Store) FramesDir() string {
	return filepath.Join(s.RunDir(), framesDirName)
}

// VideoPath returns the encoded video path for this run.
func (s *Store) VideoPath() string {
	return filepath.Join(s.RunDir(), videoFileName)
}

// CaptureScreenshot captures and persists a scenario-completion
// screenshot, returning its path. Implements execute.Capturer.
func (s *Store) CaptureScreenshot(ctx context.Context, scenarioName string) (string, error) {
	if s.session == nil {
		return "", verrors.Wrap(verrors.ErrArtifactStore, "no session bound")
	}
	png, err := s.session.Screenshot(ctx)
	if err != nil {
		return "", verrors.Wrap(err, "screenshot capture failed")
	}
	return s.SaveScreenshot(scenarioName, png)
}

// SaveScreenshot persists screenshot bytes for a scenario and returns the
// file path.
func (s *Store) SaveScreenshot(scenarioName string, png []byte) (string, error) {
	s.shotSeq++
	name := fmt.Sprintf("%02d-%s.png", s.shotSeq, slug(scenarioName))
	path := filepath.Join(s.RunDir(), name)
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return "", verrors.Wrapf(verrors.ErrArtifactStore, "write %s: %v", name, err)
	}
	return path, nil
}

// URL returns the public HTTP URL for an artifact path inside this run.
// Returns "" for paths outside the run directory or when no base URL is
// configured.
func (s *Store) URL(path string) string {
	if s.baseURL == "" || path == "" {
		return ""
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return s.baseURL + "/" + filepath.ToSlash(rel)
}

// FinalizeVideo encodes the captured screencast frames into the run video
// and returns its path. Returns "" without error when no frames were
// captured or no encoder is available; a missing video is degraded
// evidence, not a run failure.
func (s *Store) FinalizeVideo(ctx context.Context, enc Encoder) (string, error) {
	entries, err := os.ReadDir(s.FramesDir())
	if err != nil || len(entries) == 0 {
		return "", nil
	}

	if err := enc.Encode(ctx, s.FramesDir(), s.VideoPath()); err != nil {
		if errors.Is(err, verrors.ErrEncoderUnavailable) {
			s.logger.Warn().Msg("video encoder unavailable, keeping raw frames only")
			return "", nil
		}
		return "", verrors.Wrap(err, "video encode failed")
	}
	return s.VideoPath(), nil
}

// Prune removes run directories older than the retention window.
func Prune(root string, olderThan time.Duration, logger zerolog.Logger) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return verrors.Wrap(err, "failed to read artifact root")
	}

	cutoff := time.Now().Add(-olderThan)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("failed to prune run directory")
			continue
		}
		logger.Debug().Str("path", path).Msg("pruned expired run artifacts")
	}
	return nil
}

// slugRe matches characters stripped from scenario names in file names.
var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// slug converts a scenario name to a safe, stable file-name fragment.
func slug(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "scenario"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
