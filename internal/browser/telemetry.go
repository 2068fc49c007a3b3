package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/verityhq/verity/internal/domain"
)

// consoleBufferCap bounds the in-memory console buffer between snapshots.
// The reporting cap is applied later; keeping a little more here preserves
// context when the same scenario is snapshotted with different caps.
const consoleBufferCap = 100

// Telemetry continuously captures console messages and failed network
// requests for the scenario execution window.
type Telemetry struct {
	mu       sync.Mutex
	console  []domain.ConsoleEntry
	netFails []domain.NetworkFailure
	// requestURLs correlates network request ids to URLs so loading
	// failures can be reported with the address that failed.
	requestURLs map[network.RequestID]string
}

// NewTelemetry creates an empty capture buffer.
func NewTelemetry() *Telemetry {
	return &Telemetry{requestURLs: make(map[network.RequestID]string)}
}

// attachListeners subscribes telemetry and the recorder to browser events.
func attachListeners(ctx context.Context, t *Telemetry, r *Recorder) {
	chromedp.ListenTarget(ctx, func(ev any) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			t.recordConsole(e)
		case *network.EventRequestWillBeSent:
			t.recordRequest(e)
		case *network.EventLoadingFailed:
			t.recordLoadingFailed(e)
		case *network.EventResponseReceived:
			t.recordResponse(e)
		case *page.EventScreencastFrame:
			r.handleFrame(ctx, e)
		}
	})
}

func (t *Telemetry) recordConsole(e *runtime.EventConsoleAPICalled) {
	var parts []string
	for _, arg := range e.Args {
		if arg == nil {
			continue
		}
		if len(arg.Value) > 0 {
			parts = append(parts, strings.Trim(string(arg.Value), `"`))
		} else if arg.Description != "" {
			parts = append(parts, arg.Description)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.console = append(t.console, domain.ConsoleEntry{
		Level: string(e.Type),
		Text:  strings.Join(parts, " "),
		At:    time.Now().UTC(),
	})
	if len(t.console) > consoleBufferCap {
		t.console = t.console[len(t.console)-consoleBufferCap:]
	}
}

func (t *Telemetry) recordRequest(e *network.EventRequestWillBeSent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requestURLs[e.RequestID] = e.Request.URL
}

func (t *Telemetry) recordLoadingFailed(e *network.EventLoadingFailed) {
	if e.Canceled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.netFails = append(t.netFails, domain.NetworkFailure{
		URL:    t.requestURLs[e.RequestID],
		Reason: e.ErrorText,
		At:     time.Now().UTC(),
	})
}

func (t *Telemetry) recordResponse(e *network.EventResponseReceived) {
	if e.Response == nil || e.Response.Status < 400 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.netFails = append(t.netFails, domain.NetworkFailure{
		URL:    e.Response.URL,
		Reason: fmt.Sprintf("HTTP %d", e.Response.Status),
		At:     time.Now().UTC(),
	})
}

// Snapshot returns the captured telemetry, keeping at most the last
// maxConsole console entries. Network failures are never truncated.
func (t *Telemetry) Snapshot(maxConsole int) ([]domain.ConsoleEntry, []domain.NetworkFailure) {
	t.mu.Lock()
	defer t.mu.Unlock()

	console := t.console
	if maxConsole > 0 && len(console) > maxConsole {
		console = console[len(console)-maxConsole:]
	}
	consoleCopy := make([]domain.ConsoleEntry, len(console))
	copy(consoleCopy, console)

	netCopy := make([]domain.NetworkFailure, len(t.netFails))
	copy(netCopy, t.netFails)

	return consoleCopy, netCopy
}

// Reset clears the buffers at a scenario boundary.
func (t *Telemetry) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.console = nil
	t.netFails = nil
	t.requestURLs = make(map[network.RequestID]string)
}
