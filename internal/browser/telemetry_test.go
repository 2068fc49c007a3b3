package browser

import (
	"errors"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verityhq/verity/internal/domain"
)

func consoleEntry(level, text string) domain.ConsoleEntry {
	return domain.ConsoleEntry{Level: level, Text: text}
}

func TestTelemetry_SnapshotCapsConsole(t *testing.T) {
	telemetry := NewTelemetry()
	for i := 0; i < 30; i++ {
		telemetry.console = append(telemetry.console, consoleEntry("log", "line"))
	}

	console, _ := telemetry.Snapshot(10)
	assert.Len(t, console, 10)

	// A zero cap disables truncation.
	console, _ = telemetry.Snapshot(0)
	assert.Len(t, console, 30)
}

func TestTelemetry_SnapshotCopies(t *testing.T) {
	telemetry := NewTelemetry()
	telemetry.console = append(telemetry.console, consoleEntry("error", "boom"))

	console, _ := telemetry.Snapshot(10)
	require.Len(t, console, 1)

	console[0].Text = "mutated"
	fresh, _ := telemetry.Snapshot(10)
	assert.Equal(t, "boom", fresh[0].Text, "snapshots must not alias internal buffers")
}

func TestTelemetry_LoadingFailureUsesRequestURL(t *testing.T) {
	telemetry := NewTelemetry()
	telemetry.recordRequest(&network.EventRequestWillBeSent{
		RequestID: "req-1",
		Request:   &network.Request{URL: "https://api.example.com/cart"},
	})
	telemetry.recordLoadingFailed(&network.EventLoadingFailed{
		RequestID: "req-1",
		ErrorText: "net::ERR_CONNECTION_REFUSED",
	})

	_, failures := telemetry.Snapshot(0)
	require.Len(t, failures, 1)
	assert.Equal(t, "https://api.example.com/cart", failures[0].URL)
	assert.Equal(t, "net::ERR_CONNECTION_REFUSED", failures[0].Reason)
}

func TestTelemetry_CanceledLoadIsNotAFailure(t *testing.T) {
	telemetry := NewTelemetry()
	telemetry.recordLoadingFailed(&network.EventLoadingFailed{
		RequestID: "req-1",
		Canceled:  true,
	})

	_, failures := telemetry.Snapshot(0)
	assert.Empty(t, failures)
}

func TestTelemetry_ErrorStatusRecorded(t *testing.T) {
	telemetry := NewTelemetry()
	telemetry.recordResponse(&network.EventResponseReceived{
		Response: &network.Response{URL: "https://x/api", Status: 502},
	})
	telemetry.recordResponse(&network.EventResponseReceived{
		Response: &network.Response{URL: "https://x/ok", Status: 200},
	})

	_, failures := telemetry.Snapshot(0)
	require.Len(t, failures, 1)
	assert.Equal(t, "HTTP 502", failures[0].Reason)
}

func TestTelemetry_Reset(t *testing.T) {
	telemetry := NewTelemetry()
	telemetry.console = append(telemetry.console, consoleEntry("log", "x"))
	telemetry.recordResponse(&network.EventResponseReceived{
		Response: &network.Response{URL: "https://x", Status: 500},
	})

	telemetry.Reset()

	console, failures := telemetry.Snapshot(0)
	assert.Empty(t, console)
	assert.Empty(t, failures)
}

func TestIsFatalSessionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"websocket gone", errors.New("websocket url timeout reached"), true},
		{"chrome start failure", errors.New("chrome failed to start: exit status 1"), true},
		{"target closed", errors.New("page.navigate: target closed"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"element not found", errors.New("could not find node for selector #buy"), false},
		{"timeout", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFatalSessionError(tt.err))
		})
	}
}
