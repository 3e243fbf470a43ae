package tui

import (
	"time"

	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/guard"
)

// tickMsg is sent on every refresh tick
type tickMsg time.Time

// eventMsg carries one pipeline event
type eventMsg events.Event

// eventsClosedMsg is sent when the event channel is closed
type eventsClosedMsg struct{}

// DoneMsg is sent by the caller when the validation pass has returned.
type DoneMsg struct {
	Result *guard.Result
	Err    error
}

// clearErrorMsg is sent to clear the error message
type clearErrorMsg struct{}
