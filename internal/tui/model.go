// Package tui renders the progress of a validation pass.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/guard"
)

// historySize is the number of throughput samples kept for the sparkline.
const historySize = 30

// CategoryInfo is the download progress of one category.
type CategoryInfo struct {
	Name     string
	Done     int64
	Total    int64
	Complete bool
	Status   events.Status
	Failed   []string
}

// Percent returns the completion percentage of the category.
func (c CategoryInfo) Percent() float64 {
	if c.Total <= 0 {
		if c.Complete {
			return 100
		}
		return 0
	}
	return float64(c.Done) * 100 / float64(c.Total)
}

// Model is the bubbletea model of the progress view
type Model struct {
	categories  []CategoryInfo
	selectedIdx int

	phase       string
	downloading bool
	// validated counts checked items while a category is being validated.
	validated CategoryInfo

	started    time.Time
	lastUpdate time.Time
	lastBytes  int64
	throughput []float64

	pipeline     events.Event
	pipelineDone bool

	warnings  int
	err       error
	errorTime time.Time

	width  int
	height int

	events <-chan events.Event
	cancel func()

	done     bool
	result   *guard.Result
	runErr   error
	quitting bool
}

// NewModel creates a progress model reading from ch. cancel is called when
// the user quits before the pass has finished; it may be nil.
func NewModel(ch <-chan events.Event, cancel func()) *Model {
	now := time.Now()
	return &Model{
		started:    now,
		lastUpdate: now,
		events:     ch,
		cancel:     cancel,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForEvent(m.events),
	)
}

// Result returns the outcome of the pass once a DoneMsg was received.
func (m Model) Result() (*guard.Result, error) {
	return m.result, m.runErr
}

// tickCmd returns a command that sends a tick message every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent returns a command that blocks until the next pipeline event
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

// clearErrorCmd returns a command that clears the error message after a delay
func clearErrorCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

// category returns the index of a category, adding it when unknown.
func (m *Model) category(name string) int {
	for i, c := range m.categories {
		if c.Name == name {
			return i
		}
	}
	m.categories = append(m.categories, CategoryInfo{Name: name})
	return len(m.categories) - 1
}

// downloadedBytes sums the processed bytes of every category.
func (m Model) downloadedBytes() int64 {
	var n int64
	for _, c := range m.categories {
		n += c.Done
	}
	return n
}
