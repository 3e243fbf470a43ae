package tui

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/guard"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.quitting || m.done {
			return m, nil
		}
		m.sample(time.Time(msg))
		return m, tickCmd()

	case eventMsg:
		cmd := m.apply(events.Event(msg))
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case eventsClosedMsg:
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.runErr = msg.Err
		if msg.Err != nil {
			slog.Error("validation failed", "error", msg.Err)
		}
		return m, tea.Quit

	case clearErrorMsg:
		// Only clear if error is older than 3 seconds
		if time.Since(m.errorTime) >= 3*time.Second {
			m.err = nil
		}
		return m, nil
	}

	return m, nil
}

// sample records the bytes processed since the previous tick.
func (m *Model) sample(now time.Time) {
	total := m.downloadedBytes()
	m.throughput = append(m.throughput, float64(total-m.lastBytes))
	if len(m.throughput) > historySize {
		m.throughput = m.throughput[len(m.throughput)-historySize:]
	}
	m.lastBytes = total
	m.lastUpdate = now
}

// apply folds a pipeline event into the model.
func (m *Model) apply(e events.Event) tea.Cmd {
	switch e.Kind {
	case events.KindValidate:
		m.phase = e.Phase
		m.downloading = e.Phase == guard.PhaseDownload
		m.validated = CategoryInfo{Name: e.Phase}
		if m.downloading {
			m.pipelineDone = false
		}

	case events.KindProgress:
		if !m.downloading {
			// Validation reports checked items, not bytes.
			m.validated.Name = e.Category
			m.validated.Done = e.Done
			m.validated.Total = e.Total
			return nil
		}
		i := m.category(e.Category)
		m.categories[i].Done = e.Done
		m.categories[i].Total = e.Total

	case events.KindComplete:
		if e.Category == events.CategoryPipeline {
			m.pipeline = e
			m.pipelineDone = true
			return nil
		}
		i := m.category(e.Category)
		c := &m.categories[i]
		c.Done = e.Done
		c.Total = e.Total
		c.Complete = true
		c.Status = e.Status
		c.Failed = e.Failed

	case events.KindError:
		m.warnings++
		m.err = fmt.Errorf("%s: %w", e.Category, e.Err)
		m.errorTime = time.Now()
		return clearErrorCmd()
	}
	return nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if !m.done && m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit
	}

	if len(m.categories) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}
	case "down", "j":
		if m.selectedIdx < len(m.categories)-1 {
			m.selectedIdx++
		}
	}
	return m, nil
}
