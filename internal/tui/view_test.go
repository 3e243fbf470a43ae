package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/guard"
)

func TestView_Starting(t *testing.T) {
	view := NewModel(nil, nil).View()

	assert.Contains(t, view, "assetguard")
	assert.Contains(t, view, "Starting...")
	assert.Contains(t, view, "Nothing downloaded yet")
}

func TestView_Validating(t *testing.T) {
	model := feed(*NewModel(nil, nil),
		events.Validate(guard.PhaseAssets),
		events.Progress("assets", 7, 12),
	)

	assert.Contains(t, model.View(), "Validating assets  7/12")

	model = feed(model, events.Validate(guard.PhaseLibraries))
	assert.Contains(t, model.View(), "Validating libraries")
}

func TestView_UpToDate(t *testing.T) {
	model := feed(*NewModel(nil, nil),
		events.Validate(guard.PhaseDownload),
		events.Event{Kind: events.KindComplete, Category: events.CategoryPipeline, Status: events.StatusOK},
	)

	assert.Contains(t, model.View(), "Everything is up to date")
}

func TestView_Downloading(t *testing.T) {
	model := feed(*NewModel(nil, nil),
		events.Validate(guard.PhaseDownload),
		events.Progress("assets", 1000, 2000),
		events.Event{Kind: events.KindComplete, Category: "libraries", Done: 5000, Total: 5000, Status: events.StatusOK},
	)

	view := model.View()
	assert.Contains(t, view, "Downloading")
	assert.Contains(t, view, "CATEGORY")
	assert.Contains(t, view, "assets")
	assert.Contains(t, view, "libraries")
	assert.Contains(t, view, "active")
	assert.Contains(t, view, "✓ ok")
	assert.Contains(t, view, "1kB / 2kB")
	assert.Contains(t, view, "SPEED")
}

func TestView_FailedItems(t *testing.T) {
	var failed []string
	for i := 0; i < maxFailedShown+2; i++ {
		failed = append(failed, fmt.Sprintf("mod-%d", i))
	}
	model := feed(*NewModel(nil, nil),
		events.Validate(guard.PhaseDownload),
		events.Event{Kind: events.KindComplete, Category: "forge", Done: 10, Total: 20, Status: events.StatusPartial, Failed: failed},
	)

	view := model.View()
	assert.Contains(t, view, "✗ partial")
	assert.Contains(t, view, "Failed forge (10)")
	assert.Contains(t, view, "mod-0")
	assert.NotContains(t, view, "mod-9")
	assert.Contains(t, view, "... and 2 more")
}

func TestView_WithError(t *testing.T) {
	model := NewModel(nil, nil)
	model.err = errors.New("boom")
	model.errorTime = time.Now()

	view := model.View()
	assert.Contains(t, view, "Error: boom")
}

func TestView_Done(t *testing.T) {
	model := NewModel(nil, nil)
	model.done = true
	assert.Contains(t, model.View(), "Done")

	model.runErr = errors.New("lock held")
	assert.Contains(t, model.View(), "Failed: lock held")
}

func TestView_Cancelled(t *testing.T) {
	model := NewModel(nil, nil)
	model.quitting = true

	assert.Equal(t, "Validation cancelled.\n", model.View())
}

func TestRenderHeader(t *testing.T) {
	model := NewModel(nil, nil)
	model.width = 100
	model.lastUpdate = model.started.Add(90 * time.Second)

	header := model.renderHeader()
	assert.Contains(t, header, "assetguard")
	assert.Contains(t, header, "Elapsed: 1m30s")
	assert.Contains(t, header, strings.Repeat("─", 98))
}

func TestRenderFooter(t *testing.T) {
	model := NewModel(nil, nil)
	assert.Contains(t, model.renderFooter(), "[q]uit")
	assert.NotContains(t, model.renderFooter(), "error(s)")

	model.warnings = 2
	assert.Contains(t, model.renderFooter(), "2 error(s)")
}

func TestGetStatusIndicator(t *testing.T) {
	tests := []struct {
		info CategoryInfo
		want string
	}{
		{CategoryInfo{}, "●"},
		{CategoryInfo{Complete: true, Status: events.StatusOK}, "✓"},
		{CategoryInfo{Complete: true, Status: events.StatusPartial}, "✗"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, getStatusIndicator(tt.info))
	}
}

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		width   int
		want    string
	}{
		{name: "no samples", width: 5, want: "▁▁▁▁▁"},
		{name: "padded at the start", samples: []float64{0, 10}, width: 4, want: "▁▁▁█"},
		{name: "scaled to peak", samples: []float64{5, 10}, width: 2, want: "▅█"},
		{name: "keeps the latest", samples: []float64{10, 0, 0}, width: 2, want: "▁▁"},
		{name: "all idle", samples: []float64{0, 0}, width: 2, want: "▁▁"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderSparkline(tt.samples, tt.width))
		})
	}
}

func TestRenderCategoryBar(t *testing.T) {
	half := CategoryInfo{Name: "assets", Done: 50, Total: 100}
	assert.Contains(t, renderCategoryBar(half, 10), " 50%")

	over := CategoryInfo{Name: "assets", Done: 150, Total: 100}
	assert.Contains(t, renderCategoryBar(over, 10), "100%")
}

func TestBarColor(t *testing.T) {
	tests := []struct {
		name string
		info CategoryInfo
		want lipgloss.Color
	}{
		{name: "partial", info: CategoryInfo{Complete: true, Status: events.StatusPartial}, want: "#FF0000"},
		{name: "ok", info: CategoryInfo{Complete: true, Status: events.StatusOK}, want: "#00FF00"},
		{name: "just started", info: CategoryInfo{Done: 1, Total: 100}, want: "#FFA500"},
		{name: "halfway", info: CategoryInfo{Done: 50, Total: 100}, want: "#FFFF00"},
		{name: "nearly done", info: CategoryInfo{Done: 90, Total: 100}, want: "#90EE90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, barColor(tt.info))
		})
	}
}

func TestRenderBox(t *testing.T) {
	box := renderBox("Failed forge (2)", "a:b:1\nc:d:1", 30)
	assert.Contains(t, box, "Failed forge (2)")
	assert.Contains(t, box, "a:b:1")
	assert.Contains(t, box, "╭")
	assert.Contains(t, box, "╯")
}
