package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/steviee/assetguard/internal/events"
)

// Output is the JSON envelope of the top-level commands
type Output struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func writeJSON(w io.Writer, status string, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Output{Status: status, Data: data}); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}

// outputError prints err as JSON in JSON mode and returns it
func outputError(w io.Writer, jsonMode bool, err error) error {
	if jsonMode {
		_ = json.NewEncoder(w).Encode(Output{Status: "error", Error: err.Error()})
	}
	return err
}

// logObserver reports pipeline events through slog. Progress is logged at
// debug level only.
func logObserver(logger *slog.Logger) events.Observer {
	return events.ObserverFunc(func(e events.Event) {
		switch e.Kind {
		case events.KindValidate:
			logger.Info("validating", "phase", e.Phase)
		case events.KindProgress:
			logger.Debug("progress", "category", e.Category, "done", e.Done, "total", e.Total)
		case events.KindComplete:
			if e.Status == events.StatusPartial {
				logger.Warn("completed with failures", "category", e.Category, "failed", len(e.Failed))
				return
			}
			logger.Info("completed", "category", e.Category)
		case events.KindError:
			logger.Warn("download failed", "category", e.Category, "error", e.Err)
		}
	})
}
