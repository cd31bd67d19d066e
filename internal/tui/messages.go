package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/JonMunkholm/dataview/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

// DoneMsg reports a finished action to the status line.
type DoneMsg string

// ErrMsg reports a failed action.
type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

// loadedMsg carries the outcome of a load started at generation gen.
type loadedMsg struct {
	gen  uint64
	path string
	res  *core.LoadResult
	err  error
}

// loadCmd loads path in the background, bounded by timeout.
func loadCmd(parent context.Context, loader *core.Loader, gen uint64, path string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		res, err := loader.LoadFile(ctx, path)
		return loadedMsg{gen: gen, path: path, res: res, err: err}
	}
}

// exportCmd writes the dataset, in parse order, to dir.
func (m *Model) exportCmd() tea.Cmd {
	sess, dir := m.session, m.exportDir
	return func() tea.Msg {
		data, err := sess.Export()
		if err != nil {
			return ErrMsg{Err: err}
		}

		path := filepath.Join(dir, core.ExportFileName)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return ErrMsg{Err: fmt.Errorf("write export: %w", err)}
		}

		logging.WithFields(context.Background(), "path", path, "bytes", len(data)).Info("dataset exported")
		return DoneMsg(fmt.Sprintf("Exported %d records to %s", sess.Info().Records, path))
	}
}
