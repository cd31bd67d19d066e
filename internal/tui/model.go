// Package tui is the terminal front end: a bubbletea program showing one
// loaded file as a filterable, sortable, paginated table.
package tui

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/JonMunkholm/dataview/internal/logging"
	"github.com/JonMunkholm/dataview/internal/view"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	maxCellWidth   = 24
	defaultTimeout = 30 * time.Second
)

type mode int

const (
	modeTable mode = iota
	modeFilter
	modeMenu
)

// Options configure a Model.
type Options struct {
	Path      string // file to load on start; may be empty
	Loader    *core.Loader
	Engine    view.Engine
	Timeout   time.Duration // per load
	ExportDir string        // defaults to the loaded file's directory

	// Watch reloads Path whenever it is written.
	Watch         bool
	WatchDebounce time.Duration
}

// Model is the bubbletea model of the viewer.
type Model struct {
	ctx     context.Context
	loader  *core.Loader
	session *view.Session
	timeout time.Duration

	path      string
	exportDir string
	watcher   *Watcher

	mode       mode
	filter     textinput.Model
	prevFilter string
	colKey     string // column under the cursor; empty means the first

	menu       *Menu
	root       *Menu
	menuCursor int

	loading bool
	status  string
	err     error
	width   int
	styles  Styles
}

// New returns a Model. The load of opts.Path starts with Init.
func New(ctx context.Context, opts Options) *Model {
	if opts.Loader == nil {
		opts.Loader = core.NewLoader(0, nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ExportDir == "" && opts.Path != "" {
		opts.ExportDir = filepath.Dir(opts.Path)
	}

	m := &Model{
		ctx:       ctx,
		loader:    opts.Loader,
		session:   view.NewSession(opts.Engine),
		timeout:   opts.Timeout,
		path:      opts.Path,
		exportDir: opts.ExportDir,
		filter:    textinput.New(),
		styles:    DefaultStyles(),
	}
	m.filter.Prompt = "/"
	m.filter.Placeholder = "filter..."
	m.filter.CharLimit = 256
	m.root = buildMenuTree(m)

	if opts.Watch && opts.Path != "" {
		w, err := NewWatcher(ctx, opts.Path, opts.WatchDebounce)
		if err != nil {
			logging.FromContext(ctx).Warn("file watching disabled", "error", err)
			m.err = err
		} else {
			m.watcher = w
		}
	}
	return m
}

// Close stops the file watcher, if any.
func (m *Model) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}

// Session exposes the viewer's session.
func (m *Model) Session() *view.Session { return m.session }

func (m *Model) Init() tea.Cmd {
	if m.path == "" {
		return nil
	}
	return m.withWatch(m.startLoad())
}

// withWatch pairs cmd with the next wait on the file watcher.
func (m *Model) withWatch(cmd tea.Cmd) tea.Cmd {
	if m.watcher == nil {
		return cmd
	}
	return tea.Batch(cmd, waitForChange(m.watcher))
}

func (m *Model) startLoad() tea.Cmd {
	m.loading = true
	m.err = nil
	m.status = "Loading " + filepath.Base(m.path) + "..."
	gen := m.session.BeginLoad()
	return loadCmd(m.ctx, m.loader, gen, m.path, m.timeout)
}

// reload loads the current file again.
func (m *Model) reload() tea.Cmd {
	if m.path == "" {
		return func() tea.Msg { return ErrMsg{Err: core.ErrNoDataset} }
	}
	return m.startLoad()
}

// clear drops the dataset and any load in flight.
func (m *Model) clear() tea.Cmd {
	m.session.Clear()
	m.filter.SetValue("")
	m.colKey = ""
	m.loading = false
	return func() tea.Msg { return DoneMsg("Cleared") }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loadedMsg:
		return m, m.handleLoaded(msg)

	case fileChangedMsg:
		logging.WithFields(m.ctx, "file", m.path).Info("file changed, reloading")
		return m, m.withWatch(m.startLoad())

	case DoneMsg:
		m.status, m.err = string(msg), nil
		return m, nil

	case ErrMsg:
		m.status, m.err = "", msg.Err
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m, m.updateFilter(msg)
		case modeMenu:
			return m, m.updateMenu(msg)
		default:
			return m, m.updateTable(msg)
		}
	}

	return m, nil
}

// handleLoaded applies a load result unless a newer load or a clear
// superseded it. A failed load clears the dataset.
func (m *Model) handleLoaded(msg loadedMsg) tea.Cmd {
	logger := logging.WithFields(m.ctx, "file", msg.path, "generation", msg.gen)

	if msg.err != nil {
		if !m.session.FailLoad(msg.gen) {
			logger.Debug("ignoring superseded load failure", "error", msg.err)
			return nil
		}
		logger.Warn("load failed", "error", msg.err)
		m.loading = false
		m.status, m.err = "", msg.err
		m.filter.SetValue("")
		return nil
	}

	if !m.session.CommitLoad(msg.gen, msg.res) {
		logger.Debug("discarding superseded load")
		return nil
	}

	m.loading = false
	m.err = nil
	m.colKey = ""
	m.filter.SetValue("")
	m.status = fmt.Sprintf("Loaded %d records from %s (%s, %s)",
		len(msg.res.Records), filepath.Base(msg.path), msg.res.Format, msg.res.Encoding)
	return nil
}

func (m *Model) updateTable(msg tea.KeyMsg) tea.Cmd {
	cols := m.session.Render().Columns

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit

	case "/":
		m.mode = modeFilter
		m.prevFilter = m.filter.Value()
		return m.filter.Focus()

	case "left", "h":
		if i := m.cursor(cols); i > 0 {
			m.colKey = cols[i-1].Key
		}

	case "right", "l":
		if i := m.cursor(cols); i < len(cols)-1 {
			m.colKey = cols[i+1].Key
		}

	case "s", "enter":
		if len(cols) > 0 {
			// Sorting can reorder columns; the cursor stays on the sorted one.
			m.colKey = cols[m.cursor(cols)].Key
			m.session.ToggleSort(m.colKey)
		}

	case "n", "pgdown":
		m.session.NextPage()

	case "p", "pgup":
		m.session.PrevPage()

	case "g", "home":
		m.session.SetPage(1)

	case "G", "end":
		m.session.SetPage(math.MaxInt)

	case "c":
		return m.clear()

	case "r":
		return m.reload()

	case "e":
		return m.exportCmd()

	case "m":
		m.mode = modeMenu
		m.menu = m.root
		m.menuCursor = 0
	}

	return nil
}

// updateFilter edits the filter text, applying it on every keystroke.
// Esc restores the text from before editing.
func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.mode = modeTable
		m.filter.Blur()
		return nil

	case "esc":
		m.mode = modeTable
		m.filter.Blur()
		m.filter.SetValue(m.prevFilter)
		m.session.SetFilter(m.prevFilter)
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != m.session.State().Filter {
		m.session.SetFilter(m.filter.Value())
	}
	return cmd
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "m", "q":
		m.mode = modeTable
		return nil

	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}

	case "down", "j":
		if m.menuCursor < len(m.menu.Items)-1 {
			m.menuCursor++
		}

	case "enter":
		item := m.menu.Items[m.menuCursor]
		switch {
		case item.Label == "Back" && item.Submenu == nil:
			m.mode = modeTable
		case item.Submenu != nil:
			m.menu = item.Submenu
			m.menuCursor = 0
		case item.Action != nil:
			m.mode = modeTable
			return item.Action()
		}
	}

	return nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("dataview"))
	if info := m.session.Info(); info.FileName != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.Info.Render(fmt.Sprintf("%s · %s · %s · %d columns",
			filepath.Base(info.FileName), info.Format, info.Encoding, info.Columns)))
	}
	b.WriteString("\n")

	if m.mode == modeFilter {
		b.WriteString(m.filter.View())
	} else if f := m.session.State().Filter; f != "" {
		b.WriteString(m.styles.Info.Render("filter: " + f))
	}
	b.WriteString("\n\n")

	if m.session.Loaded() {
		page := m.session.Render()
		b.WriteString(m.renderTable(page))
		b.WriteString("\n")
		b.WriteString(m.styles.Summary.Render(page.Summary()))
		b.WriteString("\n")
	} else if !m.loading {
		b.WriteString(m.styles.Info.Render("No file loaded."))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(core.FormatUserError(m.err)))
	case m.status != "":
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n")

	if m.mode == modeMenu {
		b.WriteString(m.renderMenu())
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("←/→ column · s sort · / filter · n/p page · e export · r reload · c clear · m menu · q quit"))
	return b.String()
}

// cursor returns the index of the column under the cursor, falling back
// to the first column when that key is no longer shown.
func (m *Model) cursor(cols []view.Column) int {
	for i, c := range cols {
		if c.Key == m.colKey {
			return i
		}
	}
	return 0
}

func (m *Model) renderTable(page view.Page) string {
	cur := m.cursor(page.Columns)
	widths := make([]int, len(page.Columns))
	headers := make([]string, len(page.Columns))
	for i, col := range page.Columns {
		headers[i] = col.Key
		if col.Indicator != "" {
			headers[i] += " " + col.Indicator
		}
		widths[i] = lipgloss.Width(headers[i])
	}
	for _, row := range page.Rows {
		for i, cell := range row.Cells {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for i, h := range headers {
		style := m.styles.Header
		if i == cur {
			style = m.styles.HeaderCursor
		}
		b.WriteString(style.Render(fit(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")

	for _, row := range page.Rows {
		for i, cell := range row.Cells {
			style := m.styles.Cell
			if _, present := row.Record.Get(page.Columns[i].Key); !present {
				style = m.styles.Placeholder
			}
			b.WriteString(style.Render(fit(cell, widths[i])))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	if m.width <= 0 {
		return b.String()
	}
	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderMenu() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.menu.Title))
	for i, item := range m.menu.Items {
		b.WriteString("\n")
		if i == m.menuCursor {
			b.WriteString(m.styles.MenuSelected.Render("> " + item.Label))
			continue
		}
		b.WriteString("  " + item.Label)
	}
	return m.styles.Menu.Render(b.String())
}

// fit truncates s to at most maxCellWidth cells and pads it to width.
func fit(s string, width int) string {
	width = min(width, maxCellWidth)
	s = ansi.Truncate(s, width, "…")
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
