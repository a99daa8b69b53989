package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/inkfold/inkfold/internal/search"
	"github.com/inkfold/inkfold/internal/searchapi"
)

// RefreshMsg tells the program the controller changed state and the view
// needs re-rendering. The controller's notify hook sends it from whatever
// goroutine resolved a fetch.
type RefreshMsg struct{}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	hitTitleStyle = lipgloss.NewStyle().Bold(true)
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Italic(true)
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// bottomWatcher is the live scroll observation. While bound, reaching the
// bottom of the results viewport fires the callback; rebinding or
// disconnecting the sentinel clears it so an old observation can never fire
// again.
type bottomWatcher struct {
	mu sync.Mutex
	fn func()
}

func (w *bottomWatcher) bind(fn func()) (cancel func()) {
	w.mu.Lock()
	w.fn = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		w.fn = nil
		w.mu.Unlock()
	}
}

func (w *bottomWatcher) hit() {
	w.mu.Lock()
	fn := w.fn
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Model is the interactive search screen.
type Model struct {
	controller *search.Controller
	location   *search.URLLocation
	watcher    *bottomWatcher

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	lastQuery string
	ready     bool
	width     int
	height    int
}

func NewModel(controller *search.Controller, location *search.URLLocation) Model {
	ti := textinput.New()
	ti.Placeholder = "type to search…"
	ti.Prompt = "/ "
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	w := &bottomWatcher{}
	controller.Sentinel().Rebind(func() func() {
		return w.bind(controller.LoadMore)
	})

	return Model{
		controller: controller,
		location:   location,
		watcher:    w,
		input:      ti,
		spin:       sp,
	}
}

func (m Model) Init() tea.Cmd {
	m.controller.Start()
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 6
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refreshContent()
		return m, nil

	case RefreshMsg:
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.ready {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			m.checkBottom()
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.controller.Close()
			return m, tea.Quit
		case "tab":
			m.controller.ToggleOpen()
			return m, nil
		case "up", "down", "pgup", "pgdown":
			if m.ready {
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				m.checkBottom()
				return m, cmd
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.controller.OnQueryChange(m.input.Value())
			return m, cmd
		}
	}

	return m, nil
}

// checkBottom is the scroll sentinel: at the bottom of the results it fires
// the bound observation, which asks the controller for the next page. Firing
// on every scroll event is fine, the controller turns duplicates into no-ops.
func (m *Model) checkBottom() {
	if m.viewport.AtBottom() {
		m.watcher.hit()
	}
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}

	snap := m.controller.Snapshot()
	m.viewport.SetContent(renderResults(snap, m.viewport.Width))

	// A new committed query starts reading from the top again
	if snap.Query != m.lastQuery {
		m.lastQuery = snap.Query
		m.viewport.GotoTop()
	}
}

func (m Model) View() string {
	if !m.ready {
		return "starting…"
	}

	snap := m.controller.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("inkfold search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine(snap))
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(m.location.String()))

	return b.String()
}

func (m Model) statusLine(snap search.Snapshot) string {
	switch snap.State {
	case search.StateIdle:
		return faintStyle.Render("idle")
	case search.StateLoading:
		return m.spin.View() + " searching…"
	case search.StateLoadingMore:
		return fmt.Sprintf("%d results · %s loading more…", len(snap.Results), m.spin.View())
	case search.StateExhausted:
		if snap.Err != nil {
			return errStyle.Render(fmt.Sprintf("search failed: %v", snap.Err))
		}
		return faintStyle.Render(fmt.Sprintf("%d results · end of results", len(snap.Results)))
	default:
		return fmt.Sprintf("%d results · scroll for more", len(snap.Results))
	}
}

func renderResults(snap search.Snapshot, width int) string {
	if snap.State == search.StateIdle {
		return faintStyle.Render("Start typing to search the site.")
	}
	if len(snap.Results) == 0 && snap.State == search.StateExhausted && snap.Err == nil {
		return faintStyle.Render(fmt.Sprintf("No results for %q.", snap.Query))
	}

	blocks := make([]string, 0, len(snap.Results))
	for _, hit := range snap.Results {
		var b strings.Builder
		b.WriteString(hitTitleStyle.Render(renderHighlights(hit.Title)))
		b.WriteString("  ")
		b.WriteString(categoryStyle.Render(hit.Category))
		if hit.Summary != "" {
			b.WriteString("\n")
			b.WriteString(renderHighlights(hit.Summary))
		}
		blocks = append(blocks, lipgloss.NewStyle().Width(width).Render(b.String()))
	}

	return strings.Join(blocks, "\n\n")
}

// renderHighlights converts the server's highlight markup into terminal
// styling.
func renderHighlights(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, searchapi.HighlightOpen)
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		rest := s[start+len(searchapi.HighlightOpen):]
		end := strings.Index(rest, searchapi.HighlightClose)
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		b.WriteString(matchStyle.Render(rest[:end]))
		s = rest[end+len(searchapi.HighlightClose):]
	}
}
