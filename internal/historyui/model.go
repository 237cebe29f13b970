// Package historyui provides the Bubble Tea session-history browser.
package historyui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recitar-dev/recitar/internal/model"
	"github.com/recitar-dev/recitar/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)

	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pauseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// Model implements the Bubble Tea history browser.
type Model struct {
	store    *store.Store
	constant string

	sessions []model.SessionAggregate
	table    table.Model
	preview  viewport.Model

	confirmClear bool
	errMsg       string

	width  int
	height int
}

// NewModel constructs the history browser for one constant (empty means
// all constants).
func NewModel(st *store.Store, constant string) *Model {
	m := &Model{store: st, constant: constant}
	m.table = buildTable(nil, 0, 1)
	m.preview = viewport.New(0, 0)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.confirmClear {
			switch msg.String() {
			case "y", "Y":
				m.confirmClear = false
				m.clearAll()
			default:
				m.confirmClear = false
			}
			return m, nil
		}
		switch msg.String() {
		case "d":
			m.deleteSelected()
			return m, nil
		case "C":
			if len(m.sessions) > 0 {
				m.confirmClear = true
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			m.loadPreview()
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	title := "History"
	if m.constant != "" {
		title = fmt.Sprintf("History · %s", m.constant)
	}
	header := headerStyle.Render(title)
	footer := mutedStyle.Render("d: delete  C: clear all  q: quit")
	if m.confirmClear {
		footer = promptStyle.Render("Clear all sessions? (y/N)")
	}
	if m.errMsg != "" {
		footer = errorStyle.Render(m.errMsg) + "\n" + footer
	}
	body := m.table.View()
	if len(m.sessions) == 0 {
		body = mutedStyle.Render("No sessions recorded yet.")
	} else {
		body += "\n" + m.preview.View()
	}
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refresh() {
	sessions, err := m.store.ListAll(context.Background(), m.constant)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load sessions: %v", err)
		return
	}
	m.errMsg = ""
	m.sessions = sessions
	m.table = buildTable(sessions, m.tableWidth(), m.tableHeight())
	m.loadPreview()
}

func (m *Model) deleteSelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sessions) {
		return
	}
	if err := m.store.DeleteAt(context.Background(), m.constant, idx); err != nil {
		m.errMsg = fmt.Sprintf("failed to delete session: %v", err)
		return
	}
	m.refresh()
	if idx >= len(m.sessions) && len(m.sessions) > 0 {
		m.table.SetCursor(len(m.sessions) - 1)
	}
}

func (m *Model) clearAll() {
	if err := m.store.ClearAll(context.Background(), m.constant); err != nil {
		m.errMsg = fmt.Sprintf("failed to clear sessions: %v", err)
		return
	}
	m.refresh()
}

func (m *Model) loadPreview() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sessions) {
		m.preview.SetContent("")
		return
	}
	tokens, err := m.store.GetTranscript(context.Background(), m.sessions[idx].ID)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load transcript: %v", err)
		return
	}
	m.preview.SetContent(renderTranscript(tokens))
}

// renderTranscript colors a stored transcript the same way the drill
// screen does: correct digits plain, wrong digits red, pauses as dots.
func renderTranscript(tokens []model.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch tok.Kind {
		case model.TokenPause:
			b.WriteString(pauseStyle.Render("·"))
		case model.TokenDigit:
			style := correctStyle
			if !tok.Correct {
				style = wrongStyle
			}
			b.WriteString(style.Render(string(tok.Symbol)))
		}
	}
	return b.String()
}

func (m *Model) updateLayout() {
	m.table = buildTable(m.sessions, m.tableWidth(), m.tableHeight())
	m.preview.Width = m.width
	m.preview.Height = 3
	m.loadPreview()
}

func (m *Model) tableWidth() int {
	if m.width <= 0 {
		return 78
	}
	return m.width
}

func (m *Model) tableHeight() int {
	// Header, footer, and preview each take space.
	h := m.height - 7
	if h < 1 {
		h = 1
	}
	return h
}

func buildTable(sessions []model.SessionAggregate, width, height int) table.Model {
	columns := []table.Column{
		{Title: "When", Width: 19},
		{Title: "Constant", Width: 8},
		{Title: "Digits", Width: 6},
		{Title: "Correct", Width: 7},
		{Title: "Wrong", Width: 5},
		{Title: "Pauses", Width: 6},
		{Title: "Accuracy", Width: 8},
		{Title: "Duration", Width: 8},
	}
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, table.Row{
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Constant,
			fmt.Sprintf("%d", s.Digits),
			fmt.Sprintf("%d", s.Correct),
			fmt.Sprintf("%d", s.Wrong),
			fmt.Sprintf("%d", s.Pauses),
			fmt.Sprintf("%.1f%%", s.Accuracy*100),
			(time.Duration(s.DurationMs) * time.Millisecond).Round(time.Second).String(),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	return t
}
