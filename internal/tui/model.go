// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recitar-dev/recitar/internal/model"
	"github.com/recitar-dev/recitar/internal/session"
	statsPkg "github.com/recitar-dev/recitar/internal/stats"
	"github.com/recitar-dev/recitar/internal/store"
)

// DigitMsg carries one recognized digit from an external source into the
// drill UI. The TUI's own key handler produces the same events for typed
// digits.
type DigitMsg struct {
	Symbol byte
	At     time.Time
}

var (
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pauseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Underline(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// previewDigits is how many upcoming target digits are shown ahead of the
// transcript.
const previewDigits = 40

// Model implements the Bubble Tea drill UI.
type Model struct {
	cfg   model.DrillConfig
	ctrl  *session.Controller
	store *store.Store

	width  int
	height int

	finished *session.Result
	startErr error
	storeErr error

	lastAcc float64
	hasLast bool
	allAcc  float64
	allBest int
}

// NewModel constructs a drill TUI model around a lifecycle controller.
func NewModel(cfg model.DrillConfig, ctrl *session.Controller, st *store.Store) *Model {
	m := &Model{cfg: cfg, ctrl: ctrl, store: st}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.startErr = m.ctrl.Start()
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case DigitMsg:
		m.handleDigit(msg.Symbol, msg.At)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.ctrl.Reset()
		return m, tea.Quit
	case tea.KeyEsc:
		if m.ctrl.Active() {
			m.endSession()
		}
		return m, nil
	case tea.KeyCtrlR:
		m.ctrl.Reset()
		m.finished = nil
		m.startErr = m.ctrl.Start()
		return m, nil
	case tea.KeyEnter:
		if m.finished != nil {
			m.finished = nil
			m.startErr = m.ctrl.Start()
		}
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r >= '0' && r <= '9' {
				m.handleDigit(byte(r), time.Now())
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleDigit(symbol byte, at time.Time) {
	_, ended := m.ctrl.OnDigit(context.Background(), symbol, at)
	if ended != nil {
		m.recordResult(*ended)
	}
}

func (m *Model) endSession() {
	res, err := m.ctrl.End(context.Background())
	if err != nil {
		return
	}
	m.recordResult(res)
}

func (m *Model) recordResult(res session.Result) {
	m.finished = &res
	m.storeErr = res.StoreErr
	if res.StoreErr != nil {
		logErrf("failed to save session: %v\n", res.StoreErr)
	}
	if res.Summary.Digits > 0 {
		m.lastAcc = res.Summary.Accuracy
		m.hasLast = true
	}
	m.loadFooterStats()
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.startErr != nil {
		content = wrongStyle.Render(m.startErr.Error())
	} else if m.finished != nil {
		content = m.renderSummary()
	} else {
		content = m.renderDrill()
	}

	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderDrill() string {
	seq := m.ctrl.Sequence()
	snap := m.ctrl.Snapshot()
	cells := buildTranscriptCells(m.ctrl.Transcript())

	preview := seq.Len() - snap.Cursor
	if preview > previewDigits {
		preview = previewDigits
	}
	for i := 0; i < preview; i++ {
		style := pendingStyle
		if i == 0 {
			style = cursorStyle
		}
		cells = append(cells, styledCell{s: style.Render(string(seq.At(snap.Cursor + i))), width: 1})
	}

	title := titleStyle.Render(fmt.Sprintf("%s  ·  digit %d of %d", seq.Glyph(), snap.Cursor, seq.Len()))
	contentWidth := m.contentWidth()
	body := wrapCells(cells, contentWidth)
	return title + "\n\n" + lipgloss.NewStyle().Width(contentWidth).Render(body)
}

func (m *Model) renderSummary() string {
	s := m.finished.Summary
	ended := "Session ended."
	if s.Auto {
		ended = fmt.Sprintf("Session ended automatically after %d wrong digits.", s.Wrong)
	}
	lines := []string{
		titleStyle.Render(ended),
		"",
		fmt.Sprintf("Digits recited: %d", s.Digits),
		fmt.Sprintf("Correct: %d   Wrong: %d   Pauses: %d", s.Correct, s.Wrong, s.Pauses),
		fmt.Sprintf("Accuracy: %.1f%%", s.Accuracy*100),
		fmt.Sprintf("Duration: %s", s.Duration.Round(time.Second)),
	}
	if m.storeErr != nil {
		lines = append(lines, "", wrongStyle.Render("Warning: session not saved to history."))
	}
	lines = append(lines, "", footerStyle.Render("enter: new session  ·  ctrl+c: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListAggregates(context.Background(), m.cfg.Constant, 0)
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	if !m.hasLast {
		last := sessions[len(sessions)-1]
		acc, _ := statsPkg.SessionMetrics(last.Correct, last.Wrong, last.DurationMs)
		m.lastAcc = acc
		m.hasLast = true
	}
	avg, _ := statsPkg.AggregateMetrics(sessions)
	m.allAcc = avg
	for _, s := range sessions {
		if s.Correct > m.allBest {
			m.allBest = s.Correct
		}
	}
}

func (m *Model) renderFooter() string {
	snap := m.ctrl.Snapshot()
	segments := []string{
		fmt.Sprintf("✓ %d  ✗ %d  ⏸ %d", snap.Correct, snap.Wrong, snap.Pauses),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%%", m.lastAcc*100))
	}
	if m.allBest > 0 {
		segments = append(segments, fmt.Sprintf("Avg %.1f%% · Best %d digits", m.allAcc*100, m.allBest))
	}
	return footerStyle.Render(strings.Join(segments, "   "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
