package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/recitar-dev/recitar/internal/model"
)

// Report bundles everything the stats command renders.
type Report struct {
	Sessions   []model.SessionAggregate
	DigitAggs  []model.DigitAggregate
	WeakDigits []WeakDigit
}

// ReportStore is the subset of store operations BuildReport needs.
type ReportStore interface {
	ListAggregates(ctx context.Context, constant string, lastN int) ([]model.SessionAggregate, error)
	GetDigitAggregates(ctx context.Context, constant string, window int) ([]model.DigitAggregate, error)
}

// BuildReport loads session and digit aggregates per the stats config.
func BuildReport(ctx context.Context, st ReportStore, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListAggregates(ctx, cfg.Constant, cfg.Last)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	window := cfg.WeakWindow
	if window <= 0 {
		window = len(sessions)
	}
	aggs, err := st.GetDigitAggregates(ctx, cfg.Constant, window)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate digits: %w", err)
	}
	return Report{
		Sessions:   sessions,
		DigitAggs:  aggs,
		WeakDigits: RankWeakDigits(aggs),
	}, nil
}

// RenderSummary prints a summary block for the report's sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	avgAcc, bestAcc := AggregateMetrics(sessions)
	var digits, pauses int
	var bestRun int
	for _, s := range sessions {
		digits += s.Digits
		pauses += s.Pauses
		if s.Correct > bestRun {
			bestRun = s.Correct
		}
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Digits recited: %d", digits),
		fmt.Sprintf("Pauses: %d", pauses),
		fmt.Sprintf("Avg accuracy: %.1f%%", avgAcc*100),
		fmt.Sprintf("Best accuracy: %.1f%%", bestAcc*100),
		fmt.Sprintf("Best correct digits: %d", bestRun),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints the accuracy learning curve, smoothed with a moving
// average window, as a terminal plot plus a sparkline of session lengths.
// A non-positive width sizes the plot to the terminal.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	lens := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, _ := SessionMetrics(s.Correct, s.Wrong, s.DurationMs)
		accs[i] = acc * 100
		lens[i] = float64(s.Correct)
	}
	if err := PlotSeries(w, "Accuracy %", MovingAverage(accs, window), width, 0); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\nCorrect digits per session: %s\n\n", Sparkline(lens)); err != nil {
		return err
	}
	return nil
}

// RenderWeakDigits prints the weak-digit table, lowest accuracy first.
func RenderWeakDigits(w io.Writer, weak []WeakDigit) error {
	if len(weak) == 0 {
		_, err := fmt.Fprintln(w, "No digit stats found.")
		return err
	}
	rows := make([][]string, 0, len(weak))
	for _, d := range weak {
		rows = append(rows, []string{
			d.Symbol,
			fmt.Sprintf("%.1f%%", d.Accuracy*100),
			fmt.Sprintf("%d", d.Correct),
			fmt.Sprintf("%d", d.Wrong),
		})
	}
	lines := formatTable(
		[]string{"Digit", "Accuracy", "Correct", "Wrong"},
		rows,
		map[int]bool{1: true, 2: true, 3: true},
	)
	if _, err := fmt.Fprintln(w, "Weak digits"); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
