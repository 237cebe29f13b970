// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/recitar-dev/recitar/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and digits-per-minute for a session.
func SessionMetrics(correct, wrong int, durationMs int64) (accuracy, dpm float64) {
	den := float64(correct + wrong)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return accuracy, 0
	}
	minutes := float64(durationMs) / 60000.0
	dpm = den / minutes
	return accuracy, dpm
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// AggregateMetrics sums aggregates into overall accuracy and best accuracy.
func AggregateMetrics(sessions []model.SessionAggregate) (avgAccuracy, bestAccuracy float64) {
	if len(sessions) == 0 {
		return 0, 0
	}
	var total float64
	for _, s := range sessions {
		acc, _ := SessionMetrics(s.Correct, s.Wrong, s.DurationMs)
		total += acc
		if acc > bestAccuracy {
			bestAccuracy = acc
		}
	}
	return total / float64(len(sessions)), bestAccuracy
}
