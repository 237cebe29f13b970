package stats

import (
	"sort"

	"github.com/recitar-dev/recitar/internal/model"
)

// WeakDigit is a digit symbol ranked by its grading accuracy.
type WeakDigit struct {
	Symbol   string
	Correct  int
	Wrong    int
	Accuracy float64
}

// RankWeakDigits orders digit aggregates from lowest to highest accuracy,
// breaking ties by symbol. Symbols never attempted are excluded.
func RankWeakDigits(aggs []model.DigitAggregate) []WeakDigit {
	out := make([]WeakDigit, 0, len(aggs))
	for _, agg := range aggs {
		total := agg.Correct + agg.Wrong
		if total == 0 {
			continue
		}
		out = append(out, WeakDigit{
			Symbol:   agg.Symbol,
			Correct:  agg.Correct,
			Wrong:    agg.Wrong,
			Accuracy: float64(agg.Correct) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy == out[j].Accuracy {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Accuracy < out[j].Accuracy
	})
	return out
}
