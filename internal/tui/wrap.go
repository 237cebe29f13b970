// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/recitar-dev/recitar/internal/model"
)

// pauseGlyph marks an inter-digit silence in the rendered transcript.
const pauseGlyph = '·'

type styledCell struct {
	s     string
	width int
}

// buildTranscriptCells renders graded tokens into styled cells.
func buildTranscriptCells(tokens []model.Token) []styledCell {
	cells := make([]styledCell, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case model.TokenPause:
			cells = append(cells, styledCell{
				s:     pauseStyle.Render(string(pauseGlyph)),
				width: runewidth.RuneWidth(pauseGlyph),
			})
		case model.TokenDigit:
			style := correctStyle
			if !tok.Correct {
				style = wrongStyle
			}
			r := rune(tok.Symbol)
			cells = append(cells, styledCell{
				s:     style.Render(string(r)),
				width: runewidth.RuneWidth(r),
			})
		}
	}
	return cells
}

// wrapCells hard-wraps styled cells at the given display width. Digit
// streams have no word boundaries, so wrapping never needs to backtrack.
func wrapCells(cells []styledCell, width int) string {
	var out strings.Builder
	if width <= 0 {
		for _, cell := range cells {
			out.WriteString(cell.s)
		}
		return out.String()
	}
	lineWidth := 0
	for _, cell := range cells {
		w := cell.width
		if w == 0 {
			w = 1
		}
		if lineWidth+w > width && lineWidth > 0 {
			out.WriteRune('\n')
			lineWidth = 0
		}
		out.WriteString(cell.s)
		lineWidth += w
	}
	return out.String()
}
