package tui

import (
	"strings"
	"testing"

	"github.com/recitar-dev/recitar/internal/model"
)

func plainCells(s string) []styledCell {
	cells := make([]styledCell, 0, len(s))
	for _, r := range s {
		cells = append(cells, styledCell{s: string(r), width: 1})
	}
	return cells
}

func TestWrapCells(t *testing.T) {
	got := wrapCells(plainCells("314159"), 4)
	if got != "3141\n59" {
		t.Fatalf("got %q", got)
	}
}

func TestWrapCellsNoWidth(t *testing.T) {
	got := wrapCells(plainCells("314"), 0)
	if got != "314" {
		t.Fatalf("got %q", got)
	}
}

func TestWrapCellsNarrow(t *testing.T) {
	got := wrapCells(plainCells("31"), 1)
	if got != "3\n1" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildTranscriptCells(t *testing.T) {
	tokens := []model.Token{
		model.DigitToken('3', true),
		model.PauseToken(),
		model.DigitToken('9', false),
	}
	cells := buildTranscriptCells(tokens)
	if len(cells) != 3 {
		t.Fatalf("got %d cells, want 3", len(cells))
	}
	if !strings.Contains(cells[0].s, "3") {
		t.Fatalf("first cell should render '3': %q", cells[0].s)
	}
	if !strings.Contains(cells[1].s, string(pauseGlyph)) {
		t.Fatalf("second cell should render the pause glyph: %q", cells[1].s)
	}
	if !strings.Contains(cells[2].s, "9") {
		t.Fatalf("third cell should render '9': %q", cells[2].s)
	}
	for i, cell := range cells {
		if cell.width != 1 {
			t.Fatalf("cell %d width = %d, want 1", i, cell.width)
		}
	}
}
