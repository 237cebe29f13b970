package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 7
	terminalWidthBackup = 80
)

// PlotSeries renders a single-series text plot with a labelled y axis.
// A non-positive width sizes the plot to the terminal.
func PlotSeries(w io.Writer, title string, values []float64, width, height int) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = terminalWidth() - axisLabelWidth
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	values = resample(values, width)
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}

	cells := make([][]byte, height)
	for i := range cells {
		cells[i] = []byte(strings.Repeat(" ", width))
	}
	for x, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		y := height - 1 - int(math.Round(pos*float64(height-1)))
		cells[y][x] = '*'
	}

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for i, row := range cells {
		label := ""
		switch i {
		case 0:
			label = fmt.Sprintf("%.1f", maxVal)
		case height - 1:
			label = fmt.Sprintf("%.1f", minVal)
		}
		if _, err := fmt.Fprintf(w, "%*s │ %s\n", axisLabelWidth-3, label, string(row)); err != nil {
			return err
		}
	}
	return nil
}

// resample stretches or shrinks values to exactly width points.
func resample(values []float64, width int) []float64 {
	if len(values) == width {
		out := make([]float64, width)
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	if len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		if hi >= len(values) {
			hi = len(values) - 1
		}
		frac := pos - float64(lo)
		out[i] = values[lo]*(1-frac) + values[hi]*frac
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
