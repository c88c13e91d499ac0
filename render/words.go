package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sdg-dashboard/models"
)

// ErrNoWords is returned when there is nothing to draw.
var ErrNoWords = errors.New("render: no words to draw")

var wordBarColor = drawing.ColorFromHex("4F46E5")

// WordBars renders word frequencies as a PNG bar chart, most frequent first.
func WordBars(w io.Writer, title string, words []models.WordWeight) error {
	if len(words) == 0 {
		return ErrNoWords
	}

	top := 0
	bars := make([]chart.Value, len(words))
	for i, ww := range words {
		bars[i] = chart.Value{
			Label: ww.Word,
			Value: float64(ww.Count),
			Style: chart.Style{FillColor: wordBarColor, StrokeColor: wordBarColor},
		}
		top = max(top, ww.Count)
	}

	width := 120 + 48*len(words)
	bc := chart.BarChart{
		Title:      title,
		Width:      max(width, 480),
		Height:     420,
		BarWidth:   32,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render: word chart: %w", err)
	}
	return nil
}

// SaveWordBars writes WordBars output to path.
func SaveWordBars(path, title string, words []models.WordWeight) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("render: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %q: %w", path, err)
	}
	if err := WordBars(f, title, words); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
