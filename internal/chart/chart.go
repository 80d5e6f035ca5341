package chart

import (
	"bytes"
	"sync"
	"time"

	"weekly-digest-bot/internal/types"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
)

var (
	fontOnce sync.Once
	font     *truetype.Font
)

func chartFont() *truetype.Font {
	fontOnce.Do(func() {
		font, _ = chart.GetDefaultFont()
	})
	return font
}

// RenderActivity draws a bar chart of captured messages per day and
// returns PNG bytes ready to send as a photo.
func RenderActivity(counts []types.DayCount) ([]byte, error) {
	if len(counts) == 0 {
		return nil, errors.New("no activity to chart")
	}

	bars := make([]chart.Value, 0, len(counts))
	for _, dc := range counts {
		label := dc.Day
		if t, err := time.Parse("2006-01-02", dc.Day); err == nil {
			label = t.Format("Mon 02")
		}
		bars = append(bars, chart.Value{
			Value: float64(dc.Count),
			Label: label,
		})
	}

	graph := chart.BarChart{
		Title:    "Messages per day",
		Font:     chartFont(),
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "could not render activity chart")
	}
	return buf.Bytes(), nil
}
