package ratinghttp

import (
	"bytes"
	"math"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors of rendered charts.
type ChartPalette struct {
	Background drawing.Color
	TextColor  drawing.Color
	Tiers      map[ratingdomain.Tier]drawing.Color
}

// DefaultPalette colors each bar by the runner's tier.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("1e1f22"),
	TextColor:  drawing.ColorFromHex("f2f3f5"),
	Tiers: map[ratingdomain.Tier]drawing.Color{
		ratingdomain.TierBronze:      drawing.ColorFromHex("cd7f32"),
		ratingdomain.TierSilver:      drawing.ColorFromHex("c0c0c0"),
		ratingdomain.TierGold:        drawing.ColorFromHex("ffd700"),
		ratingdomain.TierPlatinum:    drawing.ColorFromHex("5fd3d9"),
		ratingdomain.TierDiamond:     drawing.ColorFromHex("7aa7ff"),
		ratingdomain.TierMaster:      drawing.ColorFromHex("b57edc"),
		ratingdomain.TierGrandmaster: drawing.ColorFromHex("e8464a"),
		ratingdomain.TierUsainBolt:   drawing.ColorFromHex("fff44f"),
	},
}

const (
	chartWidth    = 900
	chartHeight   = 450
	chartBarWidth = 40
	// chartMinTop keeps an all-zero board drawable.
	chartMinTop = 100.0
)

// RenderLeaderboardChart draws one bar per runner, highest RR first.
func RenderLeaderboardChart(entries []ratingservice.LeaderboardEntry, palette ChartPalette) ([]byte, error) {
	if len(entries) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	top := chartMinTop
	bars := make([]chart.Value, len(entries))
	for i, e := range entries {
		top = math.Max(top, float64(e.RatingPoints))
		bars[i] = chart.Value{
			Label: e.DisplayName,
			Value: float64(e.RatingPoints),
			Style: chart.Style{
				FillColor:   palette.Tiers[e.Tier.Tier],
				StrokeColor: palette.Tiers[e.Tier.Tier],
			},
		}
	}

	graph := chart.BarChart{
		Title:      "Run Rating",
		TitleStyle: chart.Style{FontColor: palette.TextColor},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   chartBarWidth,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(top * 1.1)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws a single empty bar captioned with a message.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	graph := chart.BarChart{
		Title:      "No runners yet",
		TitleStyle: chart.Style{FontColor: palette.TextColor},
		Width:      400,
		Height:     200,
		BarWidth:   chartBarWidth,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{Min: 0, Max: chartMinTop},
		},
		Bars: []chart.Value{{Label: "-", Value: 0}},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
