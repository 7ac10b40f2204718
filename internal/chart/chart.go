// Package chart builds the doughnut chart configuration for categorized
// expense totals. The JSON shape matches what Chart.js expects, so the same
// value can be handed to the browser or to a server-side renderer.
package chart

import (
	"context"

	"gastos/internal/core"
)

const (
	KindDoughnut = "doughnut"

	DatasetLabel = "Gastos por Categoría"
	TitleText    = "Distribución de Gastos"

	LegendTop    = "top"
	LegendBottom = "bottom"
	LegendLeft   = "left"
	LegendRight  = "right"

	DefaultBorderWidth = 1
)

// palette is the fixed segment color order.
var palette = [...]string{
	"#3b82f6", // blue
	"#10b981", // green
	"#f59e0b", // amber
	"#ef4444", // red
	"#8b5cf6", // violet
	"#6b7280", // gray
}

type (
	Config struct {
		Type    string  `json:"type"`
		Data    Data    `json:"data"`
		Options Options `json:"options"`
	}

	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
	}

	Dataset struct {
		Label           string    `json:"label"`
		Data            []float64 `json:"data"`
		BackgroundColor []string  `json:"backgroundColor"`
		BorderWidth     int       `json:"borderWidth"`
	}

	Options struct {
		Responsive bool    `json:"responsive"`
		Plugins    Plugins `json:"plugins"`
	}

	Plugins struct {
		Legend Legend `json:"legend"`
		Title  Title  `json:"title"`
	}

	Legend struct {
		Position string `json:"position"`
	}

	Title struct {
		Display bool   `json:"display"`
		Text    string `json:"text"`
	}
)

// Renderer draws a chart configuration onto the drawing surface it is bound to.
type Renderer interface {
	Render(ctx context.Context, cfg Config) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, cfg Config) error

func (f RendererFunc) Render(ctx context.Context, cfg Config) error { return f(ctx, cfg) }

// Palette returns a copy of the segment colors in order.
func Palette() []string {
	out := make([]string, len(palette))
	copy(out, palette[:])
	return out
}

// Colors returns one color per segment. Segments beyond the palette size reuse
// the palette from the start, so segment i gets palette[i mod 6].
func Colors(n int) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// NewDoughnut builds the doughnut configuration for d.
func NewDoughnut(d core.ChartData) Config {
	labels := append([]string(nil), d.Labels...)
	values := append([]float64(nil), d.Data...)

	return Config{
		Type: KindDoughnut,
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           DatasetLabel,
				Data:            values,
				BackgroundColor: Colors(len(labels)),
				BorderWidth:     DefaultBorderWidth,
			}},
		},
		Options: Options{
			Responsive: true,
			Plugins: Plugins{
				Legend: Legend{Position: LegendBottom},
				Title:  Title{Display: true, Text: TitleText},
			},
		},
	}
}

// Segments returns the number of segments drawn by the first dataset.
func (c Config) Segments() int {
	if len(c.Data.Datasets) == 0 {
		return 0
	}
	return len(c.Data.Datasets[0].Data)
}
