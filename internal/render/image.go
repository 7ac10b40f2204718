package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"gastos/internal/chart"
)

const (
	// cutout is the inner radius as a fraction of the outer radius.
	cutout = 0.5

	DefaultWidth  = 4 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// imageFormats lists the encodings accepted by plot.WriterTo.
var imageFormats = map[string]bool{
	"svg": true, "png": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// Image draws doughnut configurations with gonum/plot.
type Image struct {
	Format string
	Width  vg.Length
	Height vg.Length
}

// NewPlot turns cfg into a gonum plot: one doughnut plotter plus a legend
// entry per segment.
func NewPlot(cfg chart.Config) (*plot.Plot, error) {
	if cfg.Type != chart.KindDoughnut {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, cfg.Type)
	}
	if len(cfg.Data.Datasets) == 0 {
		return nil, ErrNoDataset
	}
	ds := cfg.Data.Datasets[0]
	if len(ds.Data) != len(cfg.Data.Labels) {
		return nil, fmt.Errorf("dataset has %d values for %d labels", len(ds.Data), len(cfg.Data.Labels))
	}

	fills := ds.BackgroundColor
	if len(fills) == 0 {
		fills = chart.Colors(len(ds.Data))
	}
	colors := make([]color.Color, len(ds.Data))
	for i := range ds.Data {
		c, err := parseHexColor(fills[i%len(fills)])
		if err != nil {
			return nil, err
		}
		colors[i] = c
	}

	p := plot.New()
	p.HideAxes()
	if t := cfg.Options.Plugins.Title; t.Display {
		p.Title.Text = t.Text
	}

	d := &doughnut{
		values:  ds.Data,
		colors:  colors,
		border:  draw.LineStyle{Color: color.White, Width: vg.Points(float64(ds.BorderWidth))},
		legend:  cfg.Options.Plugins.Legend.Position,
		entries: len(cfg.Data.Labels),
		longest: longestLabel(cfg.Data.Labels),
	}
	p.Add(d)

	placeLegend(&p.Legend, d.legend)
	for i, label := range cfg.Data.Labels {
		p.Legend.Add(label, swatch{color: colors[i]})
	}
	return p, nil
}

// Draw writes cfg to w in the image's format.
func (img Image) Draw(ctx context.Context, w io.Writer, cfg chart.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format := img.Format
	if !imageFormats[format] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	width, height := img.Width, img.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	p, err := NewPlot(cfg)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("create plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

func placeLegend(l *plot.Legend, position string) {
	switch position {
	case chart.LegendTop:
		l.Top = true
	case chart.LegendLeft:
		l.Left = true
	case chart.LegendRight:
		l.Left = false
	default:
		l.Top = false
	}
}

func longestLabel(labels []string) int {
	n := 0
	for _, l := range labels {
		if r := len([]rune(l)); r > n {
			n = r
		}
	}
	return n
}

// doughnut implements plot.Plotter. Segments start at twelve o'clock and run
// clockwise.
type doughnut struct {
	values  []float64
	colors  []color.Color
	border  draw.LineStyle
	legend  string
	entries int
	longest int
}

func (d *doughnut) Plot(c draw.Canvas, plt *plot.Plot) {
	var total float64
	for _, v := range d.values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return
	}

	area := d.area(c, plt)
	center := vg.Point{X: (area.Min.X + area.Max.X) / 2, Y: (area.Min.Y + area.Max.Y) / 2}
	size := area.Size()
	outer := vg.Length(math.Min(float64(size.X), float64(size.Y))) / 2
	if outer <= 0 {
		return
	}
	inner := outer * cutout

	start := math.Pi / 2
	for i, v := range d.values {
		if v <= 0 {
			continue
		}
		sweep := 2 * math.Pi * v / total
		path := segment(center, outer, inner, start, sweep)

		c.SetColor(d.colors[i])
		c.Fill(path)
		if d.border.Width > 0 {
			c.SetLineStyle(d.border)
			c.Stroke(path)
		}
		start -= sweep
	}
}

// area shrinks the canvas on the legend's side so segments and legend do not overlap.
func (d *doughnut) area(c draw.Canvas, plt *plot.Plot) vg.Rectangle {
	r := c.Rectangle
	fontSize := vg.Length(plt.Legend.TextStyle.Font.Size)
	if fontSize <= 0 {
		fontSize = vg.Points(12)
	}
	rows := vg.Length(d.entries)*(fontSize*1.2+plt.Legend.Padding) + fontSize
	cols := vg.Length(d.longest)*fontSize*0.6 + plt.Legend.ThumbnailWidth + 2*fontSize

	switch d.legend {
	case chart.LegendTop:
		r.Max.Y -= rows
	case chart.LegendLeft:
		r.Min.X += cols
	case chart.LegendRight:
		r.Max.X -= cols
	default:
		r.Min.Y += rows
	}
	if r.Max.Y < r.Min.Y {
		r.Max.Y = r.Min.Y
	}
	if r.Max.X < r.Min.X {
		r.Max.X = r.Min.X
	}
	return r
}

// segment returns the closed outline of one ring segment.
func segment(center vg.Point, outer, inner vg.Length, start, sweep float64) vg.Path {
	var p vg.Path
	p.Move(vg.Point{
		X: center.X + outer*vg.Length(math.Cos(start)),
		Y: center.Y + outer*vg.Length(math.Sin(start)),
	})
	p.Arc(center, outer, start, -sweep)
	p.Line(vg.Point{
		X: center.X + inner*vg.Length(math.Cos(start-sweep)),
		Y: center.Y + inner*vg.Length(math.Sin(start-sweep)),
	})
	p.Arc(center, inner, start-sweep, sweep)
	p.Close()
	return p
}

// swatch is the legend thumbnail for one segment.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, pts)
}
