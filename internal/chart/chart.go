// Package chart draws a static bar chart of the resolved populations.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"asean-population/internal/choropleth"
	"asean-population/internal/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	Width  = 12 * vg.Inch
	Height = 6 * vg.Inch
)

// New builds the bar chart. It shares the map's empty-input precondition.
func New(rs models.ResultSet, title string) (*plot.Plot, error) {
	if len(rs) == 0 {
		return nil, choropleth.ErrEmptyResultSet
	}
	if title == "" {
		title = choropleth.DefaultTitle
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Negara"
	p.Y.Label.Text = "Penduduk (juta)"

	values := make(plotter.Values, len(rs))
	for i, r := range rs {
		values[i] = r.PopulationMillions
	}

	bars, err := plotter.NewBarChart(values, vg.Points(28))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 33, G: 113, B: 181, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(rs.Names()...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.YAlign = draw.YTop
	p.X.Tick.Label.XAlign = draw.XRight
	p.Y.Min = 0

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    barTops(values),
		Labels: valueLabels(values),
	})
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	p.Add(labels)
	p.Add(plotter.NewGrid())

	return p, nil
}

// WritePNG renders the chart as PNG into w.
func WritePNG(w io.Writer, rs models.ResultSet, title string) error {
	p, err := New(rs, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func barTops(values plotter.Values) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	return xys
}

func valueLabels(values plotter.Values) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%.1f", v)
	}
	return out
}
