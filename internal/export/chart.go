// Package export renders run outputs as image files.
package export

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/drivenpend/internal/series"
)

// MaxPoints bounds the number of vertices drawn per line.
const MaxPoints = 4000

var (
	signalColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	noiseColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

type ChartOptions struct {
	Title    string
	WidthIn  float64
	HeightIn float64
	DPI      int
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Title:    "Driven double pendulum",
		WidthIn:  8,
		HeightIn: 6,
		DPI:      300,
	}
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)

	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)

	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)
	p.X.Tick.Marker = limitedTicker(8, "%.2f")
	p.Y.Tick.Marker = limitedTicker(8, "%.3g")

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
}

// points converts s to plotter data, dropping non-finite samples which
// the plotter rejects.
func points(s series.Series) plotter.XYs {
	s = s.Decimate(MaxPoints)
	pts := make(plotter.XYs, 0, len(s))
	for _, p := range s {
		if math.IsNaN(p.V) || math.IsInf(p.V, 0) || math.IsNaN(p.T) || math.IsInf(p.T, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: p.T, Y: p.V})
	}
	return pts
}

// Chart builds a single plot with the signal and noise sequences.
func Chart(signal, noise series.Series, opts ChartOptions) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "displacement"
	stylePlot(p)

	lines := []struct {
		name  string
		s     series.Series
		color color.Color
	}{
		{"dati", signal, signalColor},
		{"rumore", noise, noiseColor},
	}

	drawn := 0
	for _, l := range lines {
		pts := points(l.s)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", l.name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = l.color
		p.Add(line)
		p.Legend.Add(l.name, line)
		drawn++
	}
	if drawn == 0 {
		return nil, fmt.Errorf("no finite samples to plot")
	}
	return p, nil
}

func savePlotPNG(p *plot.Plot, opts ChartOptions, filename string) error {
	w := vg.Length(opts.WidthIn) * vg.Inch
	h := vg.Length(opts.HeightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func savePlotSVG(p *plot.Plot, opts ChartOptions, filename string) error {
	c := vgsvg.New(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create svg: %w", err)
	}
	defer f.Close()

	if _, err := c.WriteTo(f); err != nil {
		return fmt.Errorf("cannot write svg: %w", err)
	}
	return nil
}

// SaveChart writes the chart to filename. The format follows the file
// extension: ".svg" gives SVG, anything else PNG.
func SaveChart(filename string, signal, noise series.Series, opts ChartOptions) error {
	if opts.DPI <= 0 {
		opts.DPI = DefaultChartOptions().DPI
	}
	if opts.WidthIn <= 0 || opts.HeightIn <= 0 {
		def := DefaultChartOptions()
		opts.WidthIn, opts.HeightIn = def.WidthIn, def.HeightIn
	}

	p, err := Chart(signal, noise, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	if strings.EqualFold(filepath.Ext(filename), ".svg") {
		return savePlotSVG(p, opts, filename)
	}
	return savePlotPNG(p, opts, filename)
}
