package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/dynamicdevices/xm125-analyzer/internal/analysis"
)

var (
	seriesBlue = color.RGBA{B: 255, A: 255}
	seriesRed  = color.RGBA{R: 200, A: 255}
	refGreen   = color.RGBA{G: 160, A: 255}
	refAmber   = color.RGBA{R: 220, G: 160, A: 255}
)

// SaveRangePlot renders the two range performance charts stacked in one PNG:
// detection success rate vs distance and distance error vs distance, each
// with dashed reference lines. Returns the written path.
func SaveRangePlot(rep *analysis.Report, th analysis.Thresholds) (string, error) {
	distances := rep.RangeDistances()
	if len(distances) == 0 {
		return "", fmt.Errorf("no range results to plot")
	}

	successPlot, err := successRatePlot(rep, th, distances)
	if err != nil {
		return "", err
	}
	errorPlot, err := distanceErrorPlot(rep, th, distances)
	if err != nil {
		return "", err
	}

	img := vgimg.New(vg.Points(600), vg.Points(800))
	dc := draw.New(img)
	rows := [][]*plot.Plot{{successPlot}, {errorPlot}}
	canvases := plot.Align(rows, draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Points(12)}, dc)
	successPlot.Draw(canvases[0][0])
	errorPlot.Draw(canvases[1][0])

	path := filepath.Join(rep.TestDir, PlotFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return "", fmt.Errorf("failed to write plot: %w", err)
	}
	return path, nil
}

func successRatePlot(rep *analysis.Report, th analysis.Thresholds, distances []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "XM125 Detection Success Rate vs Distance"
	p.X.Label.Text = "Distance (m)"
	p.Y.Label.Text = "Detection Success Rate (%)"
	p.Y.Min, p.Y.Max = 0, 100
	p.Add(plotter.NewGrid())

	addReferenceLine(p, distances, th.TargetSuccessRate, refGreen,
		fmt.Sprintf("Target (%.0f%%)", th.TargetSuccessRate))
	addReferenceLine(p, distances, th.MinSuccessRate, refAmber,
		fmt.Sprintf("Minimum (%.0f%%)", th.MinSuccessRate))

	pts := make(plotter.XYs, 0, len(distances))
	for _, d := range distances {
		pts = append(pts, plotter.XY{X: d, Y: rep.Range[d].SuccessRate})
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create success rate series: %w", err)
	}
	line.Color = seriesBlue
	line.LineStyle.Width = vg.Points(1.5)
	points.Shape = draw.CircleGlyph{}
	points.Color = seriesBlue
	p.Add(line, points)
	p.Legend.Add("Success rate", line, points)
	p.Legend.Top = true
	return p, nil
}

func distanceErrorPlot(rep *analysis.Report, th analysis.Thresholds, distances []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "XM125 Distance Measurement Accuracy"
	p.X.Label.Text = "Distance (m)"
	p.Y.Label.Text = "Distance Error (m)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	addReferenceLine(p, distances, th.TargetDistanceError, refGreen,
		fmt.Sprintf("Target (±%.1fm)", th.TargetDistanceError))

	// Undefined errors (buckets with no detections) stay off the chart.
	pts := make(plotter.XYs, 0, len(distances))
	for _, d := range distances {
		if res := rep.Range[d]; res.DistanceErrorDefined {
			pts = append(pts, plotter.XY{X: d, Y: res.DistanceError})
		}
	}
	if len(pts) > 0 {
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create distance error series: %w", err)
		}
		line.Color = seriesRed
		line.LineStyle.Width = vg.Points(1.5)
		points.Shape = draw.CircleGlyph{}
		points.Color = seriesRed
		p.Add(line, points)
		p.Legend.Add("Distance error", line, points)
	}
	p.Legend.Top = true
	return p, nil
}

// addReferenceLine draws a dashed horizontal threshold line across the
// plotted distance span.
func addReferenceLine(p *plot.Plot, distances []float64, y float64, c color.Color, label string) {
	xmin, xmax := distances[0], distances[len(distances)-1]
	if xmin == xmax {
		xmin, xmax = xmin-0.5, xmax+0.5
	}
	line, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: y}, {X: xmax, Y: y}})
	if err != nil {
		return
	}
	line.Color = c
	line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(line)
	p.Legend.Add(label, line)
}
