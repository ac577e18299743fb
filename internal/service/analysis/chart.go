package analysis

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/w-h-a/fred/observation"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type Scale string

const (
	ScaleLinear Scale = "linear"
	ScaleLog    Scale = "log"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 6 * vg.Inch
)

var (
	rawColor    = color.RGBA{B: 255, A: 255}
	linearColor = color.RGBA{R: 255, A: 255}
	logColor    = color.RGBA{G: 160, A: 255}
)

// ParseScale accepts "", "linear" and "log".
func ParseScale(raw string) (Scale, error) {
	switch Scale(raw) {
	case "", ScaleLinear:
		return ScaleLinear, nil
	case ScaleLog:
		return ScaleLog, nil
	default:
		return "", fmt.Errorf("unknown chart scale %q", raw)
	}
}

// ChartName is the file name the CLI writes a chart to.
func ChartName(seriesId string, scale Scale) string {
	if scale == ScaleLog {
		return seriesId + "_log_analysis.png"
	}
	return seriesId + "_analysis.png"
}

// Chart renders data as a PNG line chart over calendar dates with the
// linear or logarithmic fit drawn on top. The fit line is left out when
// the data cannot support one.
func Chart(seriesId string, data []observation.Observation, scale Scale) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoData, seriesId)
	}

	p := plot.New()
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	raw := make(plotter.XYs, len(data))
	days := make([]float64, len(data))
	values := make([]float64, len(data))

	for i, o := range data {
		raw[i].X = float64(o.Date.Unix())
		raw[i].Y = o.Value
		days[i] = o.Date.Sub(data[0].Date).Hours() / 24
		values[i] = o.Value
	}

	rawLine, err := plotter.NewLine(raw)
	if err != nil {
		return nil, err
	}
	rawLine.LineStyle.Color = rawColor
	rawLine.LineStyle.Width = vg.Points(1.5)

	p.Add(rawLine)
	p.Legend.Add(seriesId+" Raw Data", rawLine)
	p.Legend.Top = true

	var (
		fit      Fit
		fitErr   error
		label    string
		lineTint color.Color
		predict  func(day float64) float64
	)

	if scale == ScaleLog {
		p.Title.Text = "Logarithmic Regression Analysis for " + seriesId
		shifted := make([]float64, len(days))
		for i, d := range days {
			shifted[i] = d + 1
		}
		fit, fitErr = Logarithmic(shifted, values)
		label, lineTint = "Logarithmic Regression", logColor
		predict = func(day float64) float64 { return fit.Predict(math.Log(day + 1)) }
	} else {
		p.Title.Text = "Regression Analysis for " + seriesId
		fit, fitErr = Linear(days, values)
		label, lineTint = "Linear Regression", linearColor
		predict = fit.Predict
	}

	if fitErr == nil {
		fitted := make(plotter.XYs, len(data))
		for i := range data {
			fitted[i].X = raw[i].X
			fitted[i].Y = predict(days[i])
		}

		fitLine, err := plotter.NewLine(fitted)
		if err != nil {
			return nil, err
		}
		fitLine.LineStyle.Color = lineTint
		fitLine.LineStyle.Width = vg.Points(1.5)

		p.Add(fitLine)
		p.Legend.Add(label, fitLine)
	}

	w, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
