package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/w-h-a/fred/generator"
	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const SummaryInstructions = "You are a data science expert. Summarize the following detailed statistical analysis results in a clear, professional manner. Comment on trends, variability, and model reliability. Also, compare the different regression analyses."

var ErrNoData = errors.New("no observations for series")

var tracer = otel.Tracer("github.com/w-h-a/fred/internal/service/analysis")

type Request struct {
	SeriesId      string
	From          time.Time
	To            time.Time
	Clean         bool
	Normalize     bool
	MovingAverage int
	Summarize     bool
}

type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type Report struct {
	SeriesId      string `json:"seriesId"`
	From          string `json:"from"`
	To            string `json:"to"`
	Observations  int    `json:"observations"`
	Cleaned       bool   `json:"cleaned"`
	Normalized    bool   `json:"normalized"`
	Stats         Stats  `json:"stats"`
	Linear        *Fit   `json:"linear,omitempty"`
	Polynomials   []Fit  `json:"polynomials"`
	Logarithmic   *Fit   `json:"logarithmic,omitempty"`
	PercentChange *Fit   `json:"percentChange,omitempty"`
	Summary       string `json:"summary,omitempty"`
}

// Prompt renders the report as the text handed to a language model for
// summarizing.
func (r *Report) Prompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Detailed Analysis for FRED Series: %s ===\n", r.SeriesId)
	fmt.Fprintf(&b, "Time Period: %s to %s\n", r.From, r.To)
	fmt.Fprintf(&b, "Number of Observations: %d\n", r.Observations)
	fmt.Fprintf(&b, "Mean: %.4f, Standard Deviation: %.4f, Min: %.4f, Max: %.4f\n\n", r.Stats.Mean, r.Stats.StdDev, r.Stats.Min, r.Stats.Max)

	if r.Linear != nil {
		b.WriteString("-- Linear Regression --\n")
		fmt.Fprintf(&b, "Equation: y = %.4f * (days) + %.4f\n", r.Linear.Coefficients[1], r.Linear.Coefficients[0])
		fmt.Fprintf(&b, "R²: %.4f\n\n", r.Linear.R2)
	}

	if len(r.Polynomials) > 0 {
		fmt.Fprintf(&b, "-- Polynomial Regressions (Orders 1 to %d) --\n", len(r.Polynomials))
		for _, p := range r.Polynomials {
			fmt.Fprintf(&b, "%s: Equation: %s, R²: %.4f\n", p.Model, p.Equation, p.R2)
		}
		b.WriteString("\n")
	}

	if r.Logarithmic != nil {
		b.WriteString("-- Logarithmic Regression --\n")
		fmt.Fprintf(&b, "Equation: y = %.4f * ln(days + 1) + %.4f\n", r.Logarithmic.Coefficients[1], r.Logarithmic.Coefficients[0])
		fmt.Fprintf(&b, "R²: %.4f\n\n", r.Logarithmic.R2)
	}

	if r.PercentChange != nil {
		b.WriteString("-- Percent Change Regression --\n")
		fmt.Fprintf(&b, "Equation: y = %.4f * (index) + %.4f\n", r.PercentChange.Coefficients[1], r.PercentChange.Coefficients[0])
		fmt.Fprintf(&b, "R²: %.4f\n\n", r.PercentChange.R2)
	}

	if r.Cleaned {
		b.WriteString("Note: Invalid values and outliers were removed before analysis.\n")
	}

	if r.Normalized {
		b.WriteString("Note: Values were min-max normalized to [0, 1] before analysis.\n")
	}

	if !r.Cleaned && !r.Normalized {
		b.WriteString("Note: Data was analyzed as raw (without cleaning or normalization).\n")
	}

	return b.String()
}

type Service struct {
	persister persister.Persister
	generator generator.Generator
}

// Analyze fits the regression models to one stored series. A summary is
// requested from the generator only when asked for and one is configured.
func (s *Service) Analyze(ctx context.Context, req Request) (*Report, error) {
	ctx, span := tracer.Start(ctx, "analysis.Analyze")
	defer span.End()

	span.SetAttributes(attribute.String("fred.series", req.SeriesId))

	data, err := s.series(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report := Build(req.SeriesId, data)
	report.Cleaned = req.Clean
	report.Normalized = req.Normalize

	if req.Summarize && s.generator != nil {
		summary, err := s.generator.Generate(ctx, generator.Request{
			System: SummaryInstructions,
			Prompt: report.Prompt(),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		report.Summary = summary
	}

	return report, nil
}

// Chart renders the prepared series with its linear or logarithmic fit as
// a PNG.
func (s *Service) Chart(ctx context.Context, req Request, scale Scale) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "analysis.Chart")
	defer span.End()

	span.SetAttributes(
		attribute.String("fred.series", req.SeriesId),
		attribute.String("fred.scale", string(scale)),
	)

	data, err := s.series(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return Chart(req.SeriesId, data, scale)
}

// series loads one stored series and applies the requested transforms in
// order: date range, per-day aggregation, cleaning, moving average, then
// normalization.
func (s *Service) series(ctx context.Context, req Request) ([]observation.Observation, error) {
	stored, err := s.persister.ListSeries(ctx, req.SeriesId)
	if err != nil {
		return nil, err
	}

	data := AggregateByDate(FilterByDateRange(stored, req.From, req.To))

	if req.Clean {
		data = RemoveOutliers(RemoveInvalid(data))
	}

	if req.MovingAverage > 1 {
		data = MovingAverage(data, req.MovingAverage)
	}

	if req.Normalize {
		data = MinMaxNormalize(data)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoData, req.SeriesId)
	}

	return data, nil
}

// Build computes the statistics and every fit the data supports. Fits
// that cannot be computed, such as a line through a single point, are
// left out.
func Build(seriesId string, data []observation.Observation) *Report {
	report := &Report{
		SeriesId:     seriesId,
		Observations: len(data),
		Polynomials:  []Fit{},
	}

	if len(data) == 0 {
		return report
	}

	report.From = data[0].Day()
	report.To = data[len(data)-1].Day()

	days := make([]float64, len(data))
	shifted := make([]float64, len(data))
	values := make([]float64, len(data))

	for i, o := range data {
		days[i] = o.Date.Sub(data[0].Date).Hours() / 24
		shifted[i] = days[i] + 1
		values[i] = o.Value
	}

	mean, std := stat.MeanStdDev(values, nil)
	report.Stats = Stats{
		Mean:   mean,
		StdDev: finite(std),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}

	if fit, err := Linear(days, values); err == nil {
		report.Linear = &fit
	}

	for order := 1; order <= MaxPolynomialOrder; order++ {
		fit, err := Polynomial(days, values, order)
		if err != nil {
			slog.Debug("skipping polynomial fit", "series", seriesId, "order", order, "error", err)
			break
		}
		report.Polynomials = append(report.Polynomials, fit)
	}

	if fit, err := Logarithmic(shifted, values); err == nil {
		report.Logarithmic = &fit
	}

	changes := PercentChange(data)
	index := make([]float64, len(changes))
	pct := make([]float64, len(changes))
	for i, c := range changes {
		index[i] = float64(i)
		pct[i] = c.Value
	}

	if fit, err := Linear(index, pct); err == nil {
		report.PercentChange = &fit
	}

	return report
}

func New(persister persister.Persister, generator generator.Generator) *Service {
	return &Service{
		persister: persister,
		generator: generator,
	}
}
