package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/w-h-a/fred/errs"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const MaxPolynomialOrder = 10

// Fit is a least squares model. Coefficients are in ascending power of
// the independent variable, so a line is [intercept, slope].
type Fit struct {
	Model        string    `json:"model"`
	Coefficients []float64 `json:"coefficients"`
	Equation     string    `json:"equation"`
	R2           float64   `json:"r2"`
}

func (f Fit) Predict(x float64) float64 {
	y := 0.0
	for i := len(f.Coefficients) - 1; i >= 0; i-- {
		y = y*x + f.Coefficients[i]
	}
	return y
}

// Linear fits y = a*x + b.
func Linear(xs, ys []float64) (Fit, error) {
	if err := checkPoints(xs, ys, 2); err != nil {
		return Fit{}, err
	}

	if stat.Variance(xs, nil) == 0 {
		return Fit{}, errs.Format("linear regression needs at least two distinct x values")
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	return Fit{
		Model:        "Linear Regression",
		Coefficients: []float64{alpha, beta},
		Equation:     fmt.Sprintf("y = %.4f * x + %.4f", beta, alpha),
		R2:           finite(stat.RSquared(xs, ys, nil, alpha, beta)),
	}, nil
}

// Logarithmic fits y = a*ln(x) + b. Every x must be positive.
func Logarithmic(xs, ys []float64) (Fit, error) {
	if err := checkPoints(xs, ys, 2); err != nil {
		return Fit{}, err
	}

	lx := make([]float64, len(xs))
	for i, x := range xs {
		if x <= 0 {
			return Fit{}, errs.Format("logarithmic regression needs positive x, got %v", x)
		}
		lx[i] = math.Log(x)
	}

	line, err := Linear(lx, ys)
	if err != nil {
		return Fit{}, err
	}

	a, b := line.Coefficients[1], line.Coefficients[0]

	return Fit{
		Model:        "Logarithmic Regression",
		Coefficients: line.Coefficients,
		Equation:     fmt.Sprintf("y = %.4f * ln(x) + %.4f", a, b),
		R2:           line.R2,
	}, nil
}

// Polynomial fits a polynomial of the given order by least squares. The
// coefficients apply to x itself; the solve runs on x scaled to [0, 1]
// to keep the Vandermonde matrix conditioned.
func Polynomial(xs, ys []float64, order int) (Fit, error) {
	if order < 1 || order > MaxPolynomialOrder {
		return Fit{}, errs.Format("polynomial order %d out of range 1..%d", order, MaxPolynomialOrder)
	}

	if err := checkPoints(xs, ys, order+1); err != nil {
		return Fit{}, err
	}

	scale := 0.0
	for _, x := range xs {
		scale = math.Max(scale, math.Abs(x))
	}
	if scale == 0 {
		return Fit{}, errs.Format("polynomial regression needs at least two distinct x values")
	}

	n, cols := len(xs), order+1

	a := mat.NewDense(n, cols, nil)
	for i, x := range xs {
		t := x / scale
		p := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}

	var c mat.VecDense
	if err := c.SolveVec(a, mat.NewVecDense(n, append([]float64(nil), ys...))); err != nil {
		return Fit{}, errs.Format("polynomial order %d: %v", order, err)
	}

	coefficients := make([]float64, cols)
	for j := range coefficients {
		coefficients[j] = c.AtVec(j) / math.Pow(scale, float64(j))
	}

	fit := Fit{
		Model:        fmt.Sprintf("Polynomial Regression (order %d)", order),
		Coefficients: coefficients,
		Equation:     polynomialEquation(coefficients),
	}

	estimates := make([]float64, n)
	for i, x := range xs {
		estimates[i] = fit.Predict(x)
	}
	fit.R2 = finite(stat.RSquaredFrom(estimates, ys, nil))

	return fit, nil
}

func checkPoints(xs, ys []float64, need int) error {
	if len(xs) != len(ys) {
		return errs.Format("regression has %d x values and %d y values", len(xs), len(ys))
	}
	if len(xs) < need {
		return errs.Format("regression needs at least %d points, got %d", need, len(xs))
	}
	return nil
}

func polynomialEquation(coefficients []float64) string {
	terms := make([]string, 0, len(coefficients))
	for p := len(coefficients) - 1; p >= 0; p-- {
		switch p {
		case 0:
			terms = append(terms, fmt.Sprintf("%.4g", coefficients[p]))
		case 1:
			terms = append(terms, fmt.Sprintf("%.4gx", coefficients[p]))
		default:
			terms = append(terms, fmt.Sprintf("%.4gx^%d", coefficients[p], p))
		}
	}
	return "y = " + strings.Join(terms, " + ")
}

// finite maps the undefined R² of a constant series to zero so reports
// stay encodable.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
