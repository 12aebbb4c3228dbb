package graph

import (
	"fmt"
	"math"
	"strconv"

	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// DefaultMaxTicks is the number of tick intervals aimed for on an axis.
const DefaultMaxTicks = 5

// Step returns the tick spacing for span: the smallest of 1, 2 or 5 times a
// power of ten giving at most maxTicks intervals.
func Step(span float64, maxTicks int) (float64, error) {
	if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return 0, fmt.Errorf("%w: axis span %g", plot.ErrBadParameter, span)
	}
	if maxTicks < 1 {
		return 0, fmt.Errorf("%w: tick count %d", plot.ErrBadParameter, maxTicks)
	}
	raw := span / float64(maxTicks)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5} {
		if m*mag >= raw*(1-1e-9) {
			return m * mag, nil
		}
	}
	return 10 * mag, nil
}

// Ticks returns the multiples of step within [lo, hi].
func Ticks(lo, hi, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: tick spacing %g", plot.ErrBadParameter, step)
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	const eps = 1e-9
	first := math.Ceil(lo/step - eps)
	last := math.Floor(hi/step + eps)
	var ticks []float64
	for i := first; i <= last; i++ {
		v := i * step
		if v == 0 {
			v = 0 // no -0
		}
		ticks = append(ticks, v)
	}
	return ticks, nil
}

// Widen rounds [lo, hi] outward to multiples of the tick spacing it gets.
// A degenerate range is first opened up around its value; widened reports
// that it had to be.
func Widen(lo, hi float64, maxTicks int) (nlo, nhi, step float64, widened bool, err error) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		d := math.Max(math.Abs(lo)/10, 1)
		lo, hi = lo-d, hi+d
		widened = true
	}
	step, err = Step(hi-lo, maxTicks)
	if err != nil {
		return 0, 0, 0, widened, err
	}
	return math.Floor(lo/step+1e-9) * step, math.Ceil(hi/step-1e-9) * step, step, widened, nil
}

// Format prints a tick value with as many decimals as step needs.
func Format(v, step float64) string {
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == 0 {
		s = strconv.FormatFloat(0, 'f', decimals, 64)
	}
	return s
}
