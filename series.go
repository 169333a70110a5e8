package hyperg

import (
	"math"

	"github.com/soypat/hyperg/scaled"
)

// A termGenerator produces the successive terms of a hypergeometric
// series, advancing one step per call through a rational
// multiplicative update.
type termGenerator interface {
	next() float64
}

// term0F1 generates the Taylor terms of 0F1(; b; z).
type term0F1 struct {
	n    int
	term float64
	b, z float64
}

func newTerm0F1(b, z float64) *term0F1 { return &term0F1{term: 1, b: b, z: z} }

func (t *term0F1) next() float64 {
	r := t.term
	n := float64(t.n)
	t.term *= 1 / ((t.b + n) * (n + 1)) * t.z
	t.n++
	return r
}

// term1F0 generates the Taylor terms of 1F0(a; ; z).
type term1F0 struct {
	n    int
	term float64
	a, z float64
}

func newTerm1F0(a, z float64) *term1F0 { return &term1F0{term: 1, a: a, z: z} }

func (t *term1F0) next() float64 {
	r := t.term
	n := float64(t.n)
	t.term *= (t.a + n) / (n + 1) * t.z
	t.n++
	return r
}

// term1F1 generates the Taylor terms of 1F1(a; b; z).
type term1F1 struct {
	n       int
	term    float64
	a, b, z float64
}

func newTerm1F1(a, b, z float64) *term1F1 { return &term1F1{term: 1, a: a, b: b, z: z} }

func (t *term1F1) next() float64 {
	r := t.term
	n := float64(t.n)
	t.term *= (t.a + n) / ((t.b + n) * (n + 1)) * t.z
	t.n++
	return r
}

// term1F2 generates the Taylor terms of 1F2(a; b1, b2; z).
type term1F2 struct {
	n         int
	term      float64
	a, b1, b2 float64
	z         float64
}

func newTerm1F2(a, b1, b2, z float64) *term1F2 {
	return &term1F2{term: 1, a: a, b1: b1, b2: b2, z: z}
}

func (t *term1F2) next() float64 {
	r := t.term
	n := float64(t.n)
	t.term *= (t.a + n) / ((t.b1 + n) * (t.b2 + n) * (n + 1)) * t.z
	t.n++
	return r
}

// term2F0 generates the Taylor terms of 2F0(a1, a2; ; z).
type term2F0 struct {
	n      int
	term   float64
	a1, a2 float64
	z      float64
}

func newTerm2F0(a1, a2, z float64) *term2F0 {
	return &term2F0{term: 1, a1: a1, a2: a2, z: z}
}

func (t *term2F0) next() float64 {
	r := t.term
	n := float64(t.n)
	t.term *= (t.a1 + n) * (t.a2 + n) / (n + 1) * t.z
	t.n++
	return r
}

// term2F1 generates the Taylor terms of 2F1(a1, a2; b; z).
type term2F1 struct {
	n         int
	term      float64
	a1, a2, b float64
	z         float64
}

func newTerm2F1(a1, a2, b, z float64) *term2F1 {
	return &term2F1{term: 1, a1: a1, a2: a2, b: b, z: z}
}

func (t *term2F1) next() float64 {
	r := t.term
	n := float64(t.n)
	t.term *= (t.a1 + n) * (t.a2 + n) / ((t.b + n) * (n + 1)) * t.z
	t.n++
	return r
}

// sumSeries accumulates terms until the relative increment falls below
// eps. It does not renormalize: callers use it only in regimes where
// the sum stays inside the float64 range. Series that terminate (a
// zero term) exit through the same test.
func sumSeries(g termGenerator, eps float64, maxIter int) (float64, error) {
	var sum float64
	for n := 0; ; n++ {
		term := g.next()
		sum += term
		if math.Abs(term) <= eps*math.Abs(sum) {
			return sum, nil
		}
		if n > maxIter {
			return sum, &EvaluationError{Kind: KindNoConvergence, Msg: "series did not converge within the iteration budget", Best: sum}
		}
	}
}

// sumSeriesScaled accumulates terms with the scaled-accumulator
// renormalization, so the running sum may traverse magnitudes beyond
// the float64 exponent range. The shift is credited to *scale. The
// running term held by a 0F1 generator is rescaled together with the
// sum; other generators are not rescaled, so their terms must stay
// inside the float64 range.
func sumSeriesScaled(g termGenerator, cfg Config, scale *int) (float64, error) {
	var sum, term float64
	for n := 0; ; n++ {
		term = g.next()
		sum += term
		before := *scale
		scaled.Normalize(&sum, &term, scale)
		if t, ok := g.(*term0F1); ok {
			if *scale > before {
				t.term /= scaled.Factor
			} else if *scale < before {
				t.term *= scaled.Factor
			}
		}
		if math.Abs(term) <= cfg.Epsilon*math.Abs(sum) {
			return sum, nil
		}
		if n > cfg.MaxIterations {
			return sum, &EvaluationError{Kind: KindNoConvergence, Msg: "series did not converge within the iteration budget", Best: sum}
		}
	}
}

// series1F1Scaled sums the 1F1 Taylor series directly, renormalizing
// the accumulator so the sum survives transits far outside the
// exponent range. Only the dispatcher and the evaluators it routes to
// call it, in regions where the series is non-divergent.
func series1F1Scaled(a, b, z float64, cfg Config, scale *int) (float64, error) {
	var sum float64
	term := 1.0
	for n := 0; ; n++ {
		sum += term
		scaled.Normalize(&sum, &term, scale)
		fn := float64(n)
		term *= (a + fn) / ((b + fn) * (fn + 1)) * z
		if n > cfg.MaxIterations {
			return sum, &EvaluationError{Kind: KindNoConvergence, Msg: "1F1 series did not converge within the iteration budget", Best: sum}
		}
		if math.Abs(term) <= cfg.Epsilon*math.Abs(sum) {
			return sum, nil
		}
	}
}

// checkedSeries1F1 is series1F1Scaled with a cancellation monitor: it
// tracks the largest partial sum seen and fails when the final result
// is smaller by more than a factor 1/epsilon, since every bit of such
// a result is noise.
func checkedSeries1F1(a, b, z float64, cfg Config, scale *int) (float64, error) {
	start := *scale
	var sum float64
	term := 1.0
	maxLog := math.Inf(-1)
	for n := 0; ; n++ {
		sum += term
		scaled.Normalize(&sum, &term, scale)
		if l := math.Log(math.Abs(sum)) + float64(*scale-start); l > maxLog {
			maxLog = l
		}
		fn := float64(n)
		term *= (a + fn) / ((b + fn) * (fn + 1)) * z
		if n > cfg.MaxIterations {
			return sum, &EvaluationError{Kind: KindNoConvergence, Msg: "1F1 series did not converge within the iteration budget", Best: sum}
		}
		if math.Abs(term) <= cfg.Epsilon*math.Abs(sum) {
			break
		}
	}
	if maxLog-(math.Log(math.Abs(sum))+float64(*scale-start)) > -math.Log(cfg.Epsilon) {
		return sum, &EvaluationError{
			Kind: KindCancellation,
			Msg:  "cancellation is so severe that no bits in the result are correct",
			Best: sum,
		}
	}
	return sum, nil
}
