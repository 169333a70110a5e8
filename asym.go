package hyperg

import "math"

// asymRegion reports whether the large-|z| expansion reaches full
// precision before its divergent tail resumes growing. The 2F0 term
// ratio (p+s)(q+s)/((s+1)|z|) is endpoint-maximal on [0, 38]; keeping
// both endpoints under 0.35 guarantees the series crosses float64
// epsilon within 38 strictly shrinking terms. Negative-integer a (or
// b−a for z < 0) puts the gamma prefactor at a pole and the dominant
// branch vanishes, so those stay out.
func asymRegion(a, b, z float64) bool {
	absz := math.Abs(z)
	if absz < 50 {
		return false
	}
	if z > 0 && a <= 0 && a == math.Floor(a) {
		return false
	}
	if c := b - a; z < 0 && c <= 0 && c == math.Floor(c) {
		return false
	}
	p, q := math.Abs(b-a), math.Abs(1-a)
	if z < 0 {
		p, q = math.Abs(a), math.Abs(a-b+1)
	}
	const k = 38
	return p*q < 0.35*absz && (p+k)*(q+k) < 0.35*(k+1)*absz
}

// asymLargeZ evaluates M(a, b, z) from the asymptotic expansion
//
//	M(a,b,z) ~ Γ(b)/Γ(a) · e^z z^{a−b} · 2F0(b−a, 1−a; 1/z),  z → +∞,
//
// applying Kummer's transformation first when z is negative. The tail
// is divergent: when the terms stop decreasing before reaching the
// target precision the evaluator soft-fails and the dispatcher
// restores the log-scale and moves on.
func asymLargeZ(a, b, z float64, cfg Config, scale *int) (float64, error) {
	if z < 0 {
		k := itrunc(z)
		r, err := asymLargeZ(b-a, b, -z, cfg, scale)
		if err != nil {
			return r, err
		}
		*scale += k
		return r * math.Exp(z-float64(k)), nil
	}
	lgb, sgb := math.Lgamma(b)
	lga, sga := math.Lgamma(a)
	lp := z + (a-b)*math.Log(z) + lgb - lga
	k := itrunc(lp)
	prefix := float64(sgb*sga) * math.Exp(lp-float64(k))

	g := newTerm2F0(b-a, 1-a, 1/z)
	var sum float64
	last := math.Inf(1)
	for n := 0; ; n++ {
		term := g.next()
		sum += term
		if math.Abs(term) <= cfg.Epsilon*math.Abs(sum) {
			break
		}
		if math.Abs(term) >= last {
			return math.NaN(), &EvaluationError{
				Kind: KindNoConvergence,
				Msg:  "asymptotic terms stopped decreasing before the target precision",
				Best: prefix * sum,
				Soft: true,
			}
		}
		last = math.Abs(term)
		if n > cfg.MaxIterations {
			return sum, &EvaluationError{Kind: KindNoConvergence, Msg: "asymptotic series did not converge within the iteration budget", Best: prefix * sum}
		}
	}
	*scale += k
	return prefix * sum, nil
}
