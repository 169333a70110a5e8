package hyperg

import "math"

// rationalSmallZ evaluates M(a, b, z) as a rational function of z by
// backward nesting of the truncated Taylor expansion,
//
//	1 + u₁(1 + u₂(1 + … u_N)),   u_k = (a+k−1)z/((b+k−1)k).
//
// Valid in the dispatcher's |a·z/b| < 3.5, |100z| < |b| region, where
// the factors shrink from the first step and the nesting never
// amplifies roundoff. Terminating series exit through a zero factor.
func rationalSmallZ(a, b, z float64, cfg Config) (float64, error) {
	n := 0
	mag := 1.0
	for mag > cfg.Epsilon {
		fn := float64(n)
		mag *= math.Abs((a + fn) / (b + fn) * z / (fn + 1))
		n++
		if n > cfg.MaxIterations {
			return math.NaN(), &EvaluationError{Kind: KindNoConvergence, Msg: "rational truncation did not close within the iteration budget", Best: math.NaN()}
		}
	}
	s := 1.0
	for k := n; k >= 1; k-- {
		fk := float64(k)
		s = 1 + (a+fk-1)/(b+fk-1)*z/fk*s
	}
	return s, nil
}

// padeA1 evaluates M(1, b, z) for negative z through its Kummer image
// e^z·M(b−1, b, −z), whose terms (b−1)/(b−1+n)·(−z)ⁿ/n! carry at most
// one sign change and never cancel; the e^z fold credits ⌊z⌋ to the
// log-scale.
func padeA1(b, z float64, cfg Config, scale *int) (float64, error) {
	r, err := series1F1Scaled(b-1, b, -z, cfg, scale)
	if err != nil {
		return r, err
	}
	k := itrunc(z)
	*scale += k
	return r * math.Exp(z-float64(k)), nil
}

// large1F1ABZ sums the all-positive Taylor series outward from its
// peak term, with the peak magnitude carried as a log prefix. Used for
// a, b, z all positive with a·z > 50, where summing from n = 0 wastes
// iterations and exponent range on the climb.
func large1F1ABZ(a, b, z float64, cfg Config, scale *int) (float64, error) {
	// The term ratio crosses 1 where (a+n)z = (b+n)(n+1).
	c1 := b + 1 - z
	disc := c1*c1 + 4*(a*z-b)
	if disc <= 0 {
		return series1F1Scaled(a, b, z, cfg, scale)
	}
	n0 := itrunc(0.5 * (-c1 + math.Sqrt(disc)))
	if n0 < 1 {
		return series1F1Scaled(a, b, z, cfg, scale)
	}
	fn0 := float64(n0)
	lga, _ := math.Lgamma(a)
	lgan, _ := math.Lgamma(a + fn0)
	lgb, _ := math.Lgamma(b)
	lgbn, _ := math.Lgamma(b + fn0)
	lgn, _ := math.Lgamma(fn0 + 1)
	lt := lgan - lga - (lgbn - lgb) + fn0*math.Log(z) - lgn
	k := itrunc(lt)
	peak := math.Exp(lt - float64(k))

	// Upward from the peak.
	sum, term := 0.0, peak
	for i := n0; ; i++ {
		sum += term
		fi := float64(i)
		term *= (a + fi) / ((b + fi) * (fi + 1)) * z
		if term <= cfg.Epsilon*sum {
			break
		}
		if i-n0 > cfg.MaxIterations {
			return sum, &EvaluationError{Kind: KindNoConvergence, Msg: "1F1 series did not converge within the iteration budget", Best: sum}
		}
	}
	// Downward from the peak.
	term = peak
	for i := n0; i > 0; i-- {
		fi := float64(i)
		term *= (b + fi - 1) * fi / ((a + fi - 1) * z)
		sum += term
		if term <= cfg.Epsilon*sum {
			break
		}
	}
	*scale += k
	return sum, nil
}
