package hyperg

import (
	"fmt"
	"math"

	"github.com/soypat/hyperg/scaled"
)

// besselIScaled computes the modified Bessel function I_ν(x), x ≥ 0,
// as a scaled value through its 0F1 form
// I_ν(x) = (x/2)^ν/Γ(ν+1) · 0F1(ν+1; x²/4). For ν > −1 every term of
// the sum is positive, so the form is stable for any argument; the renormalizing
// driver keeps the e^x growth inside the mantissa range.
func besselIScaled(nu, x float64, cfg Config) (float64, int, error) {
	var s int
	sum, err := sumSeriesScaled(newTerm0F1(nu+1, x*x/4), cfg, &s)
	if err != nil {
		return sum, s, err
	}
	lg, sg := math.Lgamma(nu + 1)
	lp := nu*math.Log(x/2) - lg
	k := itrunc(lp)
	return float64(sg) * math.Exp(lp-float64(k)) * sum, s + k, nil
}

// besselJScaled computes the Bessel function J_ν(x), x > 0, through
// 0F1(ν+1; −x²/4). The alternating sum cancels catastrophically when
// the order sits far below the argument; callers guard the region.
func besselJScaled(nu, x float64, cfg Config) (float64, int, error) {
	var s int
	sum, err := sumSeriesScaled(newTerm0F1(nu+1, -x*x/4), cfg, &s)
	if err != nil {
		return sum, s, err
	}
	lg, sg := math.Lgamma(nu + 1)
	lp := nu*math.Log(x/2) - lg
	k := itrunc(lp)
	return float64(sg) * math.Exp(lp-float64(k)) * sum, s + k, nil
}

// bessel1336 evaluates M(a, b, z), z > 0, through the expansion in
// modified Bessel functions of z/2 (A&S 13.3.6):
//
//	M(a,b,z) = Γ(b−a−½) e^{z/2} (z/4)^{½+a−b} ·
//	           Σ (−1)^s (2b−2a−1)_s (b−2a)_s (b−a−½+s) / ((b)_s s!) · I_{b−a−½+s}(z/2)
//
// The dispatcher only routes here when b−a is tiny compared to b, so
// the leading coefficients collapse and the ladder converges in a few
// terms.
func bessel1336(a, b, z float64, cfg Config, scale *int) (float64, error) {
	nu := b - a - 0.5
	var sum float64
	ref := 0
	// p carries (−1)^s (2b−2a−1)_s (b−2a)_s / ((b)_s s!); the ladder
	// coefficient is p·(ν+s).
	p := 1.0
	for s := 0; ; s++ {
		iv, is, err := besselIScaled(nu+float64(s), z/2, cfg)
		if err != nil {
			return iv, err
		}
		if s == 0 {
			ref = is
		}
		t := p * (nu + float64(s)) * scaled.Rescale(iv, is, ref)
		sum += t
		if s >= 2 && math.Abs(t) <= cfg.Epsilon*math.Abs(sum) {
			break
		}
		if s > 500 {
			return sum, &EvaluationError{
				Kind: KindNoConvergence,
				Msg:  "Bessel ladder of the 13.3.6 expansion failed to converge",
				Best: sum,
				Soft: true,
			}
		}
		fs := float64(s)
		p *= -(2*b - 2*a - 1 + fs) * (b - 2*a + fs) / ((b + fs) * (fs + 1))
	}
	lg, sg := math.Lgamma(nu)
	lp := z/2 + (0.5+a-b)*math.Log(z/4) + lg
	k := itrunc(lp)
	*scale += ref + k
	return float64(sg) * math.Exp(lp-float64(k)) * sum, nil
}

// tricomiArgViable bounds the region where the Bessel-J ladder of the
// 13.3.7 expansion holds full precision: either the argument is small
// or every order in the ladder sits above it, keeping the alternating
// 0F1 sums monotone. Negative arguments switch to modified Bessel
// terms, which never cancel.
func tricomiArgViable(arg, b float64) bool {
	if arg <= 0 {
		return true
	}
	return arg <= 16 || b-1 >= 1.1*arg
}

// tricomiViablePositiveB is the region test consulted before routing
// a divergent series with b > 0 to the 13.3.7 expansion.
func tricomiViablePositiveB(a, b, z float64) bool {
	return tricomiArgViable(z*(b/2-a), b)
}

// tricomi1337 evaluates M(a, b, z), z > 0, through the Bessel-function
// expansion of A&S 13.3.7 with the 13.3.8 coefficient recurrence
// (n+1)A_{n+1} = (n+b−1)A_{n−1} + (2a−b)A_{n−2}:
//
//	M(a,b,z) = Γ(b) e^{z/2} (β/2)^{1−b} Σ A_n (z/β)^n C_{b−1+n}(β)
//
// where β = 2√(z(b/2−a)) and C is J, or I of 2√(z(a−b/2)) when
// b/2 − a is negative. Outside the viable region it soft-fails and the
// dispatcher falls back to a recurrence method.
func tricomi1337(a, b, z float64, cfg Config, scale *int) (float64, error) {
	arg := z * (b/2 - a)
	if !tricomiArgViable(arg, b) {
		return math.NaN(), &EvaluationError{
			Kind: KindNoConvergence,
			Msg:  fmt.Sprintf("Bessel argument %g of the 13.3.7 expansion is outside the viable region", arg),
			Best: math.NaN(),
			Soft: true,
		}
	}
	modified := arg < 0
	beta := 2 * math.Sqrt(math.Abs(arg))
	if beta == 0 {
		// b = 2a sits in a removable singularity of the expansion;
		// the series handles it without help.
		return series1F1Scaled(a, b, z, cfg, scale)
	}

	bess := besselJScaled
	if modified {
		bess = besselIScaled
	}
	r := z / beta
	ref := 0
	var sum float64
	// A_n window per 13.3.8: A_0 = 1, A_1 = 0, A_2 = b/2.
	an2, an1, an := 1.0, 0.0, b/2
	pow, powScale := 1.0, 0
	grew := 0
	var last float64
	for n := 0; ; n++ {
		var cA float64
		switch n {
		case 0:
			cA = an2
		case 1:
			cA = an1
		case 2:
			cA = an
		default:
			fn := float64(n - 1)
			next := ((fn+b-1)*an1 + (2*a-b)*an2) / (fn + 1)
			an2, an1, an = an1, an, next
			cA = an
		}
		cv, cs, err := bess(b-1+float64(n), beta, cfg)
		if err != nil {
			return cv, err
		}
		if n == 0 {
			ref = cs
		}
		t := cA * pow * scaled.Rescale(cv, cs+powScale, ref)
		sum += t
		if n >= 3 && math.Abs(t) <= cfg.Epsilon*math.Abs(sum) {
			break
		}
		if n >= 3 {
			if math.Abs(t) > last {
				grew++
			} else {
				grew = 0
			}
			if grew > 20 || n > 500 {
				return sum, &EvaluationError{
					Kind: KindNoConvergence,
					Msg:  "13.3.7 expansion failed to converge",
					Best: sum,
					Soft: true,
				}
			}
		}
		last = math.Abs(t)
		pow *= r
		if math.Abs(pow) >= scaled.Upper {
			pow /= scaled.Factor
			powScale += scaled.LogMax
		}
	}
	lg, sg := math.Lgamma(b)
	lp := z/2 + (1-b)*math.Log(beta/2) + lg
	k := itrunc(lp)
	*scale += ref + k
	return float64(sg) * math.Exp(lp-float64(k)) * sum, nil
}
