package hyperg

import (
	"math"
)

// ratioFromBackwardRecurrence computes the ratio y(0)/y(1) of the
// minimal solution of a three-term recurrence by evaluating the
// associated continued fraction with the modified Lentz algorithm.
func ratioFromBackwardRecurrence(rc recurrenceCoeffs, eps float64, maxIter int) (float64, error) {
	const tiny = 1e-30
	an, bn, cn := rc.coeffs(1)
	f := -bn / an
	if f == 0 {
		f = tiny
	}
	c := f
	d := 0.0
	for i := 2; i <= maxIter; i++ {
		num := -cn / an
		an, bn, cn = rc.coeffs(i)
		den := -bn / an
		d = den + num*d
		if d == 0 {
			d = tiny
		}
		c = den + num/c
		if c == 0 {
			c = tiny
		}
		d = 1 / d
		delta := c * d
		f *= delta
		if math.Abs(delta-1) < eps {
			return f, nil
		}
	}
	return f, &EvaluationError{Kind: KindNoConvergence, Msg: "continued fraction for the function ratio did not converge", Best: f}
}

// Region tests for the three ratio methods. M(a, b, z) is the minimal
// solution of the b-recurrence above the turning point b ≈ z and
// dominant below it, so ratio seeds may only walk upward over short
// spans while anchored walks descend safely over long ones.

func isInRatioNegBRegion(a, b, z float64) bool {
	return b < -1 && z > 0 && z <= 15 && -b < z
}

func isInForwardsRecurrenceNegBRegion(a, b, z float64) bool {
	return b < -1 && z > 0 && z-b <= 20000
}

func isInRatioNegABRegion(a, b, z float64) bool {
	return b-a <= z+1 && -b <= math.Max(2, 0.1*z) && z-b <= 20000
}

// maxBForSmallANegBByRatio is the most negative b the small-a ratio
// method accepts for a given z < 0; beyond it the upward walk leaves
// the neutral zone |b| < |z| and the method sheds digits.
func maxBForSmallANegBByRatio(z float64) float64 {
	return 0.5*z - 1
}

// ratioAnchoredOnB evaluates M(a, b, z) from the continued-fraction
// ratio M(a, b, z)/M(a, b+1, z) taken at the target, walking the
// b-recurrence up shift steps to an anchor that the dispatcher can
// evaluate directly, then dividing the anchor by the walked value.
func ratioAnchoredOnB(a, b, z float64, shift int, cfg Config, scale *int) (float64, error) {
	r, err := ratioFromBackwardRecurrence(recurrenceB{a: a, b: b, z: z}, cfg.Epsilon, cfg.MaxIterations)
	if err != nil {
		return r, err
	}
	var ws int
	walked := applyRecurrenceForward(recurrenceB{a: a, b: b, z: z}, shift-1, 1, 1/r, &ws, nil)
	var as int
	anchor, err := m1f1Scaled(a, b+float64(shift), z, cfg, &as)
	if err != nil {
		return anchor, err
	}
	*scale += as - ws
	return anchor / walked, nil
}

// ratioNegB evaluates M(a, b, z) for a ≥ 0, b < −1, z > 0 with the
// anchor placed just above the turning point b ≈ z.
func ratioNegB(a, b, z float64, cfg Config, scale *int) (float64, error) {
	return ratioAnchoredOnB(a, b, z, itrunc(z-b)+2, cfg, scale)
}

// ratioSmallANegB serves the z < 0, |a| ≤ 10⁻², b < −1 pocket: the
// anchor only needs b positive, since for negative z the series there
// is benign.
func ratioSmallANegB(a, b, z float64, cfg Config, scale *int) (float64, error) {
	return ratioAnchoredOnB(a, b, z, itrunc(-b)+2, cfg, scale)
}

// ratioNegBForwards evaluates M(a, b, z) for negative b when the walk
// from the target is too long for ratio seeds: it anchors at the top
// instead, taking the continued-fraction ratio there and descending
// the b-recurrence to the target through its dominant direction.
func ratioNegBForwards(a, b, z float64, cfg Config, scale *int) (float64, error) {
	shift := itrunc(z-b) + 2
	top := b + float64(shift)
	r, err := ratioFromBackwardRecurrence(recurrenceB{a: a, b: top, z: z}, cfg.Epsilon, cfg.MaxIterations)
	if err != nil {
		return r, err
	}
	var as int
	anchor, err := m1f1Scaled(a, top, z, cfg, &as)
	if err != nil {
		return anchor, err
	}
	ws := as
	res := applyRecurrenceBackward(recurrenceB{a: a, b: top, z: z}, shift, anchor/r, anchor, &ws, nil)
	*scale += ws
	return res, nil
}

// ratioNegAB evaluates M(a, b, z) for a < 0, b < 0 from the joint
// (a, b) recurrence: the continued-fraction ratio
// M(a, b, z)/M(a+1, b+1, z) at the target, walked up to an anchor
// with both parameters positive.
func ratioNegAB(a, b, z float64, cfg Config, scale *int) (float64, error) {
	rc := recurrenceAB{a: a, b: b, z: z}
	r, err := ratioFromBackwardRecurrence(rc, cfg.Epsilon, cfg.MaxIterations)
	if err != nil {
		return r, err
	}
	shift := itrunc(math.Max(z-b, 1-a)) + 2
	var ws int
	walked := applyRecurrenceForward(rc, shift-1, 1, 1/r, &ws, nil)
	var as int
	anchor, err := m1f1Scaled(a+float64(shift), b+float64(shift), z, cfg, &as)
	if err != nil {
		return anchor, err
	}
	*scale += as - ws
	return anchor / walked, nil
}
