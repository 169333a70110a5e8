package hyperg

import (
	"fmt"
	"math"

	"github.com/soypat/hyperg/scaled"
)

// recurrenceCoeffs supplies the coefficient triple of a three-term
// relation A(i)·y(i−1) + B(i)·y(i) + C(i)·y(i+1) = 0. Implementations
// are pure and stateless after construction.
type recurrenceCoeffs interface {
	coeffs(i int) (an, bn, cn float64)
}

// recurrenceA is the contiguous relation on a: y(i) = M(a+i, b, z).
type recurrenceA struct{ a, b, z float64 }

func (r recurrenceA) coeffs(i int) (float64, float64, float64) {
	ai := r.a + float64(i)
	return r.b - ai, 2*ai - r.b + r.z, -ai
}

// recurrenceB is the contiguous relation on b: y(i) = M(a, b+i, z).
type recurrenceB struct{ a, b, z float64 }

func (r recurrenceB) coeffs(i int) (float64, float64, float64) {
	bi := r.b + float64(i)
	return bi * (bi - 1), bi * (1 - bi - r.z), r.z * (bi - r.a)
}

// recurrenceSmallB is the relation on b offset by n steps, for
// recursing down to a small target b: y(i) = M(a, b+n+i, z).
type recurrenceSmallB struct {
	a, b, z float64
	n       int
}

func (r recurrenceSmallB) coeffs(i int) (float64, float64, float64) {
	bi := r.b + float64(i+r.n)
	bim1 := r.b + float64(i+r.n-1)
	return bi * bim1, bi * (-bim1 - r.z), r.z * (bi - r.a)
}

// recurrenceAB is the joint relation stepping a and b together:
// y(i) = M(a+offset+i, b+offset+i, z).
type recurrenceAB struct {
	a, b, z float64
	offset  int
}

func (r recurrenceAB) coeffs(i int) (float64, float64, float64) {
	ai := r.a + float64(r.offset+i)
	bi := r.b + float64(r.offset+i)
	bim1 := r.b + float64(r.offset+i-1)
	return bi * bim1, bi * (r.z - bim1), -ai * r.z
}

// applyRecurrenceBackward walks the relation backward: given
// y(1) = first and y(0) = second, it applies the relations at
// i = 0, −1, … and returns y(−steps). When the magnitude of the pair
// leaves the normalized range both values shift together and the
// factor is credited to *scale. If penultimate is non-nil it receives
// y(−steps+1), for callers that continue with a different recurrence.
func applyRecurrenceBackward(rc recurrenceCoeffs, steps int, first, second float64, scale *int, penultimate *float64) float64 {
	next, cur := first, second
	for k := 0; k < steps; k++ {
		an, bn, cn := rc.coeffs(-k)
		next, cur = cur, -(bn*cur+cn*next)/an
		scaled.NormalizePair(&cur, &next, scale)
	}
	if penultimate != nil {
		*penultimate = next
	}
	return cur
}

// applyRecurrenceForward walks the relation forward: given
// y(0) = first and y(1) = second, it applies the relations at
// i = 1, 2, …, steps and returns y(steps+1), renormalizing like the
// backward walk. If penultimate is non-nil it receives y(steps).
func applyRecurrenceForward(rc recurrenceCoeffs, steps int, first, second float64, scale *int, penultimate *float64) float64 {
	prev, cur := first, second
	for i := 1; i <= steps; i++ {
		an, bn, cn := rc.coeffs(i)
		prev, cur = cur, -(an*prev+bn*cur)/cn
		scaled.NormalizePair(&cur, &prev, scale)
	}
	if penultimate != nil {
		*penultimate = prev
	}
	return cur
}

// backwardRecurrenceNegativeA evaluates M(a, b, z) for negative a by
// recursing backward on a from seeds at a+k and a+k−1, with k chosen
// so that a+k = frac(a)+2 and both seeds sit at positive a. Integer a
// seeds from the exact values M(0) = 1 and M(−1) = 1 − z/b.
func backwardRecurrenceNegativeA(a, b, z float64, cfg Config, scale *int) (float64, error) {
	ipart, frac := math.Modf(a)
	ak := frac
	k := int(ipart)
	if ak != 0 {
		ak += 2
		k -= 2
	}
	if -k > cfg.MaxIterations {
		return math.NaN(), &EvaluationError{
			Kind: KindOutOfRange,
			Msg:  fmt.Sprintf("a = %g is so negative that no evaluation method remains", a),
			Best: math.NaN(),
		}
	}
	var first, second float64
	if ak == 0 {
		first = 1
		ak--
		second = 1 - z/b
	} else {
		var s1, s2 int
		var err error
		first, err = m1f1Scaled(ak, b, z, cfg, &s1)
		if err != nil {
			return first, err
		}
		ak--
		second, err = m1f1Scaled(ak, b, z, cfg, &s2)
		if err != nil {
			return second, err
		}
		if s1 != s2 {
			second *= math.Exp(float64(s2 - s1))
		}
		*scale += s1
	}
	k++
	return applyRecurrenceBackward(recurrenceA{a: ak, b: b, z: z}, -k, first, second, scale, nil), nil
}

// backwardRecursionOnBNegativeA evaluates M(a, b, z) for a < −1 when
// single-parameter recurrences are unstable. It seeds at
// (a + aShift, b + bShift) with a + aShift > 1 and b + bShift > z,
// then descends in three phases: leadingAShift steps on a
// alone, abShift steps jointly on (a, b), and trailingBShift steps on
// b alone, switching recurrences mid-stream through the exact
// three-term identities between contiguous values.
func backwardRecursionOnBNegativeA(a, b, z float64, cfg Config, scale *int) (float64, error) {
	// a < -1 here; the region -1 < a < 0 never routes this way.
	bShift := itrunc(z-b) + 2
	aShift := itrunc(-a)
	if a+float64(aShift) != 0 {
		aShift += 2
	}
	if bShift > cfg.MaxIterations {
		return math.NaN(), &EvaluationError{
			Kind: KindOutOfRange,
			Msg:  fmt.Sprintf("z - b = %g is so large that no evaluation method remains", z-b),
			Best: math.NaN(),
		}
	}
	if aShift > cfg.MaxIterations {
		return math.NaN(), &EvaluationError{
			Kind: KindOutOfRange,
			Msg:  fmt.Sprintf("a = %g is so negative that no evaluation method remains", a),
			Best: math.NaN(),
		}
	}

	// The maximum shift a and b can take together, then the split of
	// the remaining distance between the leading a-only and trailing
	// b-only phases.
	abShift := bShift
	if b < 0 {
		abShift = itrunc(b + float64(bShift))
	}
	leadingAShift := 3
	if aShift < 3 {
		leadingAShift = aShift
	}
	if abShift > aShift-3 {
		if aShift < 3 {
			abShift = 0
		} else {
			abShift = aShift - 3
		}
	} else {
		// leadingAShift must be large enough that a reaches its
		// target once the first two phases are over.
		leadingAShift = aShift - abShift
	}
	trailingBShift := bShift - abShift
	if abShift < 5 {
		// Might as well do things in two steps rather than 3:
		if abShift > 0 {
			leadingAShift += abShift
			trailingBShift += abShift
		}
		abShift = 0
		leadingAShift--
	}
	if trailingBShift == 0 && math.Abs(b) < 0.5 && abShift > 0 {
		// Better to finish on b alone, otherwise we lose precision
		// when b is very small.
		diff := 3
		if abShift < 3 {
			diff = abShift
		}
		abShift -= diff
		leadingAShift += diff
		trailingBShift += diff
	}

	var s1, s2 int
	first, err := m1f1Scaled(a+float64(aShift), b+float64(bShift), z, cfg, &s1)
	if err != nil {
		return first, err
	}
	second, err := m1f1Scaled(a+float64(aShift)-1, b+float64(bShift), z, cfg, &s2)
	if err != nil {
		return second, err
	}
	if s1 != s2 {
		second *= math.Exp(float64(s2 - s1))
	}
	*scale += s1

	// Phase 1: from [a+aShift, b+bShift] down to
	// [a+aShift-leadingAShift, b+bShift].
	second = applyRecurrenceBackward(
		recurrenceA{a: a + float64(aShift) - 1, b: b + float64(bShift), z: z},
		leadingAShift, first, second, scale, &first)

	if abShift != 0 {
		// Move "second" sideways so the pair brackets the joint
		// recurrence: [.., b+bShift] and [..-1, b+bShift-1].
		{
			la := a + float64(aShift-leadingAShift) - 1
			lb := b + float64(bShift)
			second = ((1+la-lb)*second - la*first) / (1 - lb)
		}
		// Phase 2: joint descent on (a, b).
		second = applyRecurrenceBackward(
			recurrenceAB{a: a, b: b + float64(bShift-abShift), z: z, offset: abShift - 1},
			abShift-1, first, second, scale, &first)
		// Move "first" sideways for the final recurrence on b.
		{
			lb := b + float64(trailingBShift) + 1
			first = (second*(lb-1) - a*first) / -(1 + a - lb)
		}
	} else {
		// No joint phase: derive M(a, b+bShift-1, z) from the pair
		// and slide the window forward by one.
		third := -(second*(1+a-b-float64(bShift)) - first*a) / (b + float64(bShift) - 1)
		first, second = second, third
		trailingBShift--
	}

	// Phase 3: descend on b alone to the target.
	if trailingBShift != 0 {
		second = applyRecurrenceBackward(
			recurrenceSmallB{a: a, b: b, z: z, n: trailingBShift},
			trailingBShift, first, second, scale, nil)
	}
	return second, nil
}
