package hyperg

import (
	"math"

	"github.com/soypat/hyperg/scaled"
)

// M returns Kummer's confluent hypergeometric function M(a, b, z)
// under the default policy. Errors route through the policy's error
// sink; with none set, domain and evaluation failures return NaN and
// overflow runs to ±Inf with the sign of the true result.
func M(a, b, z float64) float64 {
	cfg := DefaultConfig()
	v, err := Eval(a, b, z, cfg)
	if err != nil {
		if cfg.ErrorSink != nil {
			return cfg.ErrorSink(err, v)
		}
		return math.NaN()
	}
	return v
}

// Eval returns M(a, b, z) under cfg, collapsing the internal scaled
// representation into a single float64. A result beyond the float64
// range follows cfg.Overflow; all other failures surface as errors.
func Eval(a, b, z float64, cfg Config) (float64, error) {
	m, s, err := EvalScaled(a, b, z, cfg)
	if err != nil {
		if cfg.ErrorSink != nil {
			return cfg.ErrorSink(err, m), err
		}
		return math.NaN(), err
	}
	for s > cfg.LogMaxValue {
		m *= math.Exp(float64(cfg.LogMaxValue))
		s -= cfg.LogMaxValue
		if math.IsInf(m, 0) {
			break
		}
	}
	for s < -cfg.LogMaxValue {
		m /= math.Exp(float64(cfg.LogMaxValue))
		s += cfg.LogMaxValue
		if m == 0 {
			break
		}
	}
	r := m * math.Exp(float64(s))
	if math.IsInf(r, 0) {
		switch cfg.Overflow {
		case OverflowRaise:
			return r, OverflowError{Value: r}
		case OverflowNaN:
			return math.NaN(), nil
		}
	}
	return r, nil
}

// EvalScaled returns M(a, b, z) as a scaled pair (m, s) with the
// mathematical value m·eˢ, leaving the collapse to the caller. It is
// the entry point for callers whose true value exceeds the float64
// range.
func EvalScaled(a, b, z float64, cfg Config) (float64, int, error) {
	if err := verifyConfig(cfg); err != nil {
		return math.NaN(), 0, err
	}
	var s int
	m, err := m1f1Scaled(a, b, z, cfg, &s)
	if err != nil {
		return m, s, err
	}
	m, s = reduceScaled(m, s)
	return m, s, nil
}

// reduceScaled shifts gross mantissa magnitude onto the scale so the
// returned pair is in the sane range the callers expect.
func reduceScaled(m float64, s int) (float64, int) {
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return m, s
	}
	for math.Abs(m) >= scaled.Upper {
		m /= scaled.Factor
		s += scaled.LogMax
	}
	for math.Abs(m) < scaled.Lower && m != 0 {
		m *= scaled.Factor
		s -= scaled.LogMax
	}
	return m, s
}
