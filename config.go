package hyperg

import (
	"fmt"
	"math"

	"github.com/soypat/hyperg/scaled"
)

const (
	// epsilon is the float64 machine epsilon. For IEEE this is 2^{-52}.
	epsilon = 1.0 / (1 << 52)
)

// OverflowPolicy selects what happens when the final |m·eˢ| exceeds
// the float64 range.
type OverflowPolicy int

const (
	// OverflowReturnInf returns ±Inf with the sign of the mantissa.
	OverflowReturnInf OverflowPolicy = iota
	// OverflowRaise surfaces an OverflowError.
	OverflowRaise
	// OverflowNaN returns NaN.
	OverflowNaN
)

// Config holds the numeric policy supplied to every evaluation.
// Start from DefaultConfig; the zero value fails verification.
type Config struct {
	// Epsilon is the target relative increment at which series
	// summation terminates.
	Epsilon float64
	// MaxIterations bounds every series summation, continued
	// fraction and recurrence walk.
	MaxIterations int
	// LogMaxValue is the largest scale the terminal collapse keeps
	// before multiplying out; at most scaled.LogMax.
	LogMaxValue int
	// Overflow selects the behaviour when the final result exceeds
	// the float64 range.
	Overflow OverflowPolicy
	// ErrorSink, when set, maps an error to the sentinel value that
	// Eval returns alongside that error; with none set Eval returns NaN.
	ErrorSink func(err error, best float64) float64
}

// DefaultConfig returns the policy used by M: machine epsilon target,
// a one-million iteration budget, and overflow running to ±Inf.
func DefaultConfig() Config {
	return Config{
		Epsilon:       epsilon,
		MaxIterations: 1000000,
		LogMaxValue:   scaled.LogMax,
		Overflow:      OverflowReturnInf,
	}
}

func verifyConfig(cfg Config) error {
	if !(cfg.Epsilon > 0) || cfg.Epsilon >= 0.1 {
		return fmt.Errorf("config: epsilon must be in (0, 0.1), got %g", cfg.Epsilon)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("config: max iterations must be at least 1, got %d", cfg.MaxIterations)
	}
	if cfg.LogMaxValue < 1 || cfg.LogMaxValue > scaled.LogMax {
		return fmt.Errorf("config: log max value must be in [1, %d], got %d", scaled.LogMax, cfg.LogMaxValue)
	}
	return nil
}

// itrunc truncates toward zero, the rounding every scale credit uses.
func itrunc(x float64) int {
	return int(math.Trunc(x))
}

// sign returns -1, 0 or 1 with the sign of x.
func sign(x float64) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
