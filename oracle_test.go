package hyperg_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/ALTree/bigfloat"
	"github.com/stretchr/testify/require"

	"github.com/soypat/hyperg"
)

const oraclePrec = 400 // bits; absorbs ~e^50 of intermediate cancellation

// oracle1F1 sums the Taylor series in big.Float arithmetic. The
// cancellation that destroys a float64 summation only costs a fixed
// number of leading bits here.
func oracle1F1(t *testing.T, a, b, z float64) float64 {
	t.Helper()
	sum := new(big.Float).SetPrec(oraclePrec)
	term := new(big.Float).SetPrec(oraclePrec).SetFloat64(1)
	num := new(big.Float).SetPrec(oraclePrec)
	den := new(big.Float).SetPrec(oraclePrec)
	zf := new(big.Float).SetPrec(oraclePrec).SetFloat64(z)
	for n := 0; n < 20000; n++ {
		sum.Add(sum, term)
		if term.Sign() == 0 {
			break
		}
		if sum.Sign() != 0 && term.MantExp(nil)-sum.MantExp(nil) < -int(oraclePrec)-8 {
			break
		}
		num.SetFloat64(a + float64(n))
		den.SetFloat64(b + float64(n))
		den.Mul(den, new(big.Float).SetPrec(oraclePrec).SetFloat64(float64(n+1)))
		term.Mul(term, num)
		term.Quo(term, den)
		term.Mul(term, zf)
	}
	f, _ := sum.Float64()
	return f
}

// One case per dispatch route that the spot table does not already
// pin down; the oracle arbitrates.
func TestAgainstOracle(t *testing.T) {
	cases := []struct {
		name    string
		a, b, z float64
		tol     float64
	}{
		{"series", 2.5, 7.25, 3.5, 1e-13},
		{"kummer", 2.5, 7.25, -3.5, 1e-12},
		{"recur-a-back", -7.5, 30.25, 12.5, 1e-11},
		{"recur-ab-back", -7.5, 2.25, 21.5, 1e-10},
		{"tricomi", -25.5, 10, 0.5, 1e-11},
		{"bessel-13-3-6", 0.001, 5.5, -20, 1e-11},
		{"series-neg-b", 1.5, -3.5, 12.5, 1e-10},
		{"ratio-neg-b-forwards", 2.5, -5.5, 30, 1e-10},
		{"ratio-neg-ab", -4.5, -1.25, 40, 1e-9},
		{"small-b-recurrence", 0.005, -0.75, -2.5, 1e-11},
		{"small-a-neg-b-ratio", 0.005, -1.8, -5.0, 1e-10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := oracle1F1(t, c.a, c.b, c.z)
			got, err := hyperg.Eval(c.a, c.b, c.z, hyperg.DefaultConfig())
			require.NoError(t, err)
			require.InEpsilon(t, want, got, c.tol)
		})
	}
}

// The a = b ridge against a 400-bit exponential, exercising the
// scaled collapse against bigfloat's Exp rather than math.Exp.
func TestExponentialRidgeAgainstBigfloat(t *testing.T) {
	for _, z := range []float64{36.25, -36.25, 1.5} {
		ref := bigfloat.Exp(new(big.Float).SetPrec(oraclePrec).SetFloat64(z))
		want, _ := ref.Float64()
		require.InEpsilonf(t, want, hyperg.M(3.5, 3.5, z), 1e-14, "M(3.5, 3.5, %g)", z)
	}
}

// The scaled entry point against a bigfloat value that overflows
// float64: M(a, a, z) = e^z at z = 1500.
func TestScaledAgainstBigfloatOverflow(t *testing.T) {
	const z = 1500.0
	m, s, err := hyperg.EvalScaled(4.25, 4.25, z, hyperg.DefaultConfig())
	require.NoError(t, err)
	require.InDelta(t, z, math.Log(m)+float64(s), 1e-9)
	// And the collapse must saturate.
	require.True(t, math.IsInf(hyperg.M(4.25, 4.25, z), 1))
}
