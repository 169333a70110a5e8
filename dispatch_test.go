package hyperg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Spot values verified against an independent high-precision
// implementation. Tolerances widen on the paths that chain long
// recurrence walks.
func TestSpotValues(t *testing.T) {
	cases := []struct {
		a, b, z float64
		want    float64
		tol     float64
	}{
		// b = 2a pairs.
		{12.25, 24.5, 6.75, 36.47281964229300610642392880149, 1e-12},
		{-12.25, -24.5, 6.75, 22.995348157760091167706081204213, 1e-12},
		// Polynomial cases.
		{-11, -12, 6.75, 376.31664262464596563345426088804, 1e-12},
		{-2, -12, 6.75, 2.4701704545454545454545454545455, 1e-13},
		{-224, -1205, 6.75, 3.4970334496575957246366761930241, 1e-12},
		// Small z against huge negative b.
		{0.5, -1205.5, -6.75, 1.0028114904302692515509627950588, 1e-13},
		{-0.5, -1205.5, -6.75, 0.99719639844965644594352920596781, 1e-13},
		// Backward recurrence on a with a large argument.
		{-12, 16.25, 1043.75, 1.2652767350547767831170756550236e20, 1e-10},
		// Closed forms.
		{10.25, 9.25, 36.25, (9.25 + 36.25) * math.Exp(36.25) / 9.25, 1e-13},
		{-10.25, -11.25, -36.25, (-11.25 - 36.25) * math.Exp(-36.25) / -11.25, 1e-13},
		// Degenerate near-integer b.
		{2.9127331452327709e-07, -0.99999970872668542, 0.15018942760070786, 0.98752601899050684379360109293211, 1e-12},
		{-2.9127331452327709e-07, -1.0000002912733146, 0.15018942760070786, 0.98752612066136641248494208937250, 1e-12},
		{6.7191087900739423e-13, -0.99999999999932809, 0.0011913633891253994, 0.99999928975860500676275720169975, 1e-12},
		{6.7191087900739423e-13, -0.99999999999932809, -0.0011913633891253994, 0.99999929088591846832641622102113, 1e-12},
		{-6.7191087900739423e-13, -1.0000000000006719, 0.0011913633891253994, 0.99999928975860660965129239451040, 1e-12},
		{-6.7191087900739423e-13, -1.0000000000006719, -0.0011913633891253994, 0.99999929088591686925259103667459, 1e-10},
		// Tiny a against a huge negative argument.
		{1.2860067365774887e-17, 1, -2539.60133934021, 0.99999999999999989175709513755155, 5e-12},
		{-1.2860067365774887e-17, 1, -2539.60133934021, 1.0000000000000001082429048624485, 5e-12},
		// Long three-phase descents.
		{17955.561660766602, 9.6968994205831605e-09, -82.406154185533524, 6.9805600837873671408873092713236e-11, 1e-9},
		{-1.98018241448205767, 1.98450573845762079, 54.4977916804564302, 2972026581564772.790187123046256, 1e-10},
		{5.6136137469239618e-15, -0.99999999999999434, -1989.8742001056671, 0.0085698518098565933496506857673252, 1e-10},
	}
	for _, c := range cases {
		got, err := Eval(c.a, c.b, c.z, DefaultConfig())
		require.NoErrorf(t, err, "M(%g, %g, %g)", c.a, c.b, c.z)
		require.InEpsilonf(t, c.want, got, c.tol, "M(%g, %g, %g)", c.a, c.b, c.z)
	}
}

func TestUniversalIdentities(t *testing.T) {
	// M(a, a, z) = e^z.
	for _, c := range []struct{ a, z float64 }{
		{3.5, 36.25}, {-3.5, 36.25}, {3.5, -36.25}, {0.25, 1.5},
	} {
		got := M(c.a, c.a, c.z)
		require.InEpsilonf(t, math.Exp(c.z), got, 1e-13, "M(%g, %g, %g)", c.a, c.a, c.z)
	}
	// M(1, 2, z) = (e^z - 1)/z.
	for _, z := range []float64{36.25, -4.5, 0.25} {
		require.InEpsilonf(t, math.Expm1(z)/z, M(1, 2, z), 1e-13, "M(1, 2, %g)", z)
	}
	// M(a, b, 0) = 1, M(0, b, z) = 1.
	assert.Equal(t, 1.0, M(4.75, -2.25, 0))
	assert.Equal(t, 1.0, M(0, 3.5, 11.25))
	// M(-1, b, z) = 1 - z/b.
	for _, c := range []struct{ b, z float64 }{
		{4.5, 2.25}, {-7.25, -3.5},
	} {
		assert.Equal(t, 1-c.z/c.b, M(-1, c.b, c.z))
	}
}

func TestKummerReflection(t *testing.T) {
	// M(a, b, z) = e^z · M(b-a, b, -z).
	cases := []struct{ a, b, z float64 }{
		{2.25, 5.5, 1.75},
		{2.5, 7.25, 3.5},
		{-1.75, 4.25, 2.5},
		{0.75, 2.25, -6.5},
	}
	for _, c := range cases {
		lhs := M(c.a, c.b, c.z)
		rhs := math.Exp(c.z) * M(c.b-c.a, c.b, -c.z)
		require.InEpsilonf(t, lhs, rhs, 1e-12, "Kummer at (%g, %g, %g)", c.a, c.b, c.z)
		// Reflecting twice recovers the original.
		back := math.Exp(c.z) * math.Exp(-c.z) * M(c.a, c.b, c.z)
		require.InEpsilonf(t, lhs, back, 1e-12, "double reflection at (%g, %g, %g)", c.a, c.b, c.z)
	}
}

func TestNegativeIntegerAPolynomial(t *testing.T) {
	// M(-n, b, z) equals the truncated series.
	const b, z = 6.5, 3.25
	for _, n := range []int{1, 4, 9} {
		a := -float64(n)
		want, term := 0.0, 1.0
		for k := 0; k <= n; k++ {
			want += term
			fk := float64(k)
			term *= (a + fk) / ((b + fk) * (fk + 1)) * z
		}
		require.InEpsilonf(t, want, M(a, b, z), 1e-12, "M(%g, %g, %g)", a, b, z)
	}
}

func TestOverflowPolicy(t *testing.T) {
	// M(7.824e-5, -5485.32, 1896.06) ≈ 4.33e668 overflows float64.
	const a, b, z = 7.8238229420435346e-05, -5485.3222503662109, 1896.0561106204987

	got, err := Eval(a, b, z, DefaultConfig())
	require.NoError(t, err)
	require.True(t, math.IsInf(got, 1), "default overflow policy should return +Inf, got %g", got)

	cfg := DefaultConfig()
	cfg.Overflow = OverflowRaise
	_, err = Eval(a, b, z, cfg)
	var ov OverflowError
	require.ErrorAs(t, err, &ov)

	// The scaled entry point keeps the digits: log m + s is the log of
	// the true value, 4.33129800901478785958e668.
	m, s, err := EvalScaled(a, b, z, DefaultConfig())
	require.NoError(t, err)
	wantLog := math.Log(4.3312980090147879) + 668*math.Ln10
	assert.InDelta(t, wantLog, math.Log(m)+float64(s), 1e-4)
}

func TestDomainErrors(t *testing.T) {
	var de DomainError
	_, err := Eval(2, -2, 1, DefaultConfig())
	require.ErrorAs(t, err, &de)
	_, err = Eval(-3, -2, 1, DefaultConfig()) // a < b: series never terminates
	require.ErrorAs(t, err, &de)
	_, err = Eval(0.5, 0, 1, DefaultConfig()) // b exactly zero
	require.ErrorAs(t, err, &de)
	_, err = Eval(0.5, -3, 1, DefaultConfig()) // non-integer a
	require.ErrorAs(t, err, &de)

	// The polynomial escape: negative integer a with a >= b.
	// M(-2, -3, 1.5) = 1 + (2/3)·1.5 + (1/3)·1.5²/2 = 2.375.
	got, err := Eval(-2, -3, 1.5, DefaultConfig())
	require.NoError(t, err)
	require.InEpsilon(t, 2.375, got, 1e-13)

	// M reports NaN through the default sink.
	require.True(t, math.IsNaN(M(2, -2, 1)))
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epsilon = 0
	_, _, err := EvalScaled(1, 2, 3, cfg)
	require.Error(t, err)
	cfg = DefaultConfig()
	cfg.MaxIterations = 0
	_, _, err = EvalScaled(1, 2, 3, cfg)
	require.Error(t, err)
}

func TestIdempotence(t *testing.T) {
	cases := []struct{ a, b, z float64 }{
		{2.25, 5.5, 1.75},
		{-12, 16.25, 1043.75},
		{0.5, -1205.5, -6.75},
	}
	for _, c := range cases {
		first := M(c.a, c.b, c.z)
		second := M(c.a, c.b, c.z)
		if first != second {
			t.Errorf("M(%g, %g, %g) not bit-identical across calls: %x vs %x",
				c.a, c.b, c.z, math.Float64bits(first), math.Float64bits(second))
		}
	}
}

func TestErrorSink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ErrorSink = func(err error, best float64) float64 { return -1 }
	got, err := Eval(2, -2, 1, cfg)
	require.Error(t, err)
	assert.Equal(t, -1.0, got)
}

func TestDispatcherPredicates(t *testing.T) {
	// The empirical region tests are load-bearing; pin their shape.
	assert.True(t, is1336Region(0.001, 5.5, -20))
	assert.False(t, is1336Region(0.5, 5.5, -20), "|a| = 0.5 is excluded")
	assert.False(t, is1336Region(0.001, 5.5, 20), "positive z is excluded")

	assert.True(t, needKummerReflection(2.5, 7.25, -3.5))
	assert.False(t, needKummerReflection(2.5, 7.25, 3.5))
	assert.False(t, needKummerReflection(-2.5, 7.25, -0.5))
	assert.True(t, needKummerReflection(2.5, -7.25, -0.5))

	assert.True(t, isConvergentNegativeZSeries(-2.5, 7.25, -3.5))
	assert.False(t, isConvergentNegativeZSeries(2.5, 7.25, -3.5), "positive a and b never take the raw alternating series")

	assert.False(t, checkParameters(2, -2))
	assert.False(t, checkParameters(-3, -2))
	assert.False(t, checkParameters(0.5, -3))
	assert.True(t, checkParameters(-2, -2))
	assert.True(t, checkParameters(2.5, -2.5))

	// The shrinkage ladder keeps its original threshold order.
	assert.Equal(t, 1.0, besselIShrinkageRate(-2539.6))
	assert.Equal(t, 1.0, besselIShrinkageRate(100))
	assert.Equal(t, 0.05, besselIShrinkageRate(500))
}
