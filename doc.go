// Package hyperg evaluates Kummer's confluent hypergeometric function
// of the first kind, M(a, b, z) = 1F1(a; b; z), over float64 arguments.
//
// The Taylor series defining M is numerically catastrophic over most
// of the (a, b, z) cube: terms can grow to astronomical magnitudes
// before cancelling back down. The package therefore dispatches each
// call to one of several complementary evaluation strategies (direct
// series, asymptotic expansion, Bessel-function expansions, backward
// recurrences, continued-fraction ratios) selected by empirical region
// tests, and carries magnitudes through an explicit log-scale so that
// intermediate results may exceed the float64 exponent range.
package hyperg
