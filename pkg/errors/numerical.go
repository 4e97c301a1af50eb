package errors

// RatioEpsilon is added to the denominator of derived ratio features.
const RatioEpsilon = 1e-9

// StabilizedDivide returns numerator / (denominator + RatioEpsilon).
// A zero denominator therefore yields a large finite value instead of Inf.
// NaN operands propagate.
func StabilizedDivide(numerator, denominator float64) float64 {
	return numerator / (denominator + RatioEpsilon)
}
