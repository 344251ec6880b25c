package share

import "math"

const (
	// capLimitEpsilon: limits at or above 1-capLimitEpsilon do not constrain.
	capLimitEpsilon  = 1e-6
	capLimitMult     = 1.4
	capLimitExponent = 2
)

// CapLimitTransform smoothly bounds rawShare by capLimit.
//
// The result is close to rawShare when rawShare is well below capLimit and
// approaches capLimit, without reaching it, as rawShare grows. It is monotonic in
// rawShare and strictly below capLimit when capLimit < 1, up to float64
// resolution: once rawShare/capLimit exceeds about 4.2 the result rounds to capLimit.
//
// The transform does not compose with itself: callers must apply it at most once
// per group and period.
func CapLimitTransform(rawShare, capLimit float64) float64 {
	if !Limits(capLimit) {
		return rawShare
	}
	ratio := rawShare / capLimit
	factor := math.Exp(math.Pow(capLimitMult*ratio, capLimitExponent))
	if math.IsInf(factor, 1) {
		// Past ratio ~19 the factor overflows; the exact result is within rounding
		// of capLimit long before that.
		return capLimit
	}
	return rawShare * factor / (1 + ratio*factor)
}

// Limits reports whether capLimit constrains a share at all.
func Limits(capLimit float64) bool {
	return capLimit < 1-capLimitEpsilon
}
