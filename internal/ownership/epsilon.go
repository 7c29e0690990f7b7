package ownership

import "math"

// Bounds for the dynamic drift tolerance, in rating stars. Small
// libraries stay tight; at roughly 300k items the curve reaches the
// ceiling and larger catalogs trade precision for write volume.
const (
	epsilonFloor   = 0.02
	epsilonCeiling = 0.17
)

// Epsilon returns the drift tolerance for a catalog of the given total
// size. The curve grows with the log of the library size and is
// clamped at both ends; with dynamic precision disabled it is zero, so
// any difference triggers a write.
func Epsilon(total int, dynamic bool) float64 {
	if !dynamic {
		return 0
	}
	if total < 1 {
		return epsilonFloor
	}
	eps := 0.05 * (math.Log10(float64(total)) - 2.1)
	if eps < epsilonFloor {
		return epsilonFloor
	}
	if eps > epsilonCeiling {
		return epsilonCeiling
	}
	return eps
}
