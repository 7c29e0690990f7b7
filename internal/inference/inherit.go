package inference

// Inherit derives a child rating from its rated parent. A manual
// parent rating is pulled toward the prior by the gravity coefficient
// (0 copies the parent, 1 regresses fully to the mean). An inferred
// parent rating already contains shrinkage from aggregation, so it is
// copied directly; applying gravity again would double-discount.
func Inherit(parent float64, parentManual bool, gravity, prior float64) float64 {
	if !parentManual {
		return Clamp(parent)
	}
	return Clamp((1-gravity)*parent + gravity*prior)
}
