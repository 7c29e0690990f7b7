package inference

// Rating bounds on the star scale.
const (
	RatingMin = 0.0
	RatingMax = 5.0
)

// BlendParams are the constants of the Bayesian blend.
type BlendParams struct {
	// Confidence is the number of virtual average-rated children mixed
	// into every posterior; it controls shrinkage strength.
	Confidence float64
	// CriticBias is added to a critic rating before normalization to
	// correct for critics scoring on a compressed band.
	CriticBias float64
	// CriticWeight and GlobalWeight set the mix between the critic
	// rating and the global prior when forming the informed prior.
	CriticWeight float64
	GlobalWeight float64
}

// Clamp bounds a rating to the valid star range.
func Clamp(v float64) float64 {
	if v < RatingMin {
		return RatingMin
	}
	if v > RatingMax {
		return RatingMax
	}
	return v
}

// NormalizeCritic converts a 0-10 critic rating to the star scale,
// applying the additive bias before normalization.
func NormalizeCritic(critic, bias float64) float64 {
	return Clamp((critic + bias) / (10 + bias) * RatingMax)
}

// Posterior computes a parent's rating from its children's trusted
// ratings, shrunk toward the prior:
//
//	(C*Pi + sum(r)) / (C + n)
//
// where Pi is the prior, or the critic-weighted informed prior when a
// critic rating (0-10 scale, 0 = absent) is available. With no children
// and no critic input the result is exactly the prior: zero evidence
// regresses fully to the mean rather than producing zero.
func Posterior(childRatings []float64, critic, prior float64, p BlendParams) float64 {
	informed := prior
	if critic > 0 && p.CriticWeight > 0 {
		rc := NormalizeCritic(critic, p.CriticBias)
		informed = (prior*p.GlobalWeight + rc*p.CriticWeight) / (p.GlobalWeight + p.CriticWeight)
	}
	var sum float64
	for _, r := range childRatings {
		sum += r
	}
	n := float64(len(childRatings))
	return Clamp((p.Confidence*informed + sum) / (p.Confidence + n))
}
