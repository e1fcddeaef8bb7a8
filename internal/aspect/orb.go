package aspect

import (
	"github.com/shopspring/decimal"

	"astroaspects/internal/chart"
)

var two = decimal.NewFromInt(2)

// ResolveOrb computes the effective tolerance, in degrees, for testing k between a and b.
//
// Points of the same category average their allowable orbs. Any other pairing, asteroids
// and (for conjunction and opposition) fixed stars included, takes the smaller orb. The
// result is then capped by the aspect's ceiling.
func ResolveOrb(k Kind, a, b *chart.Point) decimal.Decimal {
	var orb decimal.Decimal
	if a.Category == b.Category {
		orb = a.AllowableOrb.Add(b.AllowableOrb).Div(two)
	} else {
		orb = decimal.Min(a.AllowableOrb, b.AllowableOrb)
	}

	def := k.Definition()
	if !def.Ceiling.IsZero() && orb.GreaterThan(def.Ceiling) {
		orb = def.Ceiling
	}
	return orb
}

// Excluded reports whether k can never hold between a and b because of a fixed star.
func Excluded(k Kind, a, b *chart.Point) bool {
	if k.Definition().AdmitsFixedStars {
		return false
	}
	return a.Category == chart.FixedStar || b.Category == chart.FixedStar
}
