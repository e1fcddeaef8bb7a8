package aspect

import (
	"github.com/shopspring/decimal"

	"astroaspects/internal/chart"
	"astroaspects/internal/zodiac"
)

var (
	fullCircle       = decimal.NewFromInt(zodiac.FullCircle)
	secondsPerDegree = decimal.NewFromInt(zodiac.SecondsPerDegree)
)

// Holds reports whether aspect k exists between a and b.
//
// The raw separation is not folded onto the shorter arc, so both the target and its
// complement to 360° are tested. Window edges are inclusive.
func Holds(k Kind, a, b *chart.Point) bool {
	if a == nil || b == nil || !k.Valid() {
		return false
	}
	if Excluded(k, a, b) {
		return false
	}

	orb := ResolveOrb(k, a, b).Mul(secondsPerDegree)
	diff := decimal.NewFromInt(int64(zodiac.Distance(a.Coordinate, b.Coordinate)))
	target := k.Definition().Target

	return within(diff, target, orb) || within(diff, fullCircle.Sub(target), orb)
}

func within(diff, target, orb decimal.Decimal) bool {
	return diff.GreaterThanOrEqual(target.Sub(orb)) && diff.LessThanOrEqual(target.Add(orb))
}

// Classify returns every aspect that holds between a and b, in id order.
func Classify(a, b *chart.Point) []Kind {
	var kinds []Kind
	for _, k := range Kinds() {
		if Holds(k, a, b) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Orb is how far the separation between a and b is from the exact aspect k, in degrees.
func Orb(k Kind, a, b *chart.Point) decimal.Decimal {
	diff := decimal.NewFromInt(int64(zodiac.Distance(a.Coordinate, b.Coordinate)))
	target := k.Definition().Target
	off := diff.Sub(target).Abs()
	if alt := diff.Sub(fullCircle.Sub(target)).Abs(); alt.LessThan(off) {
		off = alt
	}
	return off.Div(secondsPerDegree)
}
