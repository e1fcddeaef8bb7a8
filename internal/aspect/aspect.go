package aspect

import (
	"github.com/shopspring/decimal"

	"astroaspects/internal/zodiac"
)

// Kind identifies one of the sixteen aspects. Values double as the public aspect ids.
type Kind uint8

const (
	Conjunction Kind = iota
	Opposition
	Square
	Semisquare
	Sesquiquadrate
	Trine
	Sextile
	Quincunx
	Quintile
	Biquintile
	Semisextile
	Septile
	Biseptile
	Triseptile
	Novile
	Decile
)

// Count is the number of aspect kinds.
const Count = 16

// Definition holds the fixed geometry of one aspect.
type Definition struct {
	Kind     Kind
	Name     string
	CSSClass string
	// Target is the exact separation in arc-seconds.
	Target decimal.Decimal
	// Ceiling caps the effective orb in degrees; zero means uncapped.
	Ceiling decimal.Decimal
	// Major aspects admit fixed stars and route them to the min-orb branch.
	AdmitsFixedStars bool
}

var (
	ceilingTwo     = decimal.NewFromInt(2)
	ceilingOneHalf = decimal.RequireFromString("1.5")
	ceilingOne     = decimal.NewFromInt(1)
	seventh        = decimal.NewFromInt(zodiac.FullCircle).Div(decimal.NewFromInt(7))
)

func degrees(d int64) decimal.Decimal {
	return decimal.NewFromInt(d * zodiac.SecondsPerDegree)
}

var definitions = [Count]Definition{
	{Kind: Conjunction, Name: "Conjunction", CSSClass: "conjunction", Target: degrees(0), AdmitsFixedStars: true},
	{Kind: Opposition, Name: "Opposition", CSSClass: "opposition", Target: degrees(180), AdmitsFixedStars: true},
	{Kind: Square, Name: "Square", CSSClass: "square", Target: degrees(90)},
	{Kind: Semisquare, Name: "Semisquare", CSSClass: "semisquare", Target: degrees(45), Ceiling: ceilingTwo},
	{Kind: Sesquiquadrate, Name: "Sesquiquadrate", CSSClass: "sesquiquadrate", Target: degrees(135), Ceiling: ceilingTwo},
	{Kind: Trine, Name: "Trine", CSSClass: "trine", Target: degrees(120)},
	{Kind: Sextile, Name: "Sextile", CSSClass: "sextile", Target: degrees(60)},
	{Kind: Quincunx, Name: "Quincunx", CSSClass: "quincunx", Target: degrees(150), Ceiling: ceilingTwo},
	{Kind: Quintile, Name: "Quintile", CSSClass: "quintile", Target: degrees(72), Ceiling: ceilingTwo},
	{Kind: Biquintile, Name: "Biquintile", CSSClass: "biquintile", Target: degrees(144), Ceiling: ceilingTwo},
	{Kind: Semisextile, Name: "Semisextile", CSSClass: "semisextile", Target: degrees(30), Ceiling: ceilingOneHalf},
	{Kind: Septile, Name: "Septile", CSSClass: "septile", Target: seventh, Ceiling: ceilingOneHalf},
	{Kind: Biseptile, Name: "Biseptile", CSSClass: "biseptile", Target: seventh.Mul(decimal.NewFromInt(2)), Ceiling: ceilingOneHalf},
	{Kind: Triseptile, Name: "Triseptile", CSSClass: "triseptile", Target: seventh.Mul(decimal.NewFromInt(3)), Ceiling: ceilingOneHalf},
	{Kind: Novile, Name: "Novile", CSSClass: "novile", Target: degrees(40), Ceiling: ceilingOne},
	{Kind: Decile, Name: "Decile", CSSClass: "decile", Target: degrees(36), Ceiling: ceilingOne},
}

// Definition returns the geometry of k. Kinds outside the sixteen give a zero definition
// named "Unknown".
func (k Kind) Definition() Definition {
	if !k.Valid() {
		return Definition{Kind: k, Name: "Unknown"}
	}
	return definitions[k]
}

func (k Kind) String() string {
	return k.Definition().Name
}

// Valid reports whether k is one of the sixteen kinds.
func (k Kind) Valid() bool {
	return int(k) < Count
}

// Kinds lists every aspect in output order.
func Kinds() []Kind {
	kinds := make([]Kind, Count)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Majors lists the five uncapped aspects.
func Majors() []Kind {
	return []Kind{Conjunction, Opposition, Square, Trine, Sextile}
}

// ByName resolves an aspect name, case sensitive.
func ByName(name string) (Kind, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d.Kind, true
		}
	}
	return 0, false
}
