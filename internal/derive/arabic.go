package derive

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"astroaspects/internal/chart"
	"astroaspects/internal/zodiac"
)

var partOrb = decimal.NewFromInt(1)

// ArabicInput is what the part generator reads for one chart and house system.
type ArabicInput struct {
	ChartID int64
	Points  []*chart.Point
	Angles  []chart.Angle
	Cusps   []chart.Cusp
}

// ArabicParts computes every resolvable part in ArabicFormulas order. Missing cusps, planets or
// angles give an empty result, as does any failure while evaluating the table.
func ArabicParts(in ArabicInput, signs zodiac.SignTable) (parts []*chart.Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			parts = nil
			err = fmt.Errorf("arabic parts for chart %d: %v", in.ChartID, r)
		}
	}()

	ops, ok := resolveOperands(in, signs)
	if !ok {
		return nil, nil
	}
	day := IsDayChart(ops[Sun], ops[Cusp(1)], ops[Cusp(7)])

	parts = make([]*chart.Point, 0, len(ArabicFormulas))
	for _, f := range ArabicFormulas {
		add, sub := f.Terms(day)
		part := newPart(in.ChartID, f.Name, ops[f.Base], ops[add], ops[sub])
		if part == nil {
			continue
		}
		switch f.Name {
		case FortuneName:
			ops[Fortune] = part
		case SpiritName:
			ops[Spirit] = part
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// IsDayChart is true when the Sun is past the 7th cusp or before the 1st, i.e. above the horizon.
func IsDayChart(sun, first, seventh *chart.Point) bool {
	if sun == nil || first == nil || seventh == nil {
		return false
	}
	s := sun.InSeconds()
	return s > seventh.InSeconds() || s < first.InSeconds()
}

func newPart(chartID int64, name string, base, add, sub *chart.Point) *chart.Point {
	if base == nil || add == nil || sub == nil {
		return nil
	}
	return &chart.Point{
		ChartID:      chartID,
		Name:         name,
		Coordinate:   zodiac.FromSeconds(base.InSeconds() + add.InSeconds() - sub.InSeconds()),
		Category:     chart.ArabicPart,
		Orientation:  chart.Direct,
		Draconic:     base.Draconic,
		AllowableOrb: partOrb,
	}
}

func resolveOperands(in ArabicInput, signs zodiac.SignTable) (map[Operand]*chart.Point, bool) {
	cusps := make([]chart.Cusp, 0, 12)
	for _, c := range in.Cusps {
		if c.House != 0 {
			cusps = append(cusps, c)
		}
	}
	sort.SliceStable(cusps, func(i, j int) bool { return cusps[i].House < cusps[j].House })
	if len(cusps) != 12 {
		return nil, false
	}
	for i, c := range cusps {
		if c.House != i+1 {
			return nil, false
		}
	}

	planets := make(map[string]*chart.Point, len(planetNames))
	count := 0
	for _, p := range in.Points {
		if p == nil || p.Category != chart.MajorPlanetLuminary || p.Draconic {
			continue
		}
		count++
		if _, seen := planets[p.Name]; !seen {
			planets[p.Name] = p
		}
	}
	if count != len(planetNames) {
		return nil, false
	}

	ops := make(map[Operand]*chart.Point, int(rulerBase)+12)
	for i, name := range planetNames {
		p, found := planets[name]
		if !found {
			return nil, false
		}
		ops[Operand(i)] = p
	}

	for _, a := range in.Angles {
		if a.AngleID == chart.Midheaven {
			ops[Midheaven] = fixedPoint(in.ChartID, a.Coordinate)
		}
	}
	if ops[Midheaven] == nil || !hasAngle(in.Angles, chart.Ascendant) {
		return nil, false
	}

	for i, c := range cusps {
		ops[Cusp(i+1)] = fixedPoint(in.ChartID, c.Coordinate)
		ops[RulerOf(i+1)] = planets[signs.Of(c.Coordinate).ModernRuler]
	}
	ops[RulerOfMoonHouse] = ops[RulerOf(moonHouseIndex(cusps, ops[Moon])+1)]

	ops[SouthNodeOp] = SouthNode(TrueNode(in.Points))
	ops[Cancer15] = fixedPoint(in.ChartID, zodiac.MustNew(3, 15, 0, 0))
	ops[Libra8Deg50] = fixedPoint(in.ChartID, zodiac.MustNew(6, 8, 50, 0))
	return ops, true
}

// moonHouseIndex finds the last cusp, in house order, that lies before the Moon. When none
// does the search repeats one full circle ahead, which lands on the last cusp.
func moonHouseIndex(cusps []chart.Cusp, moon *chart.Point) int {
	m := moon.InSeconds()
	for _, limit := range []int{m, m + zodiac.FullCircle} {
		idx := -1
		for i, c := range cusps {
			if c.Coordinate.InSeconds() < limit {
				idx = i
			}
		}
		if idx >= 0 {
			return idx
		}
	}
	return len(cusps) - 1
}

func hasAngle(angles []chart.Angle, id chart.AngleID) bool {
	for _, a := range angles {
		if a.AngleID == id {
			return true
		}
	}
	return false
}

func fixedPoint(chartID int64, c zodiac.Coordinate) *chart.Point {
	return &chart.Point{
		ChartID:      chartID,
		Coordinate:   c,
		Category:     chart.MajorPlanetLuminary,
		Orientation:  chart.Direct,
		AllowableOrb: partOrb,
	}
}
