package houses

import (
	"sort"

	"astroaspects/internal/chart"
	"astroaspects/internal/zodiac"
)

// Table resolves which house a coordinate falls in for one house system.
type Table struct {
	cusps []chart.Cusp
}

// NewTable drops the house-0 pseudo-cusp and orders the rest by position.
func NewTable(cusps []chart.Cusp) Table {
	kept := make([]chart.Cusp, 0, len(cusps))
	for _, c := range cusps {
		if c.House == 0 {
			continue
		}
		kept = append(kept, c)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Coordinate.InSeconds() < kept[j].Coordinate.InSeconds()
	})
	return Table{cusps: kept}
}

// House returns the house whose cusp is the last one at or before c. A coordinate ahead
// of every cusp belongs to the house that wraps past 0° Aries. Zero means no cusps.
func (t Table) House(c zodiac.Coordinate) int {
	if len(t.cusps) == 0 {
		return 0
	}
	pos := c.InSeconds()
	house := t.cusps[len(t.cusps)-1].House
	for _, cusp := range t.cusps {
		if cusp.Coordinate.InSeconds() <= pos {
			house = cusp.House
		}
	}
	return house
}

// Len is the number of real cusps.
func (t Table) Len() int {
	return len(t.cusps)
}

// Cusps returns the ordered cusps.
func (t Table) Cusps() []chart.Cusp {
	out := make([]chart.Cusp, len(t.cusps))
	copy(out, t.cusps)
	return out
}
