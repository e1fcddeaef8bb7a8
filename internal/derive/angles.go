package derive

import (
	"sort"

	"github.com/shopspring/decimal"

	"astroaspects/internal/chart"
	"astroaspects/internal/zodiac"
)

var (
	vertexOrb = decimal.NewFromInt(1)
	angleOrb  = decimal.NewFromInt(3)
)

// AngleOrb is the allowable orb of an angle point.
func AngleOrb(id chart.AngleID) decimal.Decimal {
	if id == chart.Vertex || id == chart.Antivertex {
		return vertexOrb
	}
	return angleOrb
}

// CompleteAngles turns the stored angles into points and adds the opposite of each one:
// Antivertex, Descendant and Imum Coeli. Stored angles come first, ordered by angle id.
func CompleteAngles(stored []chart.Angle) []*chart.Point {
	base := make([]chart.Angle, 0, len(stored))
	for _, a := range stored {
		if _, ok := a.AngleID.Opposite(); ok {
			base = append(base, a)
		}
	}
	sort.SliceStable(base, func(i, j int) bool { return base[i].AngleID < base[j].AngleID })

	points := make([]*chart.Point, 0, len(base)*2)
	for _, a := range base {
		points = append(points, anglePoint(a.ChartID, a.AngleID, a.Coordinate))
	}
	for _, a := range base {
		opp, _ := a.AngleID.Opposite()
		points = append(points, anglePoint(a.ChartID, opp, a.Coordinate.Opposite()))
	}
	return points
}

func anglePoint(chartID int64, angle chart.AngleID, c zodiac.Coordinate) *chart.Point {
	return &chart.Point{
		ChartID:      chartID,
		Name:         angle.String(),
		Coordinate:   c,
		Category:     chart.AngleHouseCusp,
		Orientation:  chart.Direct,
		AllowableOrb: AngleOrb(angle),
		AngleID:      chart.AngleSlot(angle),
	}
}
