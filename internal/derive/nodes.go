package derive

import (
	"astroaspects/internal/chart"
)

// TrueNode returns the chart's "True Node" point, or nil.
func TrueNode(points []*chart.Point) *chart.Point {
	for _, p := range points {
		if p != nil && p.Name == chart.TrueNodeName && !p.Draconic {
			return p
		}
	}
	return nil
}

// SouthNode synthesizes the point opposite the True Node. Nil node gives nil.
func SouthNode(node *chart.Point) *chart.Point {
	if node == nil {
		return nil
	}
	south := node.Clone()
	south.ID = 0
	south.CelestialObjectID = 0
	south.Name = chart.SouthNodeName
	south.Coordinate = node.Coordinate.Opposite()
	south.AngleID = nil
	return south
}

// Mirror re-expresses p relative to the True Node. Draconic points are returned as is.
func Mirror(p, node *chart.Point) *chart.Point {
	if p == nil || p.Draconic || node == nil {
		return p
	}
	m := p.Clone()
	m.ID = 0
	m.CelestialObjectID = 0
	m.Name = chart.DraconicPrefix + p.Name
	m.Coordinate = p.Coordinate.Sub(node.Coordinate)
	m.Draconic = true
	m.AngleID = nil
	return m
}

// DraconicEligible reports whether a stored point gets a draconic mirror.
func DraconicEligible(p *chart.Point, asteroids bool) bool {
	if p == nil || p.Draconic {
		return false
	}
	switch p.Category {
	case chart.AngleHouseCusp, chart.FixedStar, chart.ArabicPart, chart.Nodes:
		return false
	case chart.Asteroid:
		return asteroids
	}
	return true
}

// DraconicSet mirrors the eligible stored points together with the synthesized angles and
// Arabic Parts. Angle mirrors keep their angle slot. Without a True Node the result is empty.
func DraconicSet(stored, angles, parts []*chart.Point, asteroids bool) []*chart.Point {
	node := TrueNode(stored)
	if node == nil {
		return nil
	}
	out := make([]*chart.Point, 0, len(stored)+len(angles)+len(parts))
	for _, p := range stored {
		if DraconicEligible(p, asteroids) {
			out = append(out, Mirror(p, node))
		}
	}
	out = append(out, mirrorAngles(angles, node)...)
	for _, p := range parts {
		if p != nil && !p.Draconic {
			out = append(out, Mirror(p, node))
		}
	}
	return out
}

// DraconicAngles mirrors the completed angle set, for the draconic angle listing.
func DraconicAngles(stored []*chart.Point, angles []chart.Angle) []*chart.Point {
	node := TrueNode(stored)
	if node == nil {
		return nil
	}
	return mirrorAngles(CompleteAngles(angles), node)
}

func mirrorAngles(angles []*chart.Point, node *chart.Point) []*chart.Point {
	out := make([]*chart.Point, 0, len(angles))
	for _, a := range angles {
		if a == nil || a.Draconic {
			continue
		}
		m := Mirror(a, node)
		if a.AngleID != nil {
			m.AngleID = chart.AngleSlot(*a.AngleID)
		}
		out = append(out, m)
	}
	return out
}

// DraconicCusps shifts every cusp into the draconic frame.
func DraconicCusps(stored []*chart.Point, cusps []chart.Cusp) []chart.Cusp {
	node := TrueNode(stored)
	if node == nil {
		return nil
	}
	out := make([]chart.Cusp, len(cusps))
	for i, c := range cusps {
		c.ID = 0
		c.Coordinate = c.Coordinate.Sub(node.Coordinate)
		out[i] = c
	}
	return out
}
