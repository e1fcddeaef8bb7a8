package chart

import (
	"github.com/shopspring/decimal"

	"astroaspects/internal/zodiac"
)

const (
	TrueNodeName   = "True Node"
	SouthNodeName  = "South Node"
	DraconicPrefix = "Dr. "
)

// Category classifies the celestial object behind a point; each carries its own orb policy.
type Category uint8

const (
	MajorPlanetLuminary Category = 1
	Asteroid            Category = 2
	ArabicPart          Category = 3
	FixedStar           Category = 4
	AngleHouseCusp      Category = 5
	Nodes               Category = 6
)

func (c Category) String() string {
	switch c {
	case MajorPlanetLuminary:
		return "Major Planet/Luminary"
	case Asteroid:
		return "Asteroid"
	case ArabicPart:
		return "Arabic Part"
	case FixedStar:
		return "Fixed Star"
	case AngleHouseCusp:
		return "Angle/House Cusp"
	case Nodes:
		return "Nodes"
	default:
		return "Unknown"
	}
}

// Orientation is the direct/retrograde marker. Display only.
type Orientation uint8

const (
	Direct     Orientation = 1
	Retrograde Orientation = 2
)

// Abbreviation renders the orientation the way listings show it.
func (o Orientation) Abbreviation() string {
	if o == Retrograde {
		return "R"
	}
	return "D"
}

// AngleID identifies one of the six chart angles.
type AngleID uint8

const (
	Vertex     AngleID = 0
	Ascendant  AngleID = 1
	Midheaven  AngleID = 2
	Antivertex AngleID = 3
	Descendant AngleID = 4
	ImumCoeli  AngleID = 5
)

var angleNames = [...]string{"Vertex", "Ascendant", "Midheaven", "Antivertex", "Descendant", "Imum Coeli"}

func (a AngleID) String() string {
	if int(a) < len(angleNames) {
		return angleNames[a]
	}
	return "Unknown"
}

// Opposite returns the angle 180° away, and whether a is one of the stored angles.
func (a AngleID) Opposite() (AngleID, bool) {
	switch a {
	case Vertex:
		return Antivertex, true
	case Ascendant:
		return Descendant, true
	case Midheaven:
		return ImumCoeli, true
	}
	return 0, false
}

// AngleByName resolves an angle display name.
func AngleByName(name string) (AngleID, bool) {
	for i, n := range angleNames {
		if n == name {
			return AngleID(i), true
		}
	}
	return 0, false
}

// Point is a single position in a chart, stored or synthesized.
type Point struct {
	// ID is the stored record id; 0 for synthesized points.
	ID                int64
	ChartID           int64
	CelestialObjectID int64
	Name              string
	Coordinate        zodiac.Coordinate
	Category          Category
	Orientation       Orientation
	Draconic          bool
	AllowableOrb      decimal.Decimal
	// AngleID is set only for the six angle points.
	AngleID *AngleID
}

// InSeconds is the linear coordinate in arc-seconds.
func (p *Point) InSeconds() int {
	return p.Coordinate.InSeconds()
}

// IsAngle reports whether the point occupies an angle slot.
func (p *Point) IsAngle() bool {
	return p != nil && p.AngleID != nil
}

// ValidForInterpretation is true for real celestial objects and for named angles.
func (p *Point) ValidForInterpretation() bool {
	if p == nil {
		return false
	}
	return (p.CelestialObjectID > 0 && !p.Draconic) || p.AngleID != nil
}

// Clone returns a shallow copy that does not share the angle slot pointer.
func (p *Point) Clone() *Point {
	c := *p
	if p.AngleID != nil {
		id := *p.AngleID
		c.AngleID = &id
	}
	return &c
}

// AngleSlot returns a pointer to id, for literals.
func AngleSlot(id AngleID) *AngleID {
	return &id
}

// Angle is a stored chart angle record (Vertex, Ascendant or Midheaven).
type Angle struct {
	ID         int64
	ChartID    int64
	AngleID    AngleID
	Coordinate zodiac.Coordinate
}

// Cusp is a house boundary for one house system. House 0 is the Vertex pseudo-cusp.
type Cusp struct {
	ID            int64
	ChartID       int64
	HouseSystemID int
	House         int
	Coordinate    zodiac.Coordinate
}

// Flags select which optional point families join a candidate set.
type Flags struct {
	Draconic  bool
	Arabic    bool
	Asteroids bool
	Stars     bool
}

// FindByName returns the first point with the given name.
func FindByName(points []*Point, name string) *Point {
	for _, p := range points {
		if p != nil && p.Name == name {
			return p
		}
	}
	return nil
}
