package chart

import "time"

// Type is the kind of entered chart.
type Type uint8

const (
	Natal                   Type = 1
	Event                   Type = 2
	Transit                 Type = 3
	Progressed              Type = 4
	Heliocentric            Type = 9
	CompositeMidpoint       Type = 10
	CompositeReferencePlace Type = 11
	DavisonCorrected        Type = 12
	DavisonUncorrected      Type = 13
	SolarReturn             Type = 20
	LunarReturn             Type = 21
	MercuryReturn           Type = 22
	VenusReturn             Type = 23
	MarsReturn              Type = 24
	JupiterReturn           Type = 25
	SaturnReturn            Type = 26
	SolarEclipse            Type = 30
	LunarEclipse            Type = 31
)

var typeNames = map[Type]string{
	Natal:                   "Natal",
	Event:                   "Event",
	Transit:                 "Transit",
	Progressed:              "Progressed",
	Heliocentric:            "Heliocentric",
	CompositeMidpoint:       "Composite (Midpoint)",
	CompositeReferencePlace: "Composite (Reference Place)",
	DavisonCorrected:        "Davison (Corrected)",
	DavisonUncorrected:      "Davison (Uncorrected)",
	SolarReturn:             "Solar Return",
	LunarReturn:             "Lunar Return",
	MercuryReturn:           "Mercury Return",
	VenusReturn:             "Venus Return",
	MarsReturn:              "Mars Return",
	JupiterReturn:           "Jupiter Return",
	SaturnReturn:            "Saturn Return",
	SolarEclipse:            "Solar Eclipse",
	LunarEclipse:            "Lunar Eclipse",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether t is a known chart type.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// TransitCandidate reports whether charts of this type can be laid over another chart.
func (t Type) TransitCandidate() bool {
	switch t {
	case Event, Transit, Progressed,
		SolarReturn, LunarReturn, MercuryReturn, VenusReturn, MarsReturn, JupiterReturn, SaturnReturn,
		SolarEclipse, LunarEclipse:
		return true
	}
	return false
}

// Chart is an entered chart record.
type Chart struct {
	ID              int64     `json:"enteredChartId"`
	SubjectName     string    `json:"subjectName"`
	SubjectLocation string    `json:"subjectLocation"`
	OriginAt        time.Time `json:"originDateTime"`
	Type            Type      `json:"chartTypeId"`
}

// Bundle is a chart with every stored row that belongs to it.
type Bundle struct {
	Chart  Chart
	Points []*Point
	Angles []Angle
	Cusps  []Cusp
}
