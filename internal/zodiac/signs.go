package zodiac

// Element is the classical element of a sign.
type Element uint8

const (
	Fire Element = iota + 1
	Earth
	Air
	Water
)

func (e Element) String() string {
	switch e {
	case Fire:
		return "Fire"
	case Earth:
		return "Earth"
	case Air:
		return "Air"
	case Water:
		return "Water"
	default:
		return "Unknown"
	}
}

// CSSClass is the text class the presentation layer uses for the element.
func (e Element) CSSClass() string {
	switch e {
	case Fire:
		return "fire-text"
	case Earth:
		return "earth-text"
	case Air:
		return "air-text"
	case Water:
		return "water-text"
	default:
		return ""
	}
}

// Sign describes one zodiac sign.
type Sign struct {
	ID           uint8
	Name         string
	Abbreviation string
	Element      Element
	// ModernRuler names the ruling planet under modern rulerships.
	ModernRuler string
}

// SignTable is a read-only lookup indexed by sign id.
type SignTable [SignCount]Sign

var defaultSigns = SignTable{
	{ID: 0, Name: "Aries", Abbreviation: "Ari", Element: Fire, ModernRuler: "Mars"},
	{ID: 1, Name: "Taurus", Abbreviation: "Tau", Element: Earth, ModernRuler: "Venus"},
	{ID: 2, Name: "Gemini", Abbreviation: "Gem", Element: Air, ModernRuler: "Mercury"},
	{ID: 3, Name: "Cancer", Abbreviation: "Can", Element: Water, ModernRuler: "Moon"},
	{ID: 4, Name: "Leo", Abbreviation: "Leo", Element: Fire, ModernRuler: "Sun"},
	{ID: 5, Name: "Virgo", Abbreviation: "Vir", Element: Earth, ModernRuler: "Mercury"},
	{ID: 6, Name: "Libra", Abbreviation: "Lib", Element: Air, ModernRuler: "Venus"},
	{ID: 7, Name: "Scorpio", Abbreviation: "Sco", Element: Water, ModernRuler: "Pluto"},
	{ID: 8, Name: "Sagittarius", Abbreviation: "Sag", Element: Fire, ModernRuler: "Jupiter"},
	{ID: 9, Name: "Capricorn", Abbreviation: "Cap", Element: Earth, ModernRuler: "Saturn"},
	{ID: 10, Name: "Aquarius", Abbreviation: "Aqu", Element: Air, ModernRuler: "Uranus"},
	{ID: 11, Name: "Pisces", Abbreviation: "Pis", Element: Water, ModernRuler: "Neptune"},
}

// DefaultSigns returns a copy of the standard sign table.
func DefaultSigns() SignTable {
	return defaultSigns
}

// Sign returns the entry for id, wrapping ids past Pisces.
func (t SignTable) Sign(id uint8) Sign {
	return t[int(id)%SignCount]
}

// Of returns the sign a coordinate falls in.
func (t SignTable) Of(c Coordinate) Sign {
	return t.Sign(c.Sign)
}

// Lookup finds a sign by name or abbreviation.
func (t SignTable) Lookup(name string) (Sign, bool) {
	for _, s := range t {
		if s.Name == name || s.Abbreviation == name {
			return s, true
		}
	}
	return Sign{}, false
}
