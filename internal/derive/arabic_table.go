package derive

// Operand selects one input of an Arabic Part formula.
type Operand uint8

const (
	Sun Operand = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Midheaven
	Fortune
	Spirit
	SouthNodeOp
	Cancer15
	Libra8Deg50
	RulerOfMoonHouse
	cuspBase
	rulerBase = cuspBase + 12
)

// Cusp selects the cusp of a house, 1 to 12.
func Cusp(house int) Operand { return cuspBase + Operand(house-1) }

// RulerOf selects the modern ruler of a house cusp's sign.
func RulerOf(house int) Operand { return rulerBase + Operand(house-1) }

// Formula computes a part as Base + Add − Sub. At night, SwapAtNight exchanges Add and Sub.
type Formula struct {
	Name        string
	Base        Operand
	Add         Operand
	Sub         Operand
	SwapAtNight bool
}

// Terms returns the add and subtract operands in effect for a day or night chart.
func (f Formula) Terms(day bool) (add, sub Operand) {
	if f.SwapAtNight && !day {
		return f.Sub, f.Add
	}
	return f.Add, f.Sub
}

const (
	FortuneName = "Part of Fortune"
	SpiritName  = "Part of Spirit"
)

var (
	first   = Cusp(1)
	second  = Cusp(2)
	third   = Cusp(3)
	fourth  = Cusp(4)
	fifth   = Cusp(5)
	seventh = Cusp(7)
	eighth  = Cusp(8)
	ninth   = Cusp(9)
)

// ArabicFormulas lists every part in output order. Add and Sub are the day-chart terms.
var ArabicFormulas = []Formula{
	{FortuneName, first, Moon, Sun, true},
	{SpiritName, first, Sun, Moon, true},

	{"Part of Ancestors/Relations", first, Mars, Saturn, true},
	{"Part of Children", first, Saturn, Jupiter, true},
	{"Part of Danger, Violence, Debt", first, Mercury, Saturn, true},
	{"Part of Death (Parents)", first, Jupiter, Saturn, true},
	{"Part of Debt", first, Mercury, Saturn, true},
	{"Part of Destiny", Midheaven, Sun, Moon, true},
	{"Part of Fame", first, Jupiter, Sun, true},
	{"Part of Father", first, Sun, Saturn, true},
	{"Part of Grandparents (1)", first, Jupiter, second, true},
	{"Part of Grandparents (2)", first, Saturn, second, true},
	{"Part of Journeys (Water)", first, Cancer15, Saturn, true},
	{"Part of Knowledge", first, Moon, Mercury, true},
	{"Part of Life, Reincarnation", first, Saturn, Jupiter, true},
	{"Part of Peril", first, eighth, Saturn, true},
	{"Part of Real Estate (Land)", first, Moon, Saturn, true},
	{"Part of Real Estate (Investment)", first, Jupiter, Mercury, true},
	{"Part of Son-in-Laws", first, Venus, Saturn, true},
	{"Part of Success", first, Jupiter, Fortune, true},
	{"Part of Surgery", first, Saturn, Mars, true},
	{"Part of Victory", first, Jupiter, Spirit, true},

	{"Part of Ability", first, Mars, RulerOf(1), false},
	{"Part of Abundance", first, Sun, Moon, false},
	{"Part of Accident", first, Saturn, Mars, false},
	{"Part of Accomplishment", first, Sun, Jupiter, false},
	{"Part of Action/Reasoning", first, Mars, Mercury, false},
	{"Part of Addiction", first, SouthNodeOp, Neptune, false},
	{"Part of Administrators", first, Mars, Mercury, false},
	{"Part of Agriculture", first, Saturn, Venus, false},
	{"Part of Allegiance", first, Saturn, Sun, false},
	{"Part of Ancestral Heritage", first, Moon, eighth, false},
	{"Part of Armies", first, Saturn, Mars, false},
	{"Part of Art", first, Venus, Mercury, false},
	{"Part of Assassination (1)", first, RulerOf(12), Neptune, false},
	{"Part of Assassination (2)", Mars, Neptune, Uranus, false},
	{"Part of Assurance", first, Jupiter, Mercury, false},
	{"Part of Astrology", first, Uranus, Mercury, false},
	{"Part of Bad Luck", first, Fortune, Spirit, false},
	{"Part of Bankruptcy (1)", Jupiter, Neptune, Uranus, false},
	{"Part of Bankruptcy (2)", Jupiter, Jupiter, Uranus, false},
	{"Part of Beauty", first, Venus, Sun, false},
	{"Part of Benific Change", first, Pluto, Jupiter, false},
	{"Part of Benevolence", first, Jupiter, Pluto, false},
	{"Part of Business Partnerships", first, seventh, RulerOf(10), false},
	{"Part of Cancer", first, Neptune, Jupiter, false},
	{"Part of Catastrophe (1)", first, Uranus, Sun, false},
	{"Part of Catastrophe (2)", first, Uranus, Saturn, false},
	{"Part of Caution", first, Neptune, Saturn, false},
	{"Part of Commerce (1)", first, Mercury, Sun, false},
	{"Part of Commerce (2)", first, Mars, Sun, false},
	{"Part of Controversy", first, Jupiter, Mars, false},
	{"Part of Corruptness", first, Neptune, Venus, false},
	{"Part of Curiosity", first, Moon, Mercury, false},
	{"Part of Damage", first, Neptune, Venus, false},
	{"Part of Daughters", first, Venus, Moon, false},
	{"Part of Death", first, eighth, Moon, false},
	{"Part of Desire, Sexual Attraction", first, fifth, RulerOf(5), false},
	{"Part of Destruction", first, Mars, Sun, false},
	{"Part of Disease", first, Mars, Mercury, false},
	{"Part of Divorce (1)", first, Venus, seventh, false},
	{"Part of Divorce (2)", first, seventh, Saturn, false},
	{"Part of Eccentricity", first, Mercury, Uranus, false},
	{"Part of Energy, Sex Drive", first, Pluto, Venus, false},
	{"Part of Expected Birth (1)", first, RulerOfMoonHouse, Moon, false},
	{"Part of Expected Birth (2)", first, Venus, Moon, false},
	{"Part of Famous Friends", first, Fortune, Sun, false},
	{"Part of Fascination", first, Venus, Uranus, false},
	{"Part of Fatality", first, Saturn, Sun, false},
	{"Part of Fate (Karma)", first, Saturn, Sun, false},
	{"Part of Fraud", first, Neptune, Sun, false},
	{"Part of Friends (1)", first, Moon, Venus, false},
	{"Part of Friends (2)", first, Mercury, Moon, false},
	{"Part of Friends (3)", first, Moon, Uranus, false},
	{"Part of Genius", first, Sun, Neptune, false},
	{"Part of Guidance", first, Neptune, Uranus, false},
	{"Part of Happiness", first, Uranus, Jupiter, false},
	{"Part of Homosexuality", first, Mars, Uranus, false},
	{"Part of Horsemanship", first, Moon, Saturn, false},
	{"Part of Identity", first, Saturn, Moon, false},
	{"Part of Imprisonment", first, Sun, Neptune, false},
	{"Part of Increase", first, Jupiter, Sun, false},
	{"Part of Inheritance (1)", first, Moon, Saturn, false},
	{"Part of Inheritance (2)", first, Jupiter, Venus, false},
	{"Part of Journeys (Air)", first, Uranus, ninth, false},
	{"Part of Journeys (Land)", first, ninth, ninth, false},
	{"Part of Kings, Rulers", first, Moon, Mercury, false},
	{"Part of Love", first, Venus, Sun, false},
	{"Part of Lovers", Mars, Venus, fifth, false},
	{"Part of Luck", first, Moon, Jupiter, false},
	{"Part of Marriage", first, seventh, Venus, false},
	{"Part of Marriage of Woman (1)", first, Saturn, Venus, false},
	{"Part of Marriage of Woman (2)", first, Mars, Moon, false},
	{"Part of Marriage of Man (1)", first, Venus, Saturn, false},
	{"Part of Marriage of Man (2)", first, Venus, Sun, false},
	{"Part of Mother", first, Moon, Saturn, false},
	{"Part of Partners", first, seventh, Venus, false},
	{"Part of Possessions", first, second, RulerOf(2), false},
	{"Part of Secret Enemies", first, Moon, Saturn, false},
	{"Part of Short Journeys", first, third, RulerOf(3), false},
	{"Part of Siblings", first, Saturn, Jupiter, false},
	{"Part of Sickness", first, Mars, Saturn, false},
	{"Part of Sons", fourth, Moon, Sun, false},
	{"Part of Success (Investment)", first, Venus, Saturn, false},
	{"Part of Suicide(1)", first, eighth, Neptune, false},
	{"Part of Suicide(2)", first, Jupiter, Neptune, false},
	{"Part of Tragedy", first, Saturn, Sun, false},
	{"Part of Unusual Events", first, Uranus, Moon, false},
	{"Part of Weddings, Legal Contracts", ninth, third, Venus, false},
	{"Part of Widowhood", first, Libra8Deg50, Neptune, false},
}

var planetNames = [...]string{
	Sun:     "Sun",
	Moon:    "Moon",
	Mercury: "Mercury",
	Venus:   "Venus",
	Mars:    "Mars",
	Jupiter: "Jupiter",
	Saturn:  "Saturn",
	Uranus:  "Uranus",
	Neptune: "Neptune",
	Pluto:   "Pluto",
}

// PlanetNames lists the ten major planets and luminaries Arabic Parts depend on.
func PlanetNames() []string {
	return append([]string(nil), planetNames[:]...)
}
