package zodiac

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/shopspring/decimal"
)

const (
	SecondsPerMinute = 60
	SecondsPerDegree = 60 * SecondsPerMinute
	DegreesPerSign   = 30
	SecondsPerSign   = DegreesPerSign * SecondsPerDegree
	SignCount        = 12
	// FullCircle is the number of arc-seconds in 360°.
	FullCircle = SignCount * SecondsPerSign
)

// ErrOutOfRange reports a coordinate field outside its allowed range.
var ErrOutOfRange = errors.New("zodiac: coordinate field out of range")

var secondsPerDegreeDec = decimal.NewFromInt(SecondsPerDegree)

// Coordinate is a zodiacal position expressed as sign, degree, minute and second.
type Coordinate struct {
	Sign    uint8
	Degrees uint8
	Minutes uint8
	Seconds uint8
}

// New validates the fields and builds a Coordinate.
func New(sign, degrees, minutes, seconds int) (Coordinate, error) {
	if sign < 0 || sign >= SignCount {
		return Coordinate{}, fmt.Errorf("%w: sign %d", ErrOutOfRange, sign)
	}
	if degrees < 0 || degrees >= DegreesPerSign {
		return Coordinate{}, fmt.Errorf("%w: degrees %d", ErrOutOfRange, degrees)
	}
	if minutes < 0 || minutes >= 60 {
		return Coordinate{}, fmt.Errorf("%w: minutes %d", ErrOutOfRange, minutes)
	}
	if seconds < 0 || seconds >= 60 {
		return Coordinate{}, fmt.Errorf("%w: seconds %d", ErrOutOfRange, seconds)
	}
	return Coordinate{
		Sign:    uint8(sign),
		Degrees: uint8(degrees),
		Minutes: uint8(minutes),
		Seconds: uint8(seconds),
	}, nil
}

// MustNew is New for literals known to be valid.
func MustNew(sign, degrees, minutes, seconds int) Coordinate {
	c, err := New(sign, degrees, minutes, seconds)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize reduces any arc-second count into [0, FullCircle).
func Normalize(v int) int {
	return ((v % FullCircle) + FullCircle) % FullCircle
}

// FromSeconds converts a linear arc-second value, wrapping it first.
func FromSeconds(v int) Coordinate {
	v = Normalize(v)
	return Coordinate{
		Sign:    uint8(v / SecondsPerSign),
		Degrees: uint8((v / SecondsPerDegree) % DegreesPerSign),
		Minutes: uint8((v / SecondsPerMinute) % 60),
		Seconds: uint8(v % SecondsPerMinute),
	}
}

// InSeconds returns the linear position in arc-seconds.
func (c Coordinate) InSeconds() int {
	return ((int(c.Sign)*DegreesPerSign+int(c.Degrees))*SecondsPerDegree +
		int(c.Minutes)*SecondsPerMinute + int(c.Seconds))
}

// Decimal returns the position in decimal degrees.
func (c Coordinate) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c.InSeconds())).Div(secondsPerDegreeDec)
}

// Angle returns the position as an s1.Angle.
func (c Coordinate) Angle() s1.Angle {
	return s1.Angle(float64(c.InSeconds())/SecondsPerDegree) * s1.Degree
}

// Add shifts the coordinate by the given arc-seconds, wrapping around the circle.
func (c Coordinate) Add(seconds int) Coordinate {
	return FromSeconds(c.InSeconds() + seconds)
}

// Sub returns the position of c measured from origin.
func (c Coordinate) Sub(origin Coordinate) Coordinate {
	return FromSeconds(c.InSeconds() - origin.InSeconds())
}

// Opposite keeps degree, minute and second and moves six signs around.
func (c Coordinate) Opposite() Coordinate {
	c.Sign = uint8((int(c.Sign) + 6) % SignCount)
	return c
}

// Valid reports whether every field is in range.
func (c Coordinate) Valid() bool {
	return c.Sign < SignCount && c.Degrees < DegreesPerSign && c.Minutes < 60 && c.Seconds < 60
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%02d°%s%02d'%02d\"", c.Degrees, DefaultSigns().Sign(c.Sign).Abbreviation, c.Minutes, c.Seconds)
}

// Distance is the raw absolute difference in arc-seconds, not reduced to the shorter arc.
func Distance(a, b Coordinate) int {
	d := a.InSeconds() - b.InSeconds()
	if d < 0 {
		return -d
	}
	return d
}

// Separation is the shorter arc between two coordinates.
func Separation(a, b Coordinate) s1.Angle {
	d := Distance(a, b)
	if d > FullCircle/2 {
		d = FullCircle - d
	}
	return FromSeconds(d).Angle()
}
