package zodiac

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundTripLinear(t *testing.T) {
	for v := 0; v < FullCircle; v += 997 {
		if got := FromSeconds(v).InSeconds(); got != v {
			t.Fatalf("round trip of %d gave %d", v, got)
		}
	}
	last := FullCircle - 1
	if got := FromSeconds(last).InSeconds(); got != last {
		t.Fatalf("round trip of %d gave %d", last, got)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 0},
		{FullCircle, 0},
		{FullCircle + 5, 5},
		{-1, FullCircle - 1},
		{-FullCircle * 3, 0},
		{-2*FullCircle - 10, FullCircle - 10},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFromSecondsFields(t *testing.T) {
	c := FromSeconds(((3*30+15)*3600)+(20*60)+7)
	want := Coordinate{Sign: 3, Degrees: 15, Minutes: 20, Seconds: 7}
	if c != want {
		t.Fatalf("got %+v want %+v", c, want)
	}
}

func TestNewRejectsOutOfRange(t *testing.T) {
	bad := [][4]int{{12, 0, 0, 0}, {0, 30, 0, 0}, {0, 0, 60, 0}, {0, 0, 0, 60}, {-1, 0, 0, 0}}
	for _, f := range bad {
		if _, err := New(f[0], f[1], f[2], f[3]); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("New%v should fail with ErrOutOfRange, got %v", f, err)
		}
	}
	if _, err := New(11, 29, 59, 59); err != nil {
		t.Fatalf("upper bound should be valid: %v", err)
	}
}

func TestDecimal(t *testing.T) {
	c := MustNew(1, 0, 30, 0)
	if !c.Decimal().Equal(decimal.RequireFromString("30.5")) {
		t.Fatalf("decimal = %s", c.Decimal())
	}
}

func TestOppositeAndSub(t *testing.T) {
	c := MustNew(8, 12, 1, 2)
	o := c.Opposite()
	if o.Sign != 2 || o.Degrees != 12 || o.Minutes != 1 || o.Seconds != 2 {
		t.Fatalf("opposite = %+v", o)
	}
	node := MustNew(0, 10, 0, 0)
	got := MustNew(0, 5, 0, 0).Sub(node)
	if got != MustNew(11, 25, 0, 0) {
		t.Fatalf("sub wrapped to %+v", got)
	}
}

func TestSeparationUsesShorterArc(t *testing.T) {
	a := MustNew(0, 1, 0, 0)
	b := MustNew(11, 29, 0, 0)
	if d := Distance(a, b); d != 358*SecondsPerDegree {
		t.Fatalf("distance = %d", d)
	}
	if deg := Separation(a, b).Degrees(); math.Abs(deg-2) > 1e-9 {
		t.Fatalf("separation = %v", deg)
	}
}

func TestSignTable(t *testing.T) {
	signs := DefaultSigns()
	if s := signs.Sign(3); s.Name != "Cancer" || s.Element != Water || s.ModernRuler != "Moon" {
		t.Fatalf("unexpected sign %+v", s)
	}
	if s, ok := signs.Lookup("Lib"); !ok || s.ID != 6 {
		t.Fatalf("lookup Lib = %+v %v", s, ok)
	}
	if signs.Of(MustNew(4, 0, 0, 0)).Element.CSSClass() != "fire-text" {
		t.Fatal("Leo should render as fire")
	}
}
