package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpretationKeyObjectsDescending(t *testing.T) {
	key, ok := NewInterpretationKey(KeyRef{CelestialObjectID: 3}, KeyRef{CelestialObjectID: 9})
	if !ok {
		t.Fatal("two objects should form a key")
	}
	if *key.First.CelestialObjectID != 9 || *key.Second.CelestialObjectID != 3 {
		t.Fatalf("unexpected order %+v", key)
	}

	swapped, _ := NewInterpretationKey(KeyRef{CelestialObjectID: 9}, KeyRef{CelestialObjectID: 3})
	if diff := cmp.Diff(key, swapped); diff != "" {
		t.Fatalf("key depends on argument order (-a +b):\n%s", diff)
	}
}

func TestInterpretationKeyAnglesDescending(t *testing.T) {
	key, ok := NewInterpretationKey(KeyRef{AngleID: AngleSlot(Ascendant)}, KeyRef{AngleID: AngleSlot(ImumCoeli)})
	if !ok {
		t.Fatal("two angles should form a key")
	}
	if *key.First.AngleID != ImumCoeli || *key.Second.AngleID != Ascendant {
		t.Fatalf("unexpected order %+v", key)
	}
	if key.First.CelestialObjectID != nil || key.Second.CelestialObjectID != nil {
		t.Fatal("angle key should not carry object ids")
	}
}

func TestInterpretationKeyObjectBeforeAngle(t *testing.T) {
	obj := KeyRef{CelestialObjectID: 1}
	ang := KeyRef{AngleID: AngleSlot(Midheaven)}
	for _, pair := range [][2]KeyRef{{obj, ang}, {ang, obj}} {
		key, ok := NewInterpretationKey(pair[0], pair[1])
		if !ok {
			t.Fatal("mixed pair should form a key")
		}
		if key.First.CelestialObjectID == nil || *key.First.CelestialObjectID != 1 {
			t.Fatalf("object should come first: %+v", key)
		}
		if key.Second.AngleID == nil || *key.Second.AngleID != Midheaven {
			t.Fatalf("angle should come second: %+v", key)
		}
	}
}

func TestInterpretationKeyRejectsSynthesized(t *testing.T) {
	if _, ok := NewInterpretationKey(KeyRef{}, KeyRef{CelestialObjectID: 2}); ok {
		t.Fatal("synthesized point should not form a key")
	}
	dr := &Point{CelestialObjectID: 4, Draconic: true}
	if _, ok := NewInterpretationKey(RefOf(dr), KeyRef{CelestialObjectID: 2}); ok {
		t.Fatal("draconic point should not form a key")
	}
}

func TestValidForInterpretation(t *testing.T) {
	cases := []struct {
		name string
		p    *Point
		want bool
	}{
		{"stored planet", &Point{CelestialObjectID: 1}, true},
		{"angle", &Point{AngleID: AngleSlot(Vertex)}, true},
		{"arabic part", &Point{Category: ArabicPart}, false},
		{"draconic", &Point{CelestialObjectID: 1, Draconic: true}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := tc.p.ValidForInterpretation(); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestTypeTransitCandidate(t *testing.T) {
	if Natal.TransitCandidate() || CompositeMidpoint.TransitCandidate() {
		t.Fatal("natal and composite charts are not transit candidates")
	}
	for _, typ := range []Type{Event, Transit, Progressed, SaturnReturn, LunarEclipse} {
		if !typ.TransitCandidate() {
			t.Fatalf("%s should be a transit candidate", typ)
		}
	}
}

func TestAngleHelpers(t *testing.T) {
	if opp, ok := Midheaven.Opposite(); !ok || opp != ImumCoeli {
		t.Fatalf("opposite of MC = %v %v", opp, ok)
	}
	if _, ok := Descendant.Opposite(); ok {
		t.Fatal("synthesized angles have no stored opposite")
	}
	if id, ok := AngleByName("Imum Coeli"); !ok || id != ImumCoeli {
		t.Fatalf("lookup = %v %v", id, ok)
	}
}
