package chart

// KeyPart is one side of an interpretation lookup key. Exactly one field is set.
type KeyPart struct {
	CelestialObjectID *int64   `json:"celestialObjectId"`
	AngleID           *AngleID `json:"angleId"`
}

// InterpretationKey is the canonical ordered pair used to look up aspect interpretations.
type InterpretationKey struct {
	First  KeyPart `json:"first"`
	Second KeyPart `json:"second"`
}

// KeyRef describes a point by its celestial object id (0 when none) and optional angle slot.
type KeyRef struct {
	CelestialObjectID int64
	AngleID           *AngleID
}

// RefOf builds a KeyRef for p.
func RefOf(p *Point) KeyRef {
	if p == nil {
		return KeyRef{}
	}
	ref := KeyRef{AngleID: p.AngleID}
	if !p.Draconic {
		ref.CelestialObjectID = p.CelestialObjectID
	}
	return ref
}

func (r KeyRef) isObject() bool { return r.CelestialObjectID != 0 }
func (r KeyRef) isAngle() bool  { return r.AngleID != nil }

// NewInterpretationKey orders two refs canonically: objects by descending id, angles by
// descending angle id, and an object always ahead of an angle. ok is false when either
// side is neither an object nor an angle.
func NewInterpretationKey(a, b KeyRef) (InterpretationKey, bool) {
	switch {
	case a.isObject() && b.isObject():
		if a.CelestialObjectID > b.CelestialObjectID {
			return InterpretationKey{First: objectPart(a), Second: objectPart(b)}, true
		}
		return InterpretationKey{First: objectPart(b), Second: objectPart(a)}, true
	case a.isObject() && b.isAngle():
		return InterpretationKey{First: objectPart(a), Second: anglePart(b)}, true
	case a.isAngle() && b.isObject():
		return InterpretationKey{First: objectPart(b), Second: anglePart(a)}, true
	case a.isAngle() && b.isAngle():
		if *a.AngleID > *b.AngleID {
			return InterpretationKey{First: anglePart(a), Second: anglePart(b)}, true
		}
		return InterpretationKey{First: anglePart(b), Second: anglePart(a)}, true
	}
	return InterpretationKey{}, false
}

func objectPart(r KeyRef) KeyPart {
	id := r.CelestialObjectID
	return KeyPart{CelestialObjectID: &id}
}

func anglePart(r KeyRef) KeyPart {
	id := *r.AngleID
	return KeyPart{AngleID: &id}
}
