package chart

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"astroaspects/internal/zodiac"
)

// Document is the file and wire form of a Bundle.
type Document struct {
	Chart  ChartDoc   `json:"chart" yaml:"chart"`
	Points []PointDoc `json:"points" yaml:"points"`
	Angles []AngleDoc `json:"angles" yaml:"angles"`
	Cusps  []CuspDoc  `json:"cusps" yaml:"cusps"`
}

type ChartDoc struct {
	ID       int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Subject  string    `json:"subject" yaml:"subject"`
	Location string    `json:"location,omitempty" yaml:"location,omitempty"`
	Origin   time.Time `json:"origin" yaml:"origin"`
	Type     uint8     `json:"type" yaml:"type"`
}

// CoordDoc is sign/degree/minute/second as written in chart files.
type CoordDoc struct {
	Sign    int `json:"sign" yaml:"sign"`
	Degrees int `json:"degrees" yaml:"degrees"`
	Minutes int `json:"minutes" yaml:"minutes"`
	Seconds int `json:"seconds" yaml:"seconds"`
}

type PointDoc struct {
	CoordDoc          `yaml:",inline"`
	ID                int64  `json:"id,omitempty" yaml:"id,omitempty"`
	CelestialObjectID int64  `json:"celestialObjectId" yaml:"celestialObjectId"`
	Name              string `json:"name" yaml:"name"`
	Category          uint8  `json:"category" yaml:"category"`
	Orientation       uint8  `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Orb               string `json:"orb" yaml:"orb"`
	Draconic          bool   `json:"draconic,omitempty" yaml:"draconic,omitempty"`
}

type AngleDoc struct {
	CoordDoc `yaml:",inline"`
	Angle    uint8 `json:"angle" yaml:"angle"`
}

type CuspDoc struct {
	CoordDoc    `yaml:",inline"`
	HouseSystem int `json:"houseSystem" yaml:"houseSystem"`
	House       int `json:"house" yaml:"house"`
}

func (c CoordDoc) coordinate() (zodiac.Coordinate, error) {
	return zodiac.New(c.Sign, c.Degrees, c.Minutes, c.Seconds)
}

func coordDoc(c zodiac.Coordinate) CoordDoc {
	return CoordDoc{Sign: int(c.Sign), Degrees: int(c.Degrees), Minutes: int(c.Minutes), Seconds: int(c.Seconds)}
}

// Bundle validates the document and converts it.
func (d Document) Bundle() (Bundle, error) {
	typ := Type(d.Chart.Type)
	if !typ.Valid() {
		return Bundle{}, fmt.Errorf("chart %q: unknown chart type %d", d.Chart.Subject, d.Chart.Type)
	}
	b := Bundle{
		Chart: Chart{
			ID:              d.Chart.ID,
			SubjectName:     d.Chart.Subject,
			SubjectLocation: d.Chart.Location,
			OriginAt:        d.Chart.Origin,
			Type:            typ,
		},
	}

	for _, p := range d.Points {
		coord, err := p.coordinate()
		if err != nil {
			return Bundle{}, fmt.Errorf("point %q: %w", p.Name, err)
		}
		if p.Category < uint8(MajorPlanetLuminary) || p.Category > uint8(Nodes) {
			return Bundle{}, fmt.Errorf("point %q: unknown category %d", p.Name, p.Category)
		}
		orb, err := decimal.NewFromString(p.Orb)
		if err != nil {
			return Bundle{}, fmt.Errorf("point %q: parse orb: %w", p.Name, err)
		}
		orientation := Orientation(p.Orientation)
		if orientation == 0 {
			orientation = Direct
		}
		b.Points = append(b.Points, &Point{
			ID:                p.ID,
			ChartID:           d.Chart.ID,
			CelestialObjectID: p.CelestialObjectID,
			Name:              p.Name,
			Coordinate:        coord,
			Category:          Category(p.Category),
			Orientation:       orientation,
			Draconic:          p.Draconic,
			AllowableOrb:      orb,
		})
	}

	for _, a := range d.Angles {
		coord, err := a.coordinate()
		if err != nil {
			return Bundle{}, fmt.Errorf("angle %d: %w", a.Angle, err)
		}
		if a.Angle > uint8(Midheaven) {
			return Bundle{}, fmt.Errorf("angle %d: only Vertex, Ascendant and Midheaven are stored", a.Angle)
		}
		b.Angles = append(b.Angles, Angle{ChartID: d.Chart.ID, AngleID: AngleID(a.Angle), Coordinate: coord})
	}

	for _, c := range d.Cusps {
		coord, err := c.coordinate()
		if err != nil {
			return Bundle{}, fmt.Errorf("cusp %d: %w", c.House, err)
		}
		if c.House < 0 || c.House > 12 {
			return Bundle{}, fmt.Errorf("cusp %d: house out of range", c.House)
		}
		b.Cusps = append(b.Cusps, Cusp{ChartID: d.Chart.ID, HouseSystemID: c.HouseSystem, House: c.House, Coordinate: coord})
	}

	return b, nil
}

// NewDocument converts a bundle into its wire form.
func NewDocument(b Bundle) Document {
	d := Document{
		Chart: ChartDoc{
			ID:       b.Chart.ID,
			Subject:  b.Chart.SubjectName,
			Location: b.Chart.SubjectLocation,
			Origin:   b.Chart.OriginAt,
			Type:     uint8(b.Chart.Type),
		},
	}
	for _, p := range b.Points {
		d.Points = append(d.Points, PointDoc{
			CoordDoc:          coordDoc(p.Coordinate),
			ID:                p.ID,
			CelestialObjectID: p.CelestialObjectID,
			Name:              p.Name,
			Category:          uint8(p.Category),
			Orientation:       uint8(p.Orientation),
			Orb:               p.AllowableOrb.String(),
			Draconic:          p.Draconic,
		})
	}
	for _, a := range b.Angles {
		d.Angles = append(d.Angles, AngleDoc{CoordDoc: coordDoc(a.Coordinate), Angle: uint8(a.AngleID)})
	}
	for _, c := range b.Cusps {
		d.Cusps = append(d.Cusps, CuspDoc{CoordDoc: coordDoc(c.Coordinate), HouseSystem: c.HouseSystemID, House: c.House})
	}
	return d
}
