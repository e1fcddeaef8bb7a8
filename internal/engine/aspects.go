package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/houses"
	"astroaspects/internal/zodiac"
)

// AspectGroup is one aspect kind with the points that form it with the base.
type AspectGroup struct {
	AspectID   int      `json:"aspectId"`
	AspectName string   `json:"aspectName"`
	CSSClass   string   `json:"cssClass"`
	Members    []Member `json:"members"`
}

// Member is one point in an aspect group.
type Member struct {
	ID                     int64                    `json:"chartObjectId"`
	CelestialObjectID      int64                    `json:"celestialObjectId"`
	Name                   string                   `json:"celestialObjectName"`
	SignID                 uint8                    `json:"signId"`
	SignAbbreviation       string                   `json:"signAbbreviation"`
	ElementClass           string                   `json:"htmlTextCssClass"`
	Degrees                uint8                    `json:"degrees"`
	Minutes                uint8                    `json:"minutes"`
	Seconds                uint8                    `json:"seconds"`
	Orientation            string                   `json:"orientationAbbreviation"`
	CategoryName           string                   `json:"celestialObjectTypeName"`
	Draconic               bool                     `json:"draconic"`
	House                  int                      `json:"house"`
	AngleID                *chart.AngleID           `json:"angleId"`
	Orb                    decimal.Decimal          `json:"orb"`
	Separation             decimal.Decimal          `json:"separation"`
	BaseValid              bool                     `json:"baseValidForInterpretation"`
	BaseCelestialObjectID  int64                    `json:"baseCelestialObjectId"`
	BaseAngleID            *chart.AngleID           `json:"baseAngleId"`
	ValidForInterpretation bool                     `json:"validForInterpretation"`
	Key                    *chart.InterpretationKey `json:"interpretationKey,omitempty"`
}

// BuildAspects partitions candidates into the sixteen aspect groups against base. The base
// itself is skipped by identity and member order follows the candidate order. A nil base
// gives sixteen empty groups.
func BuildAspects(base *chart.Point, candidates []*chart.Point, table houses.Table, signs zodiac.SignTable) []AspectGroup {
	groups := make([]AspectGroup, 0, aspect.Count)
	for _, k := range aspect.Kinds() {
		def := k.Definition()
		groups = append(groups, AspectGroup{
			AspectID:   int(k),
			AspectName: def.Name,
			CSSClass:   def.CSSClass,
			Members:    []Member{},
		})
	}
	if base == nil {
		return groups
	}

	baseRef := chart.RefOf(base)
	baseValid := base.ValidForInterpretation()
	for _, p := range candidates {
		if p == nil || p == base {
			continue
		}
		for _, k := range aspect.Kinds() {
			if !aspect.Holds(k, base, p) {
				continue
			}
			m := newMember(p, table, signs)
			m.Orb = aspect.Orb(k, base, p).Round(2)
			m.Separation = separationDegrees(base.Coordinate, p.Coordinate)
			m.BaseValid = baseValid
			m.BaseCelestialObjectID = baseRef.CelestialObjectID
			m.BaseAngleID = base.AngleID
			if baseValid && m.ValidForInterpretation {
				if key, ok := chart.NewInterpretationKey(baseRef, chart.RefOf(p)); ok {
					m.Key = &key
				}
			}
			groups[k].Members = append(groups[k].Members, m)
		}
	}
	return groups
}

// separationDegrees is the shorter arc between a and b in degrees, to four places.
func separationDegrees(a, b zodiac.Coordinate) decimal.Decimal {
	return decimal.NewFromFloat(zodiac.Separation(a, b).Degrees()).Round(4)
}

func newMember(p *chart.Point, table houses.Table, signs zodiac.SignTable) Member {
	sign := signs.Of(p.Coordinate)
	return Member{
		ID:                     p.ID,
		CelestialObjectID:      p.CelestialObjectID,
		Name:                   p.Name,
		SignID:                 p.Coordinate.Sign,
		SignAbbreviation:       sign.Abbreviation,
		ElementClass:           sign.Element.CSSClass(),
		Degrees:                p.Coordinate.Degrees,
		Minutes:                p.Coordinate.Minutes,
		Seconds:                p.Coordinate.Seconds,
		Orientation:            p.Orientation.Abbreviation(),
		CategoryName:           p.Category.String(),
		Draconic:               p.Draconic,
		House:                  table.House(p.Coordinate),
		AngleID:                p.AngleID,
		ValidForInterpretation: p.ValidForInterpretation(),
	}
}

// Aspects lists the aspects formed with the selected base point within one chart.
func (e *Engine) Aspects(ctx context.Context, req Request, sel Selector) ([]AspectGroup, error) {
	set, err := e.AssembleCandidatePoints(ctx, req)
	if err != nil {
		return nil, err
	}
	base, err := set.Select(sel)
	if err != nil {
		return nil, err
	}
	return BuildAspects(base, set.All, set.Houses, e.signs), nil
}

// TransitAspects lays the base point of one chart over every candidate point of another.
// Houses come from the second chart.
func (e *Engine) TransitAspects(ctx context.Context, base, over Request, sel Selector) ([]AspectGroup, error) {
	if base.ChartID == over.ChartID {
		return nil, fmt.Errorf("%w: transit chart %d is the base chart", ErrInvalidArgument, over.ChartID)
	}
	baseSet, err := e.AssembleCandidatePoints(ctx, base)
	if err != nil {
		return nil, err
	}
	overSet, err := e.AssembleCandidatePoints(ctx, over)
	if err != nil {
		return nil, err
	}
	p, err := baseSet.Select(sel)
	if err != nil {
		return nil, err
	}
	return BuildAspects(p, overSet.All, overSet.Houses, e.signs), nil
}

// Hit is one aspect between a natal planet and a point of another chart.
type Hit struct {
	NatalChartID   int64
	TransitChartID int64
	NatalPoint     string
	TransitPoint   string
	Aspect         aspect.Kind
	Orb            decimal.Decimal
	TransitHouse   int
}

// TransitHits lists the aspects the natal chart's stored planets receive from the transit
// chart, keeping only the given kinds.
func (e *Engine) TransitHits(ctx context.Context, natal, transit Request, kinds []aspect.Kind) ([]Hit, error) {
	if natal.ChartID == transit.ChartID {
		return nil, fmt.Errorf("%w: transit chart %d is the natal chart", ErrInvalidArgument, transit.ChartID)
	}
	natalSet, err := e.AssembleCandidatePoints(ctx, natal)
	if err != nil {
		return nil, err
	}
	transitSet, err := e.AssembleCandidatePoints(ctx, transit)
	if err != nil {
		return nil, err
	}

	keep := make(map[aspect.Kind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}

	var hits []Hit
	for _, base := range natalSet.Stored {
		if base.Category != chart.MajorPlanetLuminary {
			continue
		}
		for _, g := range BuildAspects(base, transitSet.All, transitSet.Houses, e.signs) {
			k := aspect.Kind(g.AspectID)
			if !keep[k] {
				continue
			}
			for _, m := range g.Members {
				hits = append(hits, Hit{
					NatalChartID:   natal.ChartID,
					TransitChartID: transit.ChartID,
					NatalPoint:     base.Name,
					TransitPoint:   m.Name,
					Aspect:         k,
					Orb:            m.Orb,
					TransitHouse:   m.House,
				})
			}
		}
	}
	return hits, nil
}
