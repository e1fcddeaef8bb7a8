package engine

import (
	"context"
	"fmt"
	"sort"

	"astroaspects/internal/chart"
	"astroaspects/internal/derive"
)

// ListingEntry is one row of the chart listing.
type ListingEntry struct {
	ID                int64          `json:"chartObjectId"`
	CelestialObjectID int64          `json:"celestialObjectId"`
	Name              string         `json:"celestialObjectName"`
	SignID            uint8          `json:"signId"`
	SignAbbreviation  string         `json:"signAbbreviation"`
	ElementClass      string         `json:"htmlTextCssClass"`
	Degrees           uint8          `json:"degrees"`
	Minutes           uint8          `json:"minutes"`
	Seconds           uint8          `json:"seconds"`
	Orientation       string         `json:"orientationAbbreviation"`
	CategoryName      string         `json:"celestialObjectTypeName"`
	Draconic          bool           `json:"draconic"`
	House             int            `json:"house"`
	AngleID           *chart.AngleID `json:"angleId"`
}

// AngleEntry is one row of an angle listing.
type AngleEntry struct {
	ID               int64         `json:"chartAngleId"`
	Name             string        `json:"angleName"`
	AngleID          chart.AngleID `json:"angleId"`
	SignID           uint8         `json:"signId"`
	SignAbbreviation string        `json:"signAbbreviation"`
	ElementClass     string        `json:"htmlTextCssClass"`
	Degrees          uint8         `json:"degrees"`
	Minutes          uint8         `json:"minutes"`
	Seconds          uint8         `json:"seconds"`
}

// HouseEntry is one row of a house listing.
type HouseEntry struct {
	ID               int64  `json:"chartHouseId"`
	House            int    `json:"houseId"`
	SignID           uint8  `json:"signId"`
	SignAbbreviation string `json:"signAbbreviation"`
	ElementClass     string `json:"htmlTextCssClass"`
	Degrees          uint8  `json:"degrees"`
	Minutes          uint8  `json:"minutes"`
	Seconds          uint8  `json:"seconds"`
}

// ChartListing lists every candidate point of the chart with its house.
func (e *Engine) ChartListing(ctx context.Context, req Request) ([]ListingEntry, error) {
	set, err := e.AssembleCandidatePoints(ctx, req)
	if err != nil {
		return nil, err
	}
	entries := make([]ListingEntry, 0, len(set.All))
	for _, p := range set.All {
		sign := e.signs.Of(p.Coordinate)
		entries = append(entries, ListingEntry{
			ID:                p.ID,
			CelestialObjectID: p.CelestialObjectID,
			Name:              p.Name,
			SignID:            p.Coordinate.Sign,
			SignAbbreviation:  sign.Abbreviation,
			ElementClass:      sign.Element.CSSClass(),
			Degrees:           p.Coordinate.Degrees,
			Minutes:           p.Coordinate.Minutes,
			Seconds:           p.Coordinate.Seconds,
			Orientation:       p.Orientation.Abbreviation(),
			CategoryName:      p.Category.String(),
			Draconic:          p.Draconic,
			House:             set.Houses.House(p.Coordinate),
			AngleID:           p.AngleID,
		})
	}
	return entries, nil
}

// AngleListing lists the stored angles followed by their synthesized opposites.
func (e *Engine) AngleListing(ctx context.Context, chartID int64) ([]AngleEntry, error) {
	if chartID <= 0 {
		return nil, fmt.Errorf("%w: chart id %d", ErrInvalidArgument, chartID)
	}
	angles, err := e.source.Angles(ctx, chartID)
	if err != nil {
		return nil, fmt.Errorf("load angles: %w", err)
	}
	ids := make(map[chart.AngleID]int64, len(angles))
	for _, a := range angles {
		ids[a.AngleID] = a.ID
	}
	points := derive.CompleteAngles(angles)
	entries := make([]AngleEntry, 0, len(points))
	for i, p := range points {
		entry := e.angleEntry(p)
		if i < len(points)/2 {
			entry.ID = ids[entry.AngleID]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DraconicAngleListing is AngleListing in the True Node frame. Empty without a True Node.
func (e *Engine) DraconicAngleListing(ctx context.Context, chartID int64) ([]AngleEntry, error) {
	if chartID <= 0 {
		return nil, fmt.Errorf("%w: chart id %d", ErrInvalidArgument, chartID)
	}
	points, err := e.source.Points(ctx, chartID)
	if err != nil {
		return nil, fmt.Errorf("load points: %w", err)
	}
	angles, err := e.source.Angles(ctx, chartID)
	if err != nil {
		return nil, fmt.Errorf("load angles: %w", err)
	}
	mirrored := derive.DraconicAngles(points, angles)
	entries := make([]AngleEntry, 0, len(mirrored))
	for _, p := range mirrored {
		entries = append(entries, e.angleEntry(p))
	}
	return entries, nil
}

func (e *Engine) angleEntry(p *chart.Point) AngleEntry {
	sign := e.signs.Of(p.Coordinate)
	entry := AngleEntry{
		Name:             p.Name,
		SignID:           p.Coordinate.Sign,
		SignAbbreviation: sign.Abbreviation,
		ElementClass:     sign.Element.CSSClass(),
		Degrees:          p.Coordinate.Degrees,
		Minutes:          p.Coordinate.Minutes,
		Seconds:          p.Coordinate.Seconds,
	}
	if p.AngleID != nil {
		entry.AngleID = *p.AngleID
	}
	return entry
}

// HouseListing lists the cusps of one house system in house order.
func (e *Engine) HouseListing(ctx context.Context, chartID int64, houseSystemID int) ([]HouseEntry, error) {
	if chartID <= 0 {
		return nil, fmt.Errorf("%w: chart id %d", ErrInvalidArgument, chartID)
	}
	cusps, err := e.source.Cusps(ctx, chartID, houseSystemID)
	if err != nil {
		return nil, fmt.Errorf("load cusps: %w", err)
	}
	return e.houseEntries(cusps), nil
}

// DraconicHouseListing is HouseListing in the True Node frame. Empty without a True Node.
func (e *Engine) DraconicHouseListing(ctx context.Context, chartID int64, houseSystemID int) ([]HouseEntry, error) {
	if chartID <= 0 {
		return nil, fmt.Errorf("%w: chart id %d", ErrInvalidArgument, chartID)
	}
	points, err := e.source.Points(ctx, chartID)
	if err != nil {
		return nil, fmt.Errorf("load points: %w", err)
	}
	cusps, err := e.source.Cusps(ctx, chartID, houseSystemID)
	if err != nil {
		return nil, fmt.Errorf("load cusps: %w", err)
	}
	return e.houseEntries(derive.DraconicCusps(points, cusps)), nil
}

func (e *Engine) houseEntries(cusps []chart.Cusp) []HouseEntry {
	sorted := make([]chart.Cusp, len(cusps))
	copy(sorted, cusps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].House < sorted[j].House })

	entries := make([]HouseEntry, 0, len(sorted))
	for _, c := range sorted {
		sign := e.signs.Of(c.Coordinate)
		entries = append(entries, HouseEntry{
			ID:               c.ID,
			House:            c.House,
			SignID:           c.Coordinate.Sign,
			SignAbbreviation: sign.Abbreviation,
			ElementClass:     sign.Element.CSSClass(),
			Degrees:          c.Coordinate.Degrees,
			Minutes:          c.Coordinate.Minutes,
			Seconds:          c.Coordinate.Seconds,
		})
	}
	return entries
}

// TransitCharts lists the other charts that can be laid over chartID.
func (e *Engine) TransitCharts(ctx context.Context, chartID int64) ([]chart.Chart, error) {
	if chartID <= 0 {
		return nil, fmt.Errorf("%w: chart id %d", ErrInvalidArgument, chartID)
	}
	charts, err := e.source.Charts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	out := make([]chart.Chart, 0, len(charts))
	for _, c := range charts {
		if c.ID != chartID && c.Type.TransitCandidate() {
			out = append(out, c)
		}
	}
	return out, nil
}

// LatestChart returns the chart of the given type with the newest origin time.
func (e *Engine) LatestChart(ctx context.Context, typ chart.Type) (chart.Chart, bool, error) {
	charts, err := e.source.Charts(ctx)
	if err != nil {
		return chart.Chart{}, false, fmt.Errorf("list charts: %w", err)
	}
	var (
		latest chart.Chart
		found  bool
	)
	for _, c := range charts {
		if c.Type != typ {
			continue
		}
		if !found || c.OriginAt.After(latest.OriginAt) {
			latest, found = c, true
		}
	}
	return latest, found, nil
}

// Presence reports whether a named object exists in a chart.
type Presence struct {
	Name   string `json:"celestialObjectName"`
	Exists bool   `json:"objectExists"`
}

// Existence summarizes which object families a chart carries.
type Existence struct {
	Planets               []Presence `json:"planets"`
	AllPlanetsExist       bool       `json:"allPlanetsAndLuminariesExist"`
	SecondaryObjects      []Presence `json:"secondaryObjects"`
	SecondaryObjectsExist bool       `json:"allSecondaryObjectsExist"`
}

// Existence checks the ten planets and the asteroids or fixed stars stored for a chart.
func (e *Engine) Existence(ctx context.Context, chartID int64) (Existence, error) {
	if chartID <= 0 {
		return Existence{}, fmt.Errorf("%w: chart id %d", ErrInvalidArgument, chartID)
	}
	points, err := e.source.Points(ctx, chartID)
	if err != nil {
		return Existence{}, fmt.Errorf("load points: %w", err)
	}

	out := Existence{AllPlanetsExist: true}
	for _, name := range derive.PlanetNames() {
		p := chart.FindByName(points, name)
		exists := p != nil && p.Category == chart.MajorPlanetLuminary && !p.Draconic
		out.Planets = append(out.Planets, Presence{Name: name, Exists: exists})
		out.AllPlanetsExist = out.AllPlanetsExist && exists
	}
	for _, p := range points {
		if p.Draconic || (p.Category != chart.Asteroid && p.Category != chart.FixedStar) {
			continue
		}
		out.SecondaryObjects = append(out.SecondaryObjects, Presence{Name: p.Name, Exists: true})
	}
	out.SecondaryObjectsExist = len(out.SecondaryObjects) > 0
	return out, nil
}
