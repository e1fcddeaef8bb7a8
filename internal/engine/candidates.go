package engine

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"astroaspects/internal/chart"
	"astroaspects/internal/derive"
	"astroaspects/internal/houses"
)

// CandidateSet is every point that can take part in an aspect for one chart, plus its houses.
type CandidateSet struct {
	Request Request
	// Raw holds every stored point, unfiltered.
	Raw      []*chart.Point
	Stored   []*chart.Point
	Angles   []*chart.Point
	Parts    []*chart.Point
	Draconic []*chart.Point
	Cusps    []chart.Cusp
	Houses   houses.Table
	// All is the union of the four families, ordered by coordinate.
	All []*chart.Point
}

// AssembleCandidatePoints loads the chart's rows, runs the generators the flags ask for and
// returns the merged set.
func (e *Engine) AssembleCandidatePoints(ctx context.Context, req Request) (*CandidateSet, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var (
		points []*chart.Point
		angles []chart.Angle
		cusps  []chart.Cusp
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		points, err = e.source.Points(gctx, req.ChartID)
		if err != nil {
			return fmt.Errorf("load points: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		angles, err = e.source.Angles(gctx, req.ChartID)
		if err != nil {
			return fmt.Errorf("load angles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cusps, err = e.source.Cusps(gctx, req.ChartID, req.HouseSystemID)
		if err != nil {
			return fmt.Errorf("load cusps: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return e.assemble(req, points, angles, cusps), nil
}

func (e *Engine) assemble(req Request, points []*chart.Point, angles []chart.Angle, cusps []chart.Cusp) *CandidateSet {
	set := &CandidateSet{
		Request: req,
		Raw:     points,
		Stored:  filterStored(points, req.Flags),
		Angles:  derive.CompleteAngles(angles),
		Cusps:   cusps,
		Houses:  houses.NewTable(cusps),
	}

	if req.Flags.Arabic {
		parts, err := derive.ArabicParts(derive.ArabicInput{
			ChartID: req.ChartID,
			Points:  points,
			Angles:  angles,
			Cusps:   cusps,
		}, e.signs)
		if err != nil {
			e.logger.Warn().Err(err).Int64("chart_id", req.ChartID).Msg("arabic parts skipped")
		}
		set.Parts = parts
	}
	if req.Flags.Draconic {
		set.Draconic = derive.DraconicSet(points, set.Angles, set.Parts, req.Flags.Asteroids)
	}

	all := make([]*chart.Point, 0, len(set.Stored)+len(set.Angles)+len(set.Parts)+len(set.Draconic))
	all = append(all, set.Stored...)
	all = append(all, set.Angles...)
	all = append(all, set.Parts...)
	all = append(all, set.Draconic...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].InSeconds() < all[j].InSeconds() })
	set.All = all

	e.logger.Debug().
		Int64("chart_id", req.ChartID).
		Int("stored", len(set.Stored)).
		Int("angles", len(set.Angles)).
		Int("parts", len(set.Parts)).
		Int("draconic", len(set.Draconic)).
		Msg("candidate points assembled")
	return set
}

// filterStored keeps stored points that are neither draconic, angles, nor Arabic Parts, and
// keeps asteroids and fixed stars only when their flags are set.
func filterStored(points []*chart.Point, flags chart.Flags) []*chart.Point {
	out := make([]*chart.Point, 0, len(points))
	for _, p := range points {
		if p == nil || p.Draconic {
			continue
		}
		switch p.Category {
		case chart.AngleHouseCusp, chart.ArabicPart:
			continue
		case chart.Asteroid:
			if !flags.Asteroids {
				continue
			}
		case chart.FixedStar:
			if !flags.Stars {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Selector names the base point of an aspect listing. Exactly one field should be set; the
// first non-empty one in declaration order wins.
type Selector struct {
	PointID      int64
	AngleName    string
	PartName     string
	DraconicName string
}

// Empty reports whether no selector field is set.
func (s Selector) Empty() bool {
	return s.PointID == 0 && s.AngleName == "" && s.PartName == "" && s.DraconicName == ""
}

// Select resolves the base point. A stored point id must exist in the chart; a name that
// matches nothing gives a nil base.
func (s *CandidateSet) Select(sel Selector) (*chart.Point, error) {
	switch {
	case sel.PointID > 0:
		for _, p := range s.Raw {
			if p != nil && p.ID == sel.PointID {
				return p, nil
			}
		}
		return nil, fmt.Errorf("%w: point %d in chart %d", ErrPointNotFound, sel.PointID, s.Request.ChartID)
	case sel.AngleName != "":
		return chart.FindByName(s.Angles, sel.AngleName), nil
	case sel.PartName != "":
		return chart.FindByName(s.Parts, sel.PartName), nil
	case sel.DraconicName != "":
		return chart.FindByName(s.Draconic, sel.DraconicName), nil
	}
	return nil, fmt.Errorf("%w: no base point selected", ErrInvalidArgument)
}
