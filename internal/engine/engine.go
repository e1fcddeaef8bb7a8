package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"astroaspects/internal/chart"
	"astroaspects/internal/logging"
	"astroaspects/internal/zodiac"
)

var (
	// ErrInvalidArgument reports a request the engine cannot act on.
	ErrInvalidArgument = errors.New("engine: invalid argument")
	// ErrPointNotFound reports a stored point id that does not belong to the chart.
	ErrPointNotFound = errors.New("engine: point not found")
)

// Source is the read side of chart storage.
type Source interface {
	Chart(ctx context.Context, chartID int64) (chart.Chart, error)
	Charts(ctx context.Context) ([]chart.Chart, error)
	Points(ctx context.Context, chartID int64) ([]*chart.Point, error)
	Angles(ctx context.Context, chartID int64) ([]chart.Angle, error)
	Cusps(ctx context.Context, chartID int64, houseSystemID int) ([]chart.Cusp, error)
	AllCusps(ctx context.Context, chartID int64) ([]chart.Cusp, error)
}

// Request identifies one chart computation.
type Request struct {
	ChartID       int64
	HouseSystemID int
	Flags         chart.Flags
}

func (r Request) validate() error {
	if r.ChartID <= 0 {
		return fmt.Errorf("%w: chart id %d", ErrInvalidArgument, r.ChartID)
	}
	return nil
}

// Engine derives points and aspects for stored charts.
type Engine struct {
	source Source
	signs  zodiac.SignTable
	logger zerolog.Logger
}

// New builds an Engine reading from source.
func New(source Source, logger zerolog.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}
	return &Engine{
		source: source,
		signs:  zodiac.DefaultSigns(),
		logger: logging.Component(logger, "engine"),
	}, nil
}

// Signs exposes the sign table used for rulerships and labels.
func (e *Engine) Signs() zodiac.SignTable {
	return e.signs
}

// Chart loads a chart record.
func (e *Engine) Chart(ctx context.Context, chartID int64) (chart.Chart, error) {
	if chartID <= 0 {
		return chart.Chart{}, fmt.Errorf("%w: chart id %d", ErrInvalidArgument, chartID)
	}
	c, err := e.source.Chart(ctx, chartID)
	if err != nil {
		return chart.Chart{}, fmt.Errorf("load chart %d: %w", chartID, err)
	}
	return c, nil
}

// Bundle loads a chart with every stored row, for export.
func (e *Engine) Bundle(ctx context.Context, chartID int64) (chart.Bundle, error) {
	c, err := e.Chart(ctx, chartID)
	if err != nil {
		return chart.Bundle{}, err
	}
	points, err := e.source.Points(ctx, chartID)
	if err != nil {
		return chart.Bundle{}, fmt.Errorf("load points: %w", err)
	}
	angles, err := e.source.Angles(ctx, chartID)
	if err != nil {
		return chart.Bundle{}, fmt.Errorf("load angles: %w", err)
	}
	cusps, err := e.source.AllCusps(ctx, chartID)
	if err != nil {
		return chart.Bundle{}, fmt.Errorf("load cusps: %w", err)
	}
	return chart.Bundle{Chart: c, Points: points, Angles: angles, Cusps: cusps}, nil
}
