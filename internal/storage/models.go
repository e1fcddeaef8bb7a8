package storage

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/zodiac"
)

// Notice records a transit aspect that has already been announced.
type Notice struct {
	ID             int64
	NatalChartID   int64
	TransitChartID int64
	NatalPoint     string
	TransitPoint   string
	Aspect         aspect.Kind
	Orb            decimal.Decimal
	CreatedAt      time.Time
}

// rowScanner is satisfied by pgx.Row, pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func coordinateFrom(sign, degrees, minutes, seconds int) (zodiac.Coordinate, error) {
	c, err := zodiac.New(sign, degrees, minutes, seconds)
	if err != nil {
		return zodiac.Coordinate{}, fmt.Errorf("stored coordinate: %w", err)
	}
	return c, nil
}

func scanPoint(row rowScanner) (*chart.Point, error) {
	var (
		p                               chart.Point
		sign, degrees, minutes, seconds int
		category, orientation           int
		orbStr                          string
	)
	if err := row.Scan(
		&p.ID,
		&p.ChartID,
		&p.CelestialObjectID,
		&p.Name,
		&sign,
		&degrees,
		&minutes,
		&seconds,
		&category,
		&orientation,
		&p.Draconic,
		&orbStr,
	); err != nil {
		return nil, err
	}

	coord, err := coordinateFrom(sign, degrees, minutes, seconds)
	if err != nil {
		return nil, fmt.Errorf("point %d: %w", p.ID, err)
	}
	orb, err := decimal.NewFromString(orbStr)
	if err != nil {
		return nil, fmt.Errorf("parse allowable orb: %w", err)
	}
	p.Coordinate = coord
	p.Category = chart.Category(category)
	p.Orientation = chart.Orientation(orientation)
	p.AllowableOrb = orb
	return &p, nil
}

func scanAngle(row rowScanner) (chart.Angle, error) {
	var (
		a                               chart.Angle
		angleID                         int
		sign, degrees, minutes, seconds int
	)
	if err := row.Scan(&a.ID, &a.ChartID, &angleID, &sign, &degrees, &minutes, &seconds); err != nil {
		return chart.Angle{}, err
	}
	coord, err := coordinateFrom(sign, degrees, minutes, seconds)
	if err != nil {
		return chart.Angle{}, fmt.Errorf("angle %d: %w", a.ID, err)
	}
	a.AngleID = chart.AngleID(angleID)
	a.Coordinate = coord
	return a, nil
}

func scanCusp(row rowScanner) (chart.Cusp, error) {
	var (
		c                               chart.Cusp
		sign, degrees, minutes, seconds int
	)
	if err := row.Scan(&c.ID, &c.ChartID, &c.HouseSystemID, &c.House, &sign, &degrees, &minutes, &seconds); err != nil {
		return chart.Cusp{}, err
	}
	coord, err := coordinateFrom(sign, degrees, minutes, seconds)
	if err != nil {
		return chart.Cusp{}, fmt.Errorf("cusp %d: %w", c.ID, err)
	}
	c.Coordinate = coord
	return c, nil
}

// scanNotice reads a notice row; createdAt receives the driver's native
// timestamp representation.
func scanNotice(row rowScanner, createdAt any) (Notice, error) {
	var (
		n        Notice
		aspectID int
		orbStr   string
	)
	if err := row.Scan(&n.ID, &n.NatalChartID, &n.TransitChartID, &n.NatalPoint, &n.TransitPoint, &aspectID, &orbStr, createdAt); err != nil {
		return Notice{}, err
	}
	orb, err := decimal.NewFromString(orbStr)
	if err != nil {
		return Notice{}, fmt.Errorf("parse notice orb: %w", err)
	}
	n.Aspect = aspect.Kind(aspectID)
	n.Orb = orb
	return n, nil
}

func coordinateArgs(c zodiac.Coordinate) []any {
	return []any{int(c.Sign), int(c.Degrees), int(c.Minutes), int(c.Seconds)}
}
