package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"astroaspects/internal/chart"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrChartNotFound reports a chart id with no stored record.
	ErrChartNotFound = errors.New("storage: chart not found")
)

const (
	selectChartSQL = `SELECT id, subject_name, subject_location, origin_at, chart_type
    FROM charts
    WHERE id = $1;`

	listChartsSQL = `SELECT id, subject_name, subject_location, origin_at, chart_type
    FROM charts
    ORDER BY id;`

	listPointsSQL = `SELECT
        id,
        chart_id,
        celestial_object_id,
        name,
        sign,
        degrees,
        minutes,
        seconds,
        category,
        orientation,
        draconic,
        allowable_orb
    FROM chart_points
    WHERE chart_id = $1
    ORDER BY celestial_object_id, id;`

	listAnglesSQL = `SELECT id, chart_id, angle_id, sign, degrees, minutes, seconds
    FROM chart_angles
    WHERE chart_id = $1
    ORDER BY angle_id;`

	listCuspsSQL = `SELECT id, chart_id, house_system_id, house, sign, degrees, minutes, seconds
    FROM chart_cusps
    WHERE chart_id = $1
      AND house_system_id = $2
    ORDER BY house;`

	listAllCuspsSQL = `SELECT id, chart_id, house_system_id, house, sign, degrees, minutes, seconds
    FROM chart_cusps
    WHERE chart_id = $1
    ORDER BY house_system_id, house;`

	insertChartSQL = `INSERT INTO charts (subject_name, subject_location, origin_at, chart_type)
    VALUES ($1,$2,$3,$4)
    RETURNING id;`

	insertPointSQL = `INSERT INTO chart_points (
        chart_id,
        celestial_object_id,
        name,
        sign,
        degrees,
        minutes,
        seconds,
        category,
        orientation,
        draconic,
        allowable_orb
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
    );`

	insertAngleSQL = `INSERT INTO chart_angles (chart_id, angle_id, sign, degrees, minutes, seconds)
    VALUES ($1,$2,$3,$4,$5,$6);`

	insertCuspSQL = `INSERT INTO chart_cusps (chart_id, house_system_id, house, sign, degrees, minutes, seconds)
    VALUES ($1,$2,$3,$4,$5,$6,$7);`

	insertNoticeSQL = `INSERT INTO transit_notices (
        natal_chart_id,
        transit_chart_id,
        natal_point,
        transit_point,
        aspect_id,
        orb
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (natal_chart_id, transit_chart_id, natal_point, transit_point, aspect_id) DO NOTHING
    RETURNING id;`

	noticeExistsSQL = `SELECT EXISTS (
        SELECT 1 FROM transit_notices
        WHERE natal_chart_id = $1
          AND transit_chart_id = $2
          AND natal_point = $3
          AND transit_point = $4
          AND aspect_id = $5
    );`

	listRecentNoticesSQL = `SELECT
        id,
        natal_chart_id,
        transit_chart_id,
        natal_point,
        transit_point,
        aspect_id,
        orb,
        created_at
    FROM transit_notices
    ORDER BY created_at DESC, id DESC
    LIMIT $1;`

	deleteNoticesBeforeSQL = `DELETE FROM transit_notices WHERE created_at < $1;`

	createMigrationsTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version    INTEGER PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );`
	currentMigrationSQL = `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`
	recordMigrationSQL  = `INSERT INTO schema_migrations (version) VALUES ($1);`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ChartReader is the read side the aspect engine consumes.
type ChartReader interface {
	Chart(ctx context.Context, chartID int64) (chart.Chart, error)
	Charts(ctx context.Context) ([]chart.Chart, error)
	Points(ctx context.Context, chartID int64) ([]*chart.Point, error)
	Angles(ctx context.Context, chartID int64) ([]chart.Angle, error)
	Cusps(ctx context.Context, chartID int64, houseSystemID int) ([]chart.Cusp, error)
	AllCusps(ctx context.Context, chartID int64) ([]chart.Cusp, error)
}

// ChartWriter persists imported charts.
type ChartWriter interface {
	SaveChart(ctx context.Context, bundle chart.Bundle) (int64, error)
}

// NoticeStore defines operations for transit notice auditing.
type NoticeStore interface {
	// NoticeExists reports whether the same aspect between the same points was recorded.
	NoticeExists(ctx context.Context, n Notice) (bool, error)
	// RecordNotice inserts n and reports false when it was already recorded.
	RecordNotice(ctx context.Context, n Notice) (bool, error)
	ListRecentNotices(ctx context.Context, limit int) ([]Notice, error)
	DeleteNoticesBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Repository is everything the application needs from a chart store.
type Repository interface {
	ChartReader
	ChartWriter
	NoticeStore
	AdvisoryLocker
	Migrate(ctx context.Context) error
	Close()
}

// Store is the PostgreSQL repository.
type Store struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Store)(nil)

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// best effort; the session lock also drops when the connection closes
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// Migrate applies pending schema steps tracked in schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, createMigrationsTableSQL); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := pool.QueryRow(ctx, currentMigrationSQL).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			for _, stmt := range m.Postgres {
				if _, err := tx.Exec(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.Exec(ctx, recordMigrationSQL, m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	return nil
}

// Chart loads a chart record.
func (s *Store) Chart(ctx context.Context, chartID int64) (chart.Chart, error) {
	pool, err := s.getPool()
	if err != nil {
		return chart.Chart{}, err
	}

	var (
		c   chart.Chart
		typ int
	)
	scanErr := pool.QueryRow(ctx, selectChartSQL, chartID).Scan(&c.ID, &c.SubjectName, &c.SubjectLocation, &c.OriginAt, &typ)
	if errors.Is(scanErr, pgx.ErrNoRows) {
		return chart.Chart{}, fmt.Errorf("%w: %d", ErrChartNotFound, chartID)
	}
	if scanErr != nil {
		return chart.Chart{}, fmt.Errorf("select chart: %w", scanErr)
	}
	c.Type = chart.Type(typ)
	return c, nil
}

// Charts lists every chart ordered by id.
func (s *Store) Charts(ctx context.Context) ([]chart.Chart, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listChartsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list charts: %w", queryErr)
	}
	defer rows.Close()

	charts := make([]chart.Chart, 0)
	for rows.Next() {
		var (
			c   chart.Chart
			typ int
		)
		if err := rows.Scan(&c.ID, &c.SubjectName, &c.SubjectLocation, &c.OriginAt, &typ); err != nil {
			return nil, err
		}
		c.Type = chart.Type(typ)
		charts = append(charts, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return charts, nil
}

// Points lists the stored points of a chart.
func (s *Store) Points(ctx context.Context, chartID int64) ([]*chart.Point, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listPointsSQL, chartID)
	if queryErr != nil {
		return nil, fmt.Errorf("list points: %w", queryErr)
	}
	defer rows.Close()

	points := make([]*chart.Point, 0)
	for rows.Next() {
		p, scanErr := scanPoint(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		points = append(points, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return points, nil
}

// Angles lists the stored angles of a chart.
func (s *Store) Angles(ctx context.Context, chartID int64) ([]chart.Angle, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listAnglesSQL, chartID)
	if queryErr != nil {
		return nil, fmt.Errorf("list angles: %w", queryErr)
	}
	defer rows.Close()

	angles := make([]chart.Angle, 0, 3)
	for rows.Next() {
		a, scanErr := scanAngle(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		angles = append(angles, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return angles, nil
}

// Cusps lists the cusps of one house system.
func (s *Store) Cusps(ctx context.Context, chartID int64, houseSystemID int) ([]chart.Cusp, error) {
	return s.queryCusps(ctx, listCuspsSQL, chartID, houseSystemID)
}

// AllCusps lists cusps across every house system.
func (s *Store) AllCusps(ctx context.Context, chartID int64) ([]chart.Cusp, error) {
	return s.queryCusps(ctx, listAllCuspsSQL, chartID)
}

func (s *Store) queryCusps(ctx context.Context, query string, args ...any) ([]chart.Cusp, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("list cusps: %w", queryErr)
	}
	defer rows.Close()

	cusps := make([]chart.Cusp, 0, 13)
	for rows.Next() {
		c, scanErr := scanCusp(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		cusps = append(cusps, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return cusps, nil
}

// SaveChart inserts a chart with its rows and returns the new chart id.
func (s *Store) SaveChart(ctx context.Context, bundle chart.Bundle) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var chartID int64
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		c := bundle.Chart
		if err := tx.QueryRow(ctx, insertChartSQL, c.SubjectName, c.SubjectLocation, c.OriginAt, int(c.Type)).Scan(&chartID); err != nil {
			return fmt.Errorf("insert chart: %w", err)
		}

		batch := &pgx.Batch{}
		for _, p := range bundle.Points {
			args := append([]any{chartID, p.CelestialObjectID, p.Name}, coordinateArgs(p.Coordinate)...)
			args = append(args, int(p.Category), int(p.Orientation), p.Draconic, p.AllowableOrb.String())
			batch.Queue(insertPointSQL, args...)
		}
		for _, a := range bundle.Angles {
			batch.Queue(insertAngleSQL, append([]any{chartID, int(a.AngleID)}, coordinateArgs(a.Coordinate)...)...)
		}
		for _, c := range bundle.Cusps {
			batch.Queue(insertCuspSQL, append([]any{chartID, c.HouseSystemID, c.House}, coordinateArgs(c.Coordinate)...)...)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert chart rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return chartID, nil
}

// NoticeExists reports whether n was already recorded.
func (s *Store) NoticeExists(ctx context.Context, n Notice) (bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := pool.QueryRow(ctx, noticeExistsSQL,
		n.NatalChartID, n.TransitChartID, n.NatalPoint, n.TransitPoint, int(n.Aspect),
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup notice: %w", err)
	}
	return exists, nil
}

// RecordNotice inserts a notice unless the same aspect was already recorded.
func (s *Store) RecordNotice(ctx context.Context, n Notice) (bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return false, err
	}

	var id int64
	scanErr := pool.QueryRow(ctx, insertNoticeSQL,
		n.NatalChartID,
		n.TransitChartID,
		n.NatalPoint,
		n.TransitPoint,
		int(n.Aspect),
		n.Orb.String(),
	).Scan(&id)
	if errors.Is(scanErr, pgx.ErrNoRows) {
		return false, nil
	}
	if scanErr != nil {
		return false, fmt.Errorf("insert notice: %w", scanErr)
	}
	return true, nil
}

// ListRecentNotices lists most recent notices.
func (s *Store) ListRecentNotices(ctx context.Context, limit int) ([]Notice, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentNoticesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent notices: %w", queryErr)
	}
	defer rows.Close()

	notices := make([]Notice, 0, limit)
	for rows.Next() {
		var created time.Time
		n, scanErr := scanNotice(rows, &created)
		if scanErr != nil {
			return nil, scanErr
		}
		n.CreatedAt = created
		notices = append(notices, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return notices, nil
}

// DeleteNoticesBefore removes notices older than the provided timestamp.
func (s *Store) DeleteNoticesBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteNoticesBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete notices: %w", execErr)
	}
	return nil
}
