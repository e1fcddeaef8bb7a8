package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"astroaspects/internal/chart"
)

// Fixed width so stored timestamps compare correctly as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var pgPlaceholder = regexp.MustCompile(`\$(\d+)`)

// sqliteQuery rewrites postgres $N placeholders to SQLite ?N.
func sqliteQuery(query string) string {
	return pgPlaceholder.ReplaceAllString(query, "?$1")
}

// SQLiteStore is the single-file repository used for local work and tests.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[int64]struct{}
}

var _ Repository = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database file at path.
// It does not migrate; Open does that for callers going through config.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database.sqlite_path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer keeps SQLITE_BUSY away
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, locks: make(map[int64]struct{})}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() {
	if s == nil || s.db == nil {
		return
	}
	_ = s.db.Close()
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	return s.db, nil
}

// Migrate applies pending schema steps.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	return migrateSQLite(ctx, db)
}

// TryAdvisoryLock emulates a postgres advisory lock within this process.
func (s *SQLiteStore) TryAdvisoryLock(_ context.Context, key int64) (func(), bool, error) {
	if _, err := s.getDB(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.locks[key]; held {
		return nil, false, nil
	}
	s.locks[key] = struct{}{}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locks, key)
			s.mu.Unlock()
		})
	}
	return unlock, true, nil
}

// Chart loads a chart record.
func (s *SQLiteStore) Chart(ctx context.Context, chartID int64) (chart.Chart, error) {
	db, err := s.getDB()
	if err != nil {
		return chart.Chart{}, err
	}
	c, scanErr := scanSQLiteChart(db.QueryRowContext(ctx, sqliteQuery(selectChartSQL), chartID))
	if errors.Is(scanErr, sql.ErrNoRows) {
		return chart.Chart{}, fmt.Errorf("%w: %d", ErrChartNotFound, chartID)
	}
	if scanErr != nil {
		return chart.Chart{}, fmt.Errorf("select chart: %w", scanErr)
	}
	return c, nil
}

// Charts lists every chart ordered by id.
func (s *SQLiteStore) Charts(ctx context.Context) ([]chart.Chart, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, sqliteQuery(listChartsSQL))
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer rows.Close()

	charts := make([]chart.Chart, 0)
	for rows.Next() {
		c, err := scanSQLiteChart(rows)
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

func scanSQLiteChart(row rowScanner) (chart.Chart, error) {
	var (
		c      chart.Chart
		origin string
		typ    int
	)
	if err := row.Scan(&c.ID, &c.SubjectName, &c.SubjectLocation, &origin, &typ); err != nil {
		return chart.Chart{}, err
	}
	at, err := time.Parse(sqliteTimeLayout, origin)
	if err != nil {
		return chart.Chart{}, fmt.Errorf("parse origin_at: %w", err)
	}
	c.OriginAt = at
	c.Type = chart.Type(typ)
	return c, nil
}

// Points lists the stored points of a chart.
func (s *SQLiteStore) Points(ctx context.Context, chartID int64) ([]*chart.Point, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, sqliteQuery(listPointsSQL), chartID)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer rows.Close()

	points := make([]*chart.Point, 0)
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Angles lists the stored angles of a chart.
func (s *SQLiteStore) Angles(ctx context.Context, chartID int64) ([]chart.Angle, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, sqliteQuery(listAnglesSQL), chartID)
	if err != nil {
		return nil, fmt.Errorf("list angles: %w", err)
	}
	defer rows.Close()

	angles := make([]chart.Angle, 0, 3)
	for rows.Next() {
		a, err := scanAngle(rows)
		if err != nil {
			return nil, err
		}
		angles = append(angles, a)
	}
	return angles, rows.Err()
}

// Cusps lists the cusps of one house system.
func (s *SQLiteStore) Cusps(ctx context.Context, chartID int64, houseSystemID int) ([]chart.Cusp, error) {
	return s.queryCusps(ctx, listCuspsSQL, chartID, houseSystemID)
}

// AllCusps lists cusps across every house system.
func (s *SQLiteStore) AllCusps(ctx context.Context, chartID int64) ([]chart.Cusp, error) {
	return s.queryCusps(ctx, listAllCuspsSQL, chartID)
}

func (s *SQLiteStore) queryCusps(ctx context.Context, query string, args ...any) ([]chart.Cusp, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, sqliteQuery(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list cusps: %w", err)
	}
	defer rows.Close()

	cusps := make([]chart.Cusp, 0, 13)
	for rows.Next() {
		c, err := scanCusp(rows)
		if err != nil {
			return nil, err
		}
		cusps = append(cusps, c)
	}
	return cusps, rows.Err()
}

// SaveChart inserts a chart with its rows and returns the new chart id.
func (s *SQLiteStore) SaveChart(ctx context.Context, bundle chart.Bundle) (id int64, err error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	c := bundle.Chart
	if err = tx.QueryRowContext(ctx, sqliteQuery(insertChartSQL),
		c.SubjectName, c.SubjectLocation, c.OriginAt.UTC().Format(sqliteTimeLayout), int(c.Type),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert chart: %w", err)
	}

	for _, p := range bundle.Points {
		args := append([]any{id, p.CelestialObjectID, p.Name}, coordinateArgs(p.Coordinate)...)
		args = append(args, int(p.Category), int(p.Orientation), p.Draconic, p.AllowableOrb.String())
		if _, err = tx.ExecContext(ctx, sqliteQuery(insertPointSQL), args...); err != nil {
			return 0, fmt.Errorf("insert point %s: %w", p.Name, err)
		}
	}
	for _, a := range bundle.Angles {
		if _, err = tx.ExecContext(ctx, sqliteQuery(insertAngleSQL), append([]any{id, int(a.AngleID)}, coordinateArgs(a.Coordinate)...)...); err != nil {
			return 0, fmt.Errorf("insert angle %s: %w", a.AngleID, err)
		}
	}
	for _, cusp := range bundle.Cusps {
		if _, err = tx.ExecContext(ctx, sqliteQuery(insertCuspSQL), append([]any{id, cusp.HouseSystemID, cusp.House}, coordinateArgs(cusp.Coordinate)...)...); err != nil {
			return 0, fmt.Errorf("insert cusp %d: %w", cusp.House, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit chart: %w", err)
	}
	return id, nil
}

const sqliteInsertNoticeSQL = `INSERT OR IGNORE INTO transit_notices (
        natal_chart_id,
        transit_chart_id,
        natal_point,
        transit_point,
        aspect_id,
        orb,
        created_at
    ) VALUES (?,?,?,?,?,?,?);`

// NoticeExists reports whether n was already recorded.
func (s *SQLiteStore) NoticeExists(ctx context.Context, n Notice) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}
	var exists int
	if err := db.QueryRowContext(ctx, sqliteQuery(noticeExistsSQL),
		n.NatalChartID, n.TransitChartID, n.NatalPoint, n.TransitPoint, int(n.Aspect),
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup notice: %w", err)
	}
	return exists != 0, nil
}

// RecordNotice inserts a notice unless the same aspect was already recorded.
func (s *SQLiteStore) RecordNotice(ctx context.Context, n Notice) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}
	created := n.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := db.ExecContext(ctx, sqliteInsertNoticeSQL,
		n.NatalChartID,
		n.TransitChartID,
		n.NatalPoint,
		n.TransitPoint,
		int(n.Aspect),
		n.Orb.String(),
		created.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("insert notice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notice: %w", err)
	}
	return affected > 0, nil
}

// ListRecentNotices lists most recent notices.
func (s *SQLiteStore) ListRecentNotices(ctx context.Context, limit int) ([]Notice, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, sqliteQuery(listRecentNoticesSQL), limit)
	if err != nil {
		return nil, fmt.Errorf("list recent notices: %w", err)
	}
	defer rows.Close()

	notices := make([]Notice, 0, limit)
	for rows.Next() {
		var created string
		n, err := scanNotice(rows, &created)
		if err != nil {
			return nil, err
		}
		if n.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
			return nil, fmt.Errorf("parse notice created_at: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// DeleteNoticesBefore removes notices older than the provided timestamp.
func (s *SQLiteStore) DeleteNoticesBefore(ctx context.Context, olderThan time.Time) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	// RFC3339 text in UTC sorts chronologically.
	if _, err := db.ExecContext(ctx, sqliteQuery(deleteNoticesBeforeSQL), olderThan.UTC().Format(sqliteTimeLayout)); err != nil {
		return fmt.Errorf("delete notices: %w", err)
	}
	return nil
}
