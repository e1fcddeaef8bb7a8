package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/engine"
	"astroaspects/internal/zodiac"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "data", "charts.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func sampleBundle() chart.Bundle {
	point := func(objectID int64, name string, c zodiac.Coordinate, orb string) *chart.Point {
		return &chart.Point{
			CelestialObjectID: objectID,
			Name:              name,
			Coordinate:        c,
			Category:          chart.MajorPlanetLuminary,
			Orientation:       chart.Direct,
			AllowableOrb:      decimal.RequireFromString(orb),
		}
	}
	cusps := make([]chart.Cusp, 0, 12)
	for h := 1; h <= 12; h++ {
		cusps = append(cusps, chart.Cusp{HouseSystemID: 1, House: h, Coordinate: zodiac.MustNew(h-1, 0, 0, 0)})
	}
	return chart.Bundle{
		Chart: chart.Chart{
			SubjectName:     "Test Subject",
			SubjectLocation: "Lisbon",
			OriginAt:        time.Date(1990, 5, 17, 8, 30, 0, 0, time.UTC),
			Type:            chart.Natal,
		},
		Points: []*chart.Point{
			point(1, "Sun", zodiac.MustNew(1, 26, 10, 5), "8"),
			point(2, "Moon", zodiac.MustNew(7, 26, 0, 0), "8.5"),
		},
		Angles: []chart.Angle{
			{AngleID: chart.Midheaven, Coordinate: zodiac.MustNew(9, 2, 0, 0)},
			{AngleID: chart.Ascendant, Coordinate: zodiac.MustNew(3, 14, 0, 0)},
		},
		Cusps: cusps,
	}
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, len(Migrations()), version)
}

func TestSQLiteSaveAndLoadChart(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveChart(ctx, sampleBundle())
	require.NoError(t, err)
	require.Positive(t, id)

	c, err := store.Chart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Test Subject", c.SubjectName)
	assert.Equal(t, chart.Natal, c.Type)
	assert.True(t, c.OriginAt.Equal(time.Date(1990, 5, 17, 8, 30, 0, 0, time.UTC)))

	points, err := store.Points(ctx, id)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "Sun", points[0].Name)
	assert.Equal(t, zodiac.MustNew(1, 26, 10, 5), points[0].Coordinate)
	assert.True(t, points[1].AllowableOrb.Equal(decimal.RequireFromString("8.5")))
	assert.Equal(t, id, points[1].ChartID)

	angles, err := store.Angles(ctx, id)
	require.NoError(t, err)
	require.Len(t, angles, 2)
	assert.Equal(t, chart.Ascendant, angles[0].AngleID)

	cusps, err := store.Cusps(ctx, id, 1)
	require.NoError(t, err)
	assert.Len(t, cusps, 12)
	none, err := store.Cusps(ctx, id, 2)
	require.NoError(t, err)
	assert.Empty(t, none)

	charts, err := store.Charts(ctx)
	require.NoError(t, err)
	require.Len(t, charts, 1)
}

func TestSQLiteChartNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Chart(context.Background(), 42)
	require.ErrorIs(t, err, ErrChartNotFound)
}

func TestSQLiteNotices(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	n := Notice{
		NatalChartID:   1,
		TransitChartID: 2,
		NatalPoint:     "Sun",
		TransitPoint:   "Mars",
		Aspect:         aspect.Square,
		Orb:            decimal.RequireFromString("1.25"),
		CreatedAt:      now.Add(-48 * time.Hour),
	}
	seen, err := store.NoticeExists(ctx, n)
	require.NoError(t, err)
	assert.False(t, seen)

	fresh, err := store.RecordNotice(ctx, n)
	require.NoError(t, err)
	assert.True(t, fresh)

	seen, err = store.NoticeExists(ctx, n)
	require.NoError(t, err)
	assert.True(t, seen)

	fresh, err = store.RecordNotice(ctx, n)
	require.NoError(t, err)
	assert.False(t, fresh, "duplicate notice must not be recorded twice")

	n.TransitPoint = "Venus"
	n.CreatedAt = now
	_, err = store.RecordNotice(ctx, n)
	require.NoError(t, err)

	recent, err := store.ListRecentNotices(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Venus", recent[0].TransitPoint)
	assert.Equal(t, aspect.Square, recent[1].Aspect)

	require.NoError(t, store.DeleteNoticesBefore(ctx, now.Add(-24*time.Hour)))
	recent, err = store.ListRecentNotices(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Venus", recent[0].TransitPoint)
}

func TestSQLiteAdvisoryLock(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	unlock, ok, err := store.TryAdvisoryLock(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.TryAdvisoryLock(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()
	unlock()

	again, ok, err := store.TryAdvisoryLock(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}

func TestSQLiteFeedsEngine(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveChart(ctx, sampleBundle())
	require.NoError(t, err)

	eng, err := engine.New(store, zerolog.Nop())
	require.NoError(t, err)

	set, err := eng.AssembleCandidatePoints(ctx, engine.Request{ChartID: id, HouseSystemID: 1})
	require.NoError(t, err)
	// two planets, Ascendant, Midheaven, Descendant, IC
	assert.Len(t, set.All, 6)
	assert.Equal(t, 12, set.Houses.Len())
}

func TestSQLiteQueryRewrite(t *testing.T) {
	assert.Equal(t, "WHERE chart_id = ?1 AND house_system_id = ?2", sqliteQuery("WHERE chart_id = $1 AND house_system_id = $2"))
}

func TestStoreWithoutPool(t *testing.T) {
	var s *Store
	_, err := s.Points(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotConfigured)
	s.Close()
}
