package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroaspects/internal/alerting"
	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/config"
	"astroaspects/internal/engine"
	"astroaspects/internal/storage"
	"astroaspects/internal/zodiac"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n alerting.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, alerting.Notification) error {
	f.calls++
	return errors.New("telegram unavailable")
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

func planet(objectID int64, name string, c zodiac.Coordinate) *chart.Point {
	return &chart.Point{
		CelestialObjectID: objectID,
		Name:              name,
		Coordinate:        c,
		Category:          chart.MajorPlanetLuminary,
		Orientation:       chart.Direct,
		AllowableOrb:      decimal.NewFromInt(8),
	}
}

type fixture struct {
	store    *storage.SQLiteStore
	engine   *engine.Engine
	notifier *recordingNotifier
	cfg      *config.Config
	natalID  int64
}

func newFixture(t *testing.T, withTransit bool) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "watch.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))

	natalID, err := store.SaveChart(ctx, chart.Bundle{
		Chart: chart.Chart{SubjectName: "Natal", OriginAt: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), Type: chart.Natal},
		Points: []*chart.Point{
			planet(1, "Sun", zodiac.MustNew(0, 10, 0, 0)),
			planet(2, "Moon", zodiac.MustNew(3, 10, 0, 0)),
		},
	})
	require.NoError(t, err)

	if withTransit {
		_, err = store.SaveChart(ctx, chart.Bundle{
			Chart:  chart.Chart{SubjectName: "Sky", OriginAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Type: chart.Transit},
			Points: []*chart.Point{planet(5, "Mars", zodiac.MustNew(3, 12, 0, 0))},
		})
		require.NoError(t, err)
	}

	eng, err := engine.New(store, zerolog.Nop())
	require.NoError(t, err)

	return &fixture{
		store:    store,
		engine:   eng,
		notifier: &recordingNotifier{},
		natalID:  natalID,
		cfg: &config.Config{
			Engine: config.EngineConfig{HouseSystemID: 1},
			Watch: config.WatchConfig{
				NatalChartID:    natalID,
				Aspects:         []string{"Conjunction", "Square"},
				AdvisoryLockKey: 42,
				NoticeRetention: 24 * time.Hour,
			},
			Alerting: config.AlertingConfig{Enabled: true, Channels: []string{"log"}},
		},
	}
}

func (f *fixture) service(t *testing.T) *Service {
	t.Helper()
	svc, err := New(f.cfg, nil, f.engine, f.store, f.notifier, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestCheckAnnouncesOnlyNewAspects(t *testing.T) {
	f := newFixture(t, true)
	svc := f.service(t)
	ctx := context.Background()

	report, err := svc.Check(ctx, time.Now())
	require.NoError(t, err)
	require.False(t, report.Skipped)
	assert.Equal(t, "Sky", report.TransitChart.SubjectName)
	require.Len(t, report.Hits, 2)
	require.Len(t, report.Fresh, 2)

	kinds := map[string]aspect.Kind{}
	for _, h := range report.Hits {
		kinds[h.NatalPoint] = h.Aspect
		assert.Equal(t, "Mars", h.TransitPoint)
	}
	assert.Equal(t, aspect.Square, kinds["Sun"])
	assert.Equal(t, aspect.Conjunction, kinds["Moon"])
	require.Equal(t, 1, f.notifier.count())
	assert.Len(t, f.notifier.notes[0].Hits, 2)

	report, err = svc.Check(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, report.Hits, 2)
	assert.Empty(t, report.Fresh)
	assert.Equal(t, 1, f.notifier.count(), "repeat check must stay quiet")

	notices, err := f.store.ListRecentNotices(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, notices, 2)
}

func TestCheckRetriesAfterFailedDelivery(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	failing := &failingNotifier{}
	down, err := New(f.cfg, nil, f.engine, f.store, failing, zerolog.Nop())
	require.NoError(t, err)

	report, err := down.Check(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.False(t, report.Notified)
	require.Len(t, report.Fresh, 2)

	notices, err := f.store.ListRecentNotices(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, notices, "undelivered hits must stay pending")

	report, err = f.service(t).Check(ctx, time.Now())
	require.NoError(t, err)
	assert.True(t, report.Notified)
	require.Equal(t, 1, f.notifier.count())
	assert.Len(t, f.notifier.notes[0].Hits, 2)
}

func TestCheckKeepsBacklogWhileAlertsDisabled(t *testing.T) {
	f := newFixture(t, true)
	f.cfg.Alerting.Enabled = false
	ctx := context.Background()

	report, err := f.service(t).Check(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, report.Fresh, 2)
	assert.Zero(t, f.notifier.count())

	notices, err := f.store.ListRecentNotices(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, notices)

	f.cfg.Alerting.Enabled = true
	report, err = f.service(t).Check(ctx, time.Now())
	require.NoError(t, err)
	assert.True(t, report.Notified)
	assert.Len(t, f.notifier.notes[0].Hits, 2)
}

func TestCheckNotifiesEmptyRunWhenAsked(t *testing.T) {
	f := newFixture(t, true)
	f.cfg.Watch.NotifyOnEmptyRun = true
	svc := f.service(t)
	ctx := context.Background()

	_, err := svc.Check(ctx, time.Now())
	require.NoError(t, err)
	_, err = svc.Check(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, f.notifier.count())
	assert.Empty(t, f.notifier.notes[1].Hits)
}

func TestCheckWithoutTransitChart(t *testing.T) {
	f := newFixture(t, false)
	report, err := f.service(t).Check(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Zero(t, f.notifier.count())
}

func TestProcessTickSkipsWhenLocked(t *testing.T) {
	f := newFixture(t, true)
	svc := f.service(t)
	ctx := context.Background()

	unlock, ok, err := f.store.TryAdvisoryLock(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.ProcessTick(ctx, time.Now()))
	assert.Zero(t, f.notifier.count())

	unlock()
	require.NoError(t, svc.ProcessTick(ctx, time.Now()))
	assert.Equal(t, 1, f.notifier.count())
}

func TestCheckPrunesExpiredNotices(t *testing.T) {
	f := newFixture(t, true)
	svc := f.service(t)
	ctx := context.Background()

	_, err := f.store.RecordNotice(ctx, storage.Notice{
		NatalChartID:   f.natalID,
		TransitChartID: 99,
		NatalPoint:     "Sun",
		TransitPoint:   "Saturn",
		Aspect:         aspect.Opposition,
		Orb:            decimal.Zero,
		CreatedAt:      time.Now().Add(-72 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Check(ctx, time.Now())
	require.NoError(t, err)

	notices, err := f.store.ListRecentNotices(ctx, 10)
	require.NoError(t, err)
	for _, n := range notices {
		assert.NotEqual(t, "Saturn", n.TransitPoint)
	}
}

func TestNewRequiresNatalChart(t *testing.T) {
	_, err := New(&config.Config{}, nil, nil, nil, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrNoNatalChart)
}
