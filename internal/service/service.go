package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"astroaspects/internal/alerting"
	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/config"
	"astroaspects/internal/engine"
	"astroaspects/internal/logging"
	"astroaspects/internal/scheduler"
	"astroaspects/internal/storage"
)

// ErrNoNatalChart reports a watch started without watch.natal_chart_id.
var ErrNoNatalChart = errors.New("service: watch.natal_chart_id is not set")

// Report summarises one transit check.
type Report struct {
	Tick         time.Time
	NatalChart   chart.Chart
	TransitChart chart.Chart
	// Skipped is set when no transit chart was available.
	Skipped bool
	Hits    []engine.Hit
	// Fresh lists hits not announced before.
	Fresh []engine.Hit
	// Notified is set once a digest was delivered.
	Notified bool
}

// Service watches the newest transit chart against one natal chart and announces new aspects.
type Service struct {
	scheduler *scheduler.Scheduler
	engine    *engine.Engine
	notices   storage.NoticeStore
	notifier  alerting.Notifier
	locker    storage.AdvisoryLocker
	logger    zerolog.Logger

	natal       engine.Request
	transit     engine.Request
	kinds       []aspect.Kind
	channels    []string
	alertsOn    bool
	notifyEmpty bool
	retention   time.Duration
	lockKey     int64
	now         func() time.Time
}

// New constructs the watch service.
func New(cfg *config.Config, sched *scheduler.Scheduler, eng *engine.Engine, notices storage.NoticeStore, notifier alerting.Notifier, logger zerolog.Logger) (*Service, error) {
	if cfg.Watch.NatalChartID <= 0 {
		return nil, ErrNoNatalChart
	}
	kinds, err := cfg.Watch.AspectKinds()
	if err != nil {
		return nil, err
	}

	var locker storage.AdvisoryLocker
	if l, ok := notices.(storage.AdvisoryLocker); ok {
		locker = l
	}

	houseSystem := cfg.ResolveHouseSystem(0)
	flags := cfg.Engine.Flags()
	return &Service{
		scheduler:   sched,
		engine:      eng,
		notices:     notices,
		notifier:    notifier,
		locker:      locker,
		logger:      logging.Component(logger, "service"),
		natal:       engine.Request{ChartID: cfg.Watch.NatalChartID, HouseSystemID: houseSystem, Flags: flags},
		transit:     engine.Request{HouseSystemID: houseSystem, Flags: flags},
		kinds:       kinds,
		channels:    cfg.Alerting.Channels,
		alertsOn:    cfg.Alerting.Enabled,
		notifyEmpty: cfg.Watch.NotifyOnEmptyRun,
		retention:   cfg.Watch.NoticeRetention,
		lockKey:     cfg.Watch.AdvisoryLockKey,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run begins the watch loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessTick)
}

// ProcessTick 执行单次行运检查, 受 advisory lock 保护。
func (s *Service) ProcessTick(ctx context.Context, tick time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("tick", tick).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	_, err = s.Check(ctx, tick)
	return err
}

// Check compares the newest transit chart with the natal chart, records and announces
// aspects not seen before, and prunes old notices.
func (s *Service) Check(ctx context.Context, tick time.Time) (Report, error) {
	report := Report{Tick: tick}

	natal, err := s.engine.Chart(ctx, s.natal.ChartID)
	if err != nil {
		return report, err
	}
	report.NatalChart = natal

	latest, found, err := s.engine.LatestChart(ctx, chart.Transit)
	if err != nil {
		return report, err
	}
	if !found || latest.ID == natal.ID {
		report.Skipped = true
		s.logger.Info().Time("tick", tick).Msg("no transit chart to check")
		return report, nil
	}
	report.TransitChart = latest

	transit := s.transit
	transit.ChartID = latest.ID
	hits, err := s.engine.TransitHits(ctx, s.natal, transit, s.kinds)
	if err != nil {
		return report, fmt.Errorf("transit hits: %w", err)
	}
	report.Hits = hits

	for _, h := range hits {
		if s.notices != nil {
			seen, err := s.notices.NoticeExists(ctx, noticeOf(h, time.Time{}))
			if err != nil {
				s.logger.Error().Err(err).Str("natal_point", h.NatalPoint).Str("transit_point", h.TransitPoint).Msg("failed to look up notice")
				continue
			}
			if seen {
				continue
			}
		}
		report.Fresh = append(report.Fresh, h)
	}

	s.logger.Info().Time("tick", tick).
		Int64("transit_chart_id", latest.ID).
		Int("hits", len(hits)).
		Int("fresh", len(report.Fresh)).
		Msg("transit check complete")

	// Notices are only recorded once delivered, so a failed or disabled channel keeps them pending.
	if !s.alertsOn || s.notifier == nil {
		s.prune(ctx)
		return report, nil
	}
	if len(report.Fresh) > 0 || s.notifyEmpty {
		note := alerting.Notification{
			Tick:         tick,
			NatalChart:   natal,
			TransitChart: latest,
			Hits:         report.Fresh,
			Channels:     s.channels,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Time("tick", tick).Int("pending", len(report.Fresh)).Msg("failed to dispatch transit digest")
			s.prune(ctx)
			return report, nil
		}
		report.Notified = true
	}
	s.record(ctx, report.Fresh)

	s.prune(ctx)
	return report, nil
}

func (s *Service) record(ctx context.Context, hits []engine.Hit) {
	if s.notices == nil {
		return
	}
	for _, h := range hits {
		if _, err := s.notices.RecordNotice(ctx, noticeOf(h, s.now())); err != nil {
			s.logger.Error().Err(err).Str("natal_point", h.NatalPoint).Str("transit_point", h.TransitPoint).Msg("failed to record notice")
		}
	}
}

func noticeOf(h engine.Hit, at time.Time) storage.Notice {
	return storage.Notice{
		NatalChartID:   h.NatalChartID,
		TransitChartID: h.TransitChartID,
		NatalPoint:     h.NatalPoint,
		TransitPoint:   h.TransitPoint,
		Aspect:         h.Aspect,
		Orb:            h.Orb,
		CreatedAt:      at,
	}
}

func (s *Service) prune(ctx context.Context) {
	if s.retention <= 0 || s.notices == nil {
		return
	}
	cutoff := s.now().Add(-s.retention)
	if err := s.notices.DeleteNoticesBefore(ctx, cutoff); err != nil {
		s.logger.Error().Err(err).Time("cutoff", cutoff).Msg("failed to prune notices")
	}
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
