package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"astroaspects/internal/alerting"
	"astroaspects/internal/config"
	"astroaspects/internal/engine"
	"astroaspects/internal/logging"
	"astroaspects/internal/scheduler"
	"astroaspects/internal/service"
	"astroaspects/internal/storage"
)

// ErrStoreNotConfigured is returned by commands that need a database.
var ErrStoreNotConfigured = errors.New("database not configured; set database.dsn or database.sqlite_path")

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer

	// openRepo is swapped in tests.
	openRepo func(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error)
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config:   cfg,
		Logger:   logging.Component(logger, "app"),
		Out:      os.Stdout,
		openRepo: storage.Open,
	}
}

func (a *App) openStore(ctx context.Context) (storage.Repository, func(), error) {
	if !a.Config.Database.Configured() {
		return nil, nil, ErrStoreNotConfigured
	}
	repo, err := a.openRepo(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

// withEngine opens the store, builds an engine over it and runs fn.
func (a *App) withEngine(ctx context.Context, fn func(eng *engine.Engine, repo storage.Repository) error) error {
	repo, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	eng, err := engine.New(repo, a.Logger)
	if err != nil {
		return err
	}
	return fn(eng, repo)
}

// request fills an engine request from config defaults and command overrides.
func (a *App) request(chartID int64, houseSystem int) engine.Request {
	return engine.Request{
		ChartID:       chartID,
		HouseSystemID: a.Config.ResolveHouseSystem(houseSystem),
		Flags:         a.Config.Engine.Flags(),
	}
}

func (a *App) newNotifier() alerting.Notifier {
	var fan alerting.Fanout
	for _, channel := range a.Config.Alerting.Channels {
		switch strings.ToLower(strings.TrimSpace(channel)) {
		case "telegram":
			if a.Config.Alerting.Telegram.Enabled {
				cfg := a.Config.Alerting.Telegram
				fan = append(fan, alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger))
			}
		case "log":
			fan = append(fan, alerting.NewLogNotifier(a.Logger))
		default:
			a.Logger.Warn().Str("channel", channel).Msg("unknown alerting channel ignored")
		}
	}
	if len(fan) == 0 {
		return nil
	}
	if len(fan) == 1 {
		return fan[0]
	}
	return fan
}

// WatchOptions configure the watch command.
type WatchOptions struct {
	// Once runs a single check and returns.
	Once bool
}

// Watch executes the long-running transit watch.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.withEngine(ctx, func(eng *engine.Engine, repo storage.Repository) error {
		notifier := a.newNotifier()
		if a.Config.Alerting.Enabled && notifier == nil {
			a.Logger.Warn().Msg("alerting enabled but no channel configured; digests will only be logged")
		}

		var sched *scheduler.Scheduler
		if !opts.Once {
			var err error
			sched, err = scheduler.New(scheduler.Options{
				Interval:        a.Config.Watch.Interval,
				AlignToInterval: a.Config.Watch.AlignToInterval,
				StartupDelay:    a.Config.Watch.StartupDelay,
				Immediate:       true,
			}, a.Logger)
			if err != nil {
				return err
			}
		}

		svc, err := service.New(a.Config, sched, eng, repo, notifier, a.Logger)
		if err != nil {
			return err
		}

		if opts.Once {
			return svc.ProcessTick(ctx, time.Now().UTC())
		}

		a.Logger.Info().Int64("natal_chart_id", a.Config.Watch.NatalChartID).Msg("starting transit watch")
		err = svc.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error().Err(err).Msg("transit watch terminated with error")
			return err
		}

		a.Logger.Info().Msg("transit watch stopped")
		return nil
	})
}

// ShowOptions configure the show command.
type ShowOptions struct {
	ChartID     int64
	HouseSystem int
}

// AspectOptions configure the aspects and transits commands.
type AspectOptions struct {
	ChartID      int64
	OtherChartID int64
	HouseSystem  int
	Selector     engine.Selector
}

// ExportOptions hold parameters for exporting one chart.
type ExportOptions struct {
	ChartID     int64
	HouseSystem int
	CSVPath     string
	WheelPath   string
	AspectsPath string
	BundlePath  string
}

// ImportOptions configure the import job.
type ImportOptions struct {
	Files     []string
	RemoteIDs []int64
	DryRun    bool
}
