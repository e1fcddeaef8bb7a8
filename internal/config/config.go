package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/logging"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig selects and tunes the chart store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Configured reports whether any store is set up.
func (d DatabaseConfig) Configured() bool {
	if d.Driver == DriverSQLite {
		return d.SQLitePath != ""
	}
	return d.DSN != ""
}

// EngineConfig holds the defaults applied when a request does not say otherwise.
type EngineConfig struct {
	HouseSystemID int  `mapstructure:"house_system_id"`
	Draconic      bool `mapstructure:"draconic"`
	Arabic        bool `mapstructure:"arabic"`
	Asteroids     bool `mapstructure:"asteroids"`
	Stars         bool `mapstructure:"stars"`
}

// Flags converts the defaults into inclusion flags.
func (e EngineConfig) Flags() chart.Flags {
	return chart.Flags{Draconic: e.Draconic, Arabic: e.Arabic, Asteroids: e.Asteroids, Stars: e.Stars}
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Mode         string        `mapstructure:"mode"`
}

// FetcherConfig points at another instance to import charts from.
type FetcherConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// WatchConfig governs the transit watch loop.
type WatchConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	AlignToInterval  bool          `mapstructure:"align_to_interval"`
	AdvisoryLockKey  int64         `mapstructure:"advisory_lock_key"`
	StartupDelay     time.Duration `mapstructure:"startup_delay"`
	NatalChartID     int64         `mapstructure:"natal_chart_id"`
	Aspects          []string      `mapstructure:"aspects"`
	NoticeRetention  time.Duration `mapstructure:"notice_retention"`
	NotifyOnEmptyRun bool          `mapstructure:"notify_on_empty_run"`
}

// AspectKinds resolves the configured aspect names.
func (w WatchConfig) AspectKinds() ([]aspect.Kind, error) {
	kinds := make([]aspect.Kind, 0, len(w.Aspects))
	for _, name := range w.Aspects {
		k, ok := aspect.ByName(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("watch.aspects: unknown aspect %q", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	Dir       string `mapstructure:"dir"`
	WheelSize int    `mapstructure:"wheel_size"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ASTROASPECTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "astroaspects")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("engine.house_system_id", 1)
	v.SetDefault("engine.draconic", false)
	v.SetDefault("engine.arabic", false)
	v.SetDefault("engine.asteroids", false)
	v.SetDefault("engine.stars", false)

	v.SetDefault("http.listen", ":8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.mode", "release")

	v.SetDefault("fetcher.request_timeout", "10s")
	v.SetDefault("fetcher.user_agent", "astroaspects/1.0")

	v.SetDefault("watch.interval", "1h")
	v.SetDefault("watch.align_to_interval", true)
	v.SetDefault("watch.advisory_lock_key", int64(0x61737472))
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.aspects", []string{"Conjunction", "Opposition", "Square", "Trine", "Sextile"})
	v.SetDefault("watch.notice_retention", "720h")
	v.SetDefault("watch.notify_on_empty_run", false)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.wheel_size", 800)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q", DriverPostgres, DriverSQLite)
	}
	if c.Engine.HouseSystemID <= 0 {
		return fmt.Errorf("engine.house_system_id must be greater than zero")
	}
	if c.Export.WheelSize <= 0 {
		return fmt.Errorf("export.wheel_size must be greater than zero")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Watch.NatalChartID < 0 {
		return fmt.Errorf("watch.natal_chart_id cannot be negative")
	}
	if _, err := c.Watch.AspectKinds(); err != nil {
		return err
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// ResolveHouseSystem returns either the CLI override or config default.
func (c *Config) ResolveHouseSystem(override int) int {
	if override > 0 {
		return override
	}
	return c.Engine.HouseSystemID
}
