package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"astroaspects/internal/aspect"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.Configured() {
		t.Fatalf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Watch.Interval != time.Hour || cfg.HTTP.ReadTimeout != 10*time.Second {
		t.Fatalf("duration defaults not decoded: %+v %+v", cfg.Watch, cfg.HTTP)
	}
	kinds, err := cfg.Watch.AspectKinds()
	if err != nil || len(kinds) != 5 || kinds[0] != aspect.Conjunction {
		t.Fatalf("aspect kinds = %v, %v", kinds, err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  sqlite_path: charts.db
engine:
  house_system_id: 3
  arabic: true
watch:
  interval: 15m
  aspects: Conjunction,Square
`)
	t.Setenv("ASTROASPECTS_ENGINE_STARS", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Database.Configured() || cfg.Engine.HouseSystemID != 3 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	flags := cfg.Engine.Flags()
	if !flags.Arabic || !flags.Stars || flags.Draconic {
		t.Fatalf("flags = %+v", flags)
	}
	if cfg.Watch.Interval != 15*time.Minute || len(cfg.Watch.Aspects) != 2 {
		t.Fatalf("watch = %+v", cfg.Watch)
	}
	if got := cfg.ResolveHouseSystem(0); got != 3 {
		t.Fatalf("house system = %d", got)
	}
	if got := cfg.ResolveHouseSystem(7); got != 7 {
		t.Fatalf("house system override = %d", got)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"driver":   "database:\n  driver: mysql\n",
		"aspect":   "watch:\n  aspects: Conjunction,Tredecile\n",
		"telegram": "alerting:\n  telegram:\n    enabled: true\n",
		"house":    "engine:\n  house_system_id: 0\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
