package fetcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"astroaspects/internal/chart"
	"astroaspects/internal/zodiac"
)

const singleYAML = `
chart:
  subject: Ada
  location: London
  origin: 1815-12-10T13:00:00Z
  type: 1
points:
  - celestialObjectId: 1
    name: Sun
    category: 1
    orb: "8"
    sign: 8
    degrees: 17
    minutes: 45
    seconds: 0
angles:
  - angle: 1
    sign: 0
    degrees: 5
    minutes: 0
    seconds: 0
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadChartFileYAML(t *testing.T) {
	bundles, err := ReadChartFile(writeFile(t, "ada.yaml", singleYAML))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("bundles = %d", len(bundles))
	}
	b := bundles[0]
	if b.Chart.SubjectName != "Ada" || b.Chart.Type != chart.Natal {
		t.Fatalf("chart = %+v", b.Chart)
	}
	if b.Points[0].Coordinate != zodiac.MustNew(8, 17, 45, 0) || b.Points[0].Orientation != chart.Direct {
		t.Fatalf("point = %+v", b.Points[0])
	}
	if b.Angles[0].AngleID != chart.Ascendant {
		t.Fatalf("angle = %+v", b.Angles[0])
	}
}

func TestReadChartFileRejects(t *testing.T) {
	if _, err := ReadChartFile(writeFile(t, "chart.txt", singleYAML)); err == nil {
		t.Fatal("unsupported extension should fail")
	}
	bad := `{"chart": {"subject": "x", "type": 99}}`
	if _, err := ReadChartFile(writeFile(t, "bad.json", bad)); err == nil {
		t.Fatal("unknown chart type should fail")
	}
	badCoord := `[{"chart": {"subject": "x", "type": 1}, "points": [{"name": "Sun", "category": 1, "orb": "8", "sign": 12}]}]`
	if _, err := ReadChartFile(writeFile(t, "coord.json", badCoord)); err == nil {
		t.Fatal("sign 12 should fail")
	}
}

func TestWriteThenReadChartFile(t *testing.T) {
	in := chart.Bundle{
		Chart: chart.Chart{SubjectName: "Round", OriginAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Type: chart.Transit},
		Points: []*chart.Point{{
			CelestialObjectID: 5,
			Name:              "Mars",
			Coordinate:        zodiac.MustNew(2, 3, 4, 5),
			Category:          chart.MajorPlanetLuminary,
			Orientation:       chart.Retrograde,
			AllowableOrb:      decimal.RequireFromString("7.5"),
		}},
		Cusps: []chart.Cusp{{HouseSystemID: 2, House: 1, Coordinate: zodiac.MustNew(0, 1, 0, 0)}},
	}

	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(t.TempDir(), name)
		if err := WriteChartFile(path, in); err != nil {
			t.Fatalf("%s write: %v", name, err)
		}
		out, err := ReadChartFile(path)
		if err != nil {
			t.Fatalf("%s read: %v", name, err)
		}
		if len(out) != 1 {
			t.Fatalf("%s: bundles = %d", name, len(out))
		}
		got := out[0]
		if !got.Chart.OriginAt.Equal(in.Chart.OriginAt) || got.Chart.Type != chart.Transit {
			t.Fatalf("%s chart = %+v", name, got.Chart)
		}
		if diff := cmp.Diff(in.Cusps, got.Cusps); diff != "" {
			t.Fatalf("%s cusps (-want +got):\n%s", name, diff)
		}
		p := got.Points[0]
		if p.Name != "Mars" || p.Orientation != chart.Retrograde || !p.AllowableOrb.Equal(decimal.RequireFromString("7.5")) {
			t.Fatalf("%s point = %+v", name, p)
		}
	}
}
