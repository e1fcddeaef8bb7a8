package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	gochart "github.com/wcharczuk/go-chart/v2"

	"astroaspects/internal/aspect"
	"astroaspects/internal/engine"
	"astroaspects/internal/fetcher"
	"astroaspects/internal/storage"
	"astroaspects/internal/zodiac"
)

// Export writes one chart as a CSV listing, a house wheel PNG, an aspect count PNG and/or a bundle file.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.WheelPath == "" && opts.AspectsPath == "" && opts.BundlePath == "" {
		return errors.New("at least one of --csv, --wheel, --aspects or --bundle must be provided")
	}
	if opts.ChartID <= 0 {
		return fmt.Errorf("%w: chart id %d", engine.ErrInvalidArgument, opts.ChartID)
	}

	return a.withEngine(ctx, func(eng *engine.Engine, _ storage.Repository) error {
		req := a.request(opts.ChartID, opts.HouseSystem)

		if opts.CSVPath != "" {
			entries, err := eng.ChartListing(ctx, req)
			if err != nil {
				return err
			}
			if err := writeListingCSV(a.exportPath(opts.CSVPath), entries); err != nil {
				return err
			}
			a.Logger.Info().Int("points", len(entries)).Str("path", opts.CSVPath).Msg("listing exported")
		}

		if opts.WheelPath != "" {
			cusps, err := eng.HouseListing(ctx, opts.ChartID, req.HouseSystemID)
			if err != nil {
				return err
			}
			if len(cusps) == 0 {
				a.Logger.Warn().Int("house_system_id", req.HouseSystemID).Msg("no cusps for house wheel; skipped")
			} else if err := writeHouseWheelPNG(a.exportPath(opts.WheelPath), cusps, a.Config.Export.WheelSize); err != nil {
				return err
			}
		}

		if opts.AspectsPath != "" {
			counts, err := aspectCounts(ctx, eng, req)
			if err != nil {
				return err
			}
			if err := writeAspectCountsPNG(a.exportPath(opts.AspectsPath), counts, a.Config.Export.WheelSize); err != nil {
				return err
			}
		}

		if opts.BundlePath != "" {
			bundle, err := eng.Bundle(ctx, opts.ChartID)
			if err != nil {
				return err
			}
			path := a.exportPath(opts.BundlePath)
			if err := ensureDir(path); err != nil {
				return err
			}
			if err := fetcher.WriteChartFile(path, bundle); err != nil {
				return err
			}
			a.Logger.Info().Str("path", path).Msg("chart bundle exported")
		}
		return nil
	})
}

// exportPath places relative paths under export.dir.
func (a *App) exportPath(path string) string {
	if filepath.IsAbs(path) || a.Config.Export.Dir == "" || filepath.Dir(path) != "." {
		return path
	}
	return filepath.Join(a.Config.Export.Dir, path)
}

func writeListingCSV(path string, entries []engine.ListingEntry) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"id", "celestial_object_id", "name", "sign", "degrees", "minutes", "seconds", "longitude", "orientation", "category", "draconic", "house"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range entries {
		c := zodiac.Coordinate{Sign: e.SignID, Degrees: e.Degrees, Minutes: e.Minutes, Seconds: e.Seconds}
		record := []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.CelestialObjectID, 10),
			e.Name,
			e.SignAbbreviation,
			strconv.Itoa(int(e.Degrees)),
			strconv.Itoa(int(e.Minutes)),
			strconv.Itoa(int(e.Seconds)),
			formatDecimal(c.Decimal(), 4),
			e.Orientation,
			e.CategoryName,
			strconv.FormatBool(e.Draconic),
			strconv.Itoa(e.House),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// writeHouseWheelPNG draws the houses as donut slices sized by the arc each house spans.
func writeHouseWheelPNG(path string, cusps []engine.HouseEntry, size int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	values := make([]gochart.Value, 0, len(cusps))
	for i, cusp := range cusps {
		next := cusps[(i+1)%len(cusps)]
		from := zodiac.Coordinate{Sign: cusp.SignID, Degrees: cusp.Degrees, Minutes: cusp.Minutes, Seconds: cusp.Seconds}
		to := zodiac.Coordinate{Sign: next.SignID, Degrees: next.Degrees, Minutes: next.Minutes, Seconds: next.Seconds}
		span := zodiac.Normalize(to.InSeconds() - from.InSeconds())
		if span == 0 {
			span = zodiac.FullCircle
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%d %s", cusp.House, cusp.SignAbbreviation),
			Value: float64(span) / zodiac.SecondsPerDegree,
		})
	}

	graph := gochart.DonutChart{
		Width:  size,
		Height: size,
		Values: values,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(gochart.PNG, file)
}

// aspectCounts tallies, per aspect kind, the members found with every stored point as base.
func aspectCounts(ctx context.Context, eng *engine.Engine, req engine.Request) ([]int, error) {
	set, err := eng.AssembleCandidatePoints(ctx, req)
	if err != nil {
		return nil, err
	}
	counts := make([]int, aspect.Count)
	for _, base := range set.Stored {
		for _, g := range engine.BuildAspects(base, set.All, set.Houses, eng.Signs()) {
			counts[g.AspectID] += len(g.Members)
		}
	}
	return counts, nil
}

func writeAspectCountsPNG(path string, counts []int, size int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	bars := make([]gochart.Value, 0, len(counts))
	for _, k := range aspect.Kinds() {
		bars = append(bars, gochart.Value{Label: k.String(), Value: float64(counts[k])})
	}

	graph := gochart.BarChart{
		Title:    "Aspects",
		Width:    size * 2,
		Height:   size,
		BarWidth: 40,
		YAxis: gochart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return gochart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(gochart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
