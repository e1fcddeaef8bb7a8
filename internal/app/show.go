package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"astroaspects/internal/engine"
	"astroaspects/internal/storage"
)

// ListCharts prints every stored chart record.
func (a *App) ListCharts(ctx context.Context) error {
	return a.withEngine(ctx, func(_ *engine.Engine, repo storage.Repository) error {
		charts, err := repo.Charts(ctx)
		if err != nil {
			return err
		}
		if len(charts) == 0 {
			fmt.Fprintln(a.Out, "no charts found")
			return nil
		}

		writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tSubject\tLocation\tOrigin (UTC)\tType")
		for _, c := range charts {
			fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n",
				c.ID,
				sanitizeInline(c.SubjectName),
				sanitizeInline(c.SubjectLocation),
				c.OriginAt.UTC().Format(time.RFC3339),
				c.Type,
			)
		}
		return writer.Flush()
	})
}

// Show prints the chart listing: stored points, angles and any derived points the flags enable.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.ChartID <= 0 {
		return a.ListCharts(ctx)
	}
	return a.withEngine(ctx, func(eng *engine.Engine, _ storage.Repository) error {
		entries, err := eng.ChartListing(ctx, a.request(opts.ChartID, opts.HouseSystem))
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(a.Out, "no points found")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		classes := make([]string, 0, len(entries))
		for _, e := range entries {
			name := e.Name
			if e.Orientation != "" && e.Orientation != "D" {
				name += " " + e.Orientation
			}
			rows = append(rows, []string{name, e.SignAbbreviation, dms(e.Degrees, e.Minutes, e.Seconds), houseLabel(e.House), e.CategoryName})
			classes = append(classes, e.ElementClass)
		}
		newPalette(a.Out).table(a.Out, []string{"Point", "Sign", "Position", "House", "Category"}, rows, 1, classes)
		return nil
	})
}

// Angles prints the six angles, or their draconic mirrors.
func (a *App) Angles(ctx context.Context, chartID int64, draconic bool) error {
	return a.withEngine(ctx, func(eng *engine.Engine, _ storage.Repository) error {
		list := eng.AngleListing
		if draconic {
			list = eng.DraconicAngleListing
		}
		entries, err := list(ctx, chartID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(a.Out, "no angles found")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		classes := make([]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Name, e.SignAbbreviation, dms(e.Degrees, e.Minutes, e.Seconds)})
			classes = append(classes, e.ElementClass)
		}
		newPalette(a.Out).table(a.Out, []string{"Angle", "Sign", "Position"}, rows, 1, classes)
		return nil
	})
}

// Houses prints the cusps of one house system, or their draconic mirrors.
func (a *App) Houses(ctx context.Context, opts ShowOptions, draconic bool) error {
	return a.withEngine(ctx, func(eng *engine.Engine, _ storage.Repository) error {
		list := eng.HouseListing
		if draconic {
			list = eng.DraconicHouseListing
		}
		entries, err := list(ctx, opts.ChartID, a.Config.ResolveHouseSystem(opts.HouseSystem))
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(a.Out, "no house cusps found")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		classes := make([]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{strconv.Itoa(e.House), e.SignAbbreviation, dms(e.Degrees, e.Minutes, e.Seconds)})
			classes = append(classes, e.ElementClass)
		}
		newPalette(a.Out).table(a.Out, []string{"House", "Sign", "Cusp"}, rows, 1, classes)
		return nil
	})
}

// Aspects prints the sixteen aspect groups for the selected base point.
func (a *App) Aspects(ctx context.Context, opts AspectOptions) error {
	return a.withEngine(ctx, func(eng *engine.Engine, _ storage.Repository) error {
		var (
			groups []engine.AspectGroup
			err    error
		)
		base := a.request(opts.ChartID, opts.HouseSystem)
		if opts.OtherChartID > 0 {
			groups, err = eng.TransitAspects(ctx, base, a.request(opts.OtherChartID, opts.HouseSystem), opts.Selector)
		} else {
			groups, err = eng.Aspects(ctx, base, opts.Selector)
		}
		if err != nil {
			return err
		}
		a.printAspectGroups(groups)
		return nil
	})
}

func (a *App) printAspectGroups(groups []engine.AspectGroup) {
	pal := newPalette(a.Out)
	printed := 0
	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		printed++
		pal.heading(a.Out, g.AspectName)
		rows := make([][]string, 0, len(g.Members))
		classes := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			rows = append(rows, []string{
				m.Name,
				m.SignAbbreviation,
				dms(m.Degrees, m.Minutes, m.Seconds),
				houseLabel(m.House),
				m.Orb.StringFixed(2),
				m.Separation.StringFixed(2),
				keyLabel(m),
			})
			classes = append(classes, m.ElementClass)
		}
		pal.table(a.Out, []string{"Point", "Sign", "Position", "House", "Orb", "Separation", "Key"}, rows, 1, classes)
	}
	if printed == 0 {
		fmt.Fprintln(a.Out, "no aspects found")
	}
}

// Transits lists the charts that can be laid over chartID.
func (a *App) Transits(ctx context.Context, chartID int64) error {
	return a.withEngine(ctx, func(eng *engine.Engine, _ storage.Repository) error {
		charts, err := eng.TransitCharts(ctx, chartID)
		if err != nil {
			return err
		}
		if len(charts) == 0 {
			fmt.Fprintln(a.Out, "no transit charts found")
			return nil
		}
		writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tSubject\tOrigin (UTC)\tType")
		for _, c := range charts {
			fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", c.ID, sanitizeInline(c.SubjectName), c.OriginAt.UTC().Format(time.RFC3339), c.Type)
		}
		return writer.Flush()
	})
}

func houseLabel(h int) string {
	if h <= 0 {
		return "-"
	}
	return strconv.Itoa(h)
}

func keyLabel(m engine.Member) string {
	if m.Key == nil {
		return ""
	}
	return m.Key.String()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
