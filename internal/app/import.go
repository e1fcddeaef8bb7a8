package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"astroaspects/internal/chart"
	"astroaspects/internal/fetcher"
	"astroaspects/internal/storage"
)

// Import loads charts from files and from a remote instance into the store.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	total := len(opts.Files) + len(opts.RemoteIDs)
	if total == 0 {
		return errors.New("nothing to import; pass chart files or --remote ids")
	}

	var writer storage.ChartWriter
	if opts.DryRun {
		a.Logger.Warn().Msg("import dry-run: charts are validated but not written")
	} else {
		repo, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		writer = repo
	}

	var remote fetcher.ChartFetcher
	if len(opts.RemoteIDs) > 0 {
		remote = a.newRemote()
	}

	bar := a.newProgressBar(total)

	processed := 0
	failed := 0
	save := func(source string, bundles []chart.Bundle) {
		for _, b := range bundles {
			if writer == nil {
				processed++
				continue
			}
			id, err := writer.SaveChart(ctx, b)
			if err != nil {
				failed++
				a.Logger.Error().Err(err).Str("source", source).Str("subject", b.Chart.SubjectName).Msg("save chart failed")
				continue
			}
			processed++
			a.Logger.Debug().Int64("chart_id", id).Str("source", source).Msg("chart imported")
		}
	}

	for _, path := range opts.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		bundles, err := fetcher.ReadChartFile(path)
		if err != nil {
			failed++
			a.Logger.Error().Err(err).Str("file", path).Msg("read chart file failed")
		} else {
			save(path, bundles)
		}
		_ = bar.Add(1)
	}

	for _, id := range opts.RemoteIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		bundle, err := remote.FetchChart(ctx, id)
		if err != nil {
			failed++
			a.Logger.Error().Err(err).Int64("remote_chart_id", id).Msg("fetch remote chart failed")
		} else {
			save(fmt.Sprintf("remote:%d", id), []chart.Bundle{bundle})
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	a.Logger.Info().Int("processed", processed).Int("failed", failed).Bool("dry_run", opts.DryRun).Msg("import finished")
	if failed > 0 {
		return errors.New("some charts failed to import; check the log")
	}
	return nil
}

func (a *App) newRemote() *fetcher.Remote {
	cfg := a.Config.Fetcher
	return fetcher.NewRemote(fetcher.RemoteOptions{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
	}, a.Logger)
}

func (a *App) newProgressBar(total int) *progressbar.ProgressBar {
	out := a.Out
	if out == nil {
		out = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("importing charts"),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(out)
		}),
	)
}
