package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"astroaspects/internal/chart"
	"astroaspects/internal/logging"
)

const chartExportPath = "/api/v1/charts/%d/export"

// RemoteOptions parameterise the remote chart fetcher.
type RemoteOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Remote pulls charts from another instance's HTTP API.
type Remote struct {
	opts    RemoteOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewRemote constructs a remote fetcher.
func NewRemote(opts RemoteOptions, logger zerolog.Logger) *Remote {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Remote{
		opts:    opts,
		logger:  logging.Component(logger, "remote_fetcher"),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// FetchChart downloads one chart export and converts it.
func (r *Remote) FetchChart(ctx context.Context, chartID int64) (chart.Bundle, error) {
	if r.baseURL == "" {
		return chart.Bundle{}, errors.New("fetcher.base_url is required")
	}
	if chartID <= 0 {
		return chart.Bundle{}, fmt.Errorf("invalid chart id %d", chartID)
	}

	endpoint := r.baseURL + fmt.Sprintf(chartExportPath, chartID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return chart.Bundle{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(r.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "astroaspects/1.0")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return chart.Bundle{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return chart.Bundle{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return chart.Bundle{}, parseHTTPError(resp.StatusCode, payload)
	}

	var env exportResponse
	if err := json.Unmarshal(payload, &env); err != nil {
		return chart.Bundle{}, fmt.Errorf("decode export: %w", err)
	}
	if env.Code != 0 {
		return chart.Bundle{}, fmt.Errorf("remote error (%d): %s", env.Code, env.Message)
	}
	if env.Data == nil {
		return chart.Bundle{}, errors.New("remote export returned no data")
	}

	bundle, err := env.Data.Bundle()
	if err != nil {
		return chart.Bundle{}, err
	}
	r.logger.Debug().
		Int64("chart_id", chartID).
		Int("points", len(bundle.Points)).
		Msg("fetched remote chart")
	return bundle, nil
}

type exportResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    *chart.Document `json:"data"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("remote api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("remote api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("remote api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("remote api error (%d)", status)
}

var _ ChartFetcher = (*Remote)(nil)
