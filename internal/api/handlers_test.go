package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/config"
	"astroaspects/internal/engine"
	"astroaspects/internal/fetcher"
	"astroaspects/internal/storage"
	"astroaspects/internal/zodiac"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	store   *storage.SQLiteStore
	chartID int64
	sunID   int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))

	planet := func(objectID int64, name string, c zodiac.Coordinate) *chart.Point {
		return &chart.Point{
			CelestialObjectID: objectID,
			Name:              name,
			Coordinate:        c,
			Category:          chart.MajorPlanetLuminary,
			Orientation:       chart.Direct,
			AllowableOrb:      decimal.NewFromInt(8),
		}
	}
	cusps := make([]chart.Cusp, 0, 12)
	for h := 1; h <= 12; h++ {
		cusps = append(cusps, chart.Cusp{HouseSystemID: 1, House: h, Coordinate: zodiac.MustNew(h-1, 0, 0, 0)})
	}
	id, err := store.SaveChart(ctx, chart.Bundle{
		Chart: chart.Chart{SubjectName: "Api", OriginAt: time.Date(1999, 9, 9, 9, 0, 0, 0, time.UTC), Type: chart.Natal},
		Points: []*chart.Point{
			planet(1, "Sun", zodiac.MustNew(0, 10, 0, 0)),
			planet(3, "Mercury", zodiac.MustNew(0, 15, 0, 0)),
		},
		Angles: []chart.Angle{{AngleID: chart.Ascendant, Coordinate: zodiac.MustNew(3, 12, 0, 0)}},
		Cusps:  cusps,
	})
	require.NoError(t, err)

	points, err := store.Points(ctx, id)
	require.NoError(t, err)
	sun := chart.FindByName(points, "Sun")
	require.NotNil(t, sun)

	eng, err := engine.New(store, zerolog.Nop())
	require.NoError(t, err)

	return &testServer{
		router:  NewRouter(eng, config.EngineConfig{HouseSystemID: 1}, zerolog.Nop()),
		store:   store,
		chartID: id,
		sunID:   sun.ID,
	}
}

func (s *testServer) get(t *testing.T, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.router.ServeHTTP(rec, req)
	var body Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func decodeData(t *testing.T, body Response, out any) {
	t.Helper()
	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec, _ = s.get(t, "/health")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestGetChart(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.get(t, "/api/v1/charts/"+itoa(s.chartID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, body.Code)
	var c map[string]any
	decodeData(t, body, &c)
	assert.Equal(t, "Api", c["subjectName"])

	rec, body = s.get(t, "/api/v1/charts/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, body.Code)

	rec, _ = s.get(t, "/api/v1/charts/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAspects(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.get(t, "/api/v1/charts/"+itoa(s.chartID)+"/aspects?point="+itoa(s.sunID))
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []engine.AspectGroup
	decodeData(t, body, &groups)
	require.Len(t, groups, 16)
	require.Len(t, groups[0].Members, 1)
	assert.Equal(t, "Mercury", groups[0].Members[0].Name)
	assert.True(t, groups[0].Members[0].Separation.Equal(decimal.NewFromInt(5)), "separation %s", groups[0].Members[0].Separation)
	assert.Contains(t, rec.Body.String(), `"separation":"5"`)

	rec, _ = s.get(t, "/api/v1/charts/"+itoa(s.chartID)+"/aspects")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.get(t, "/api/v1/charts/"+itoa(s.chartID)+"/aspects?point=424242")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = s.get(t, "/api/v1/charts/"+itoa(s.chartID)+"/aspects?angle=Ascendant")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, body, &groups)
	// Ascendant at 12° Cancer squares Sun (2° off) and Mercury (3° off, angle orb 3)
	square := groups[aspect.Square]
	assert.Equal(t, "Square", square.AspectName)
	assert.Len(t, square.Members, 2)
}

func TestGetListingsAndFlags(t *testing.T) {
	s := newTestServer(t)
	base := "/api/v1/charts/" + itoa(s.chartID)

	rec, body := s.get(t, base+"/listing")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]any
	decodeData(t, body, &entries)
	// Sun, Mercury, Ascendant, Descendant
	assert.Len(t, entries, 4)

	rec, _ = s.get(t, base+"/listing?arabic=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.get(t, base+"/houses")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, body, &entries)
	assert.Len(t, entries, 12)

	rec, body = s.get(t, base+"/draconic/angles")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, body, &entries)
	assert.Empty(t, entries, "no True Node means no draconic angles")
}

func TestExportFeedsRemoteFetcher(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	remote := fetcher.NewRemote(fetcher.RemoteOptions{BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
	bundle, err := remote.FetchChart(context.Background(), s.chartID)
	require.NoError(t, err)
	assert.Equal(t, "Api", bundle.Chart.SubjectName)
	assert.Len(t, bundle.Points, 2)
	assert.Len(t, bundle.Cusps, 12)

	_, err = remote.FetchChart(context.Background(), 777)
	require.Error(t, err)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
