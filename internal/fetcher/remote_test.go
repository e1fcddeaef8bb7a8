package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestRemoteMissingBaseURL(t *testing.T) {
	r := NewRemote(RemoteOptions{}, noopLogger())
	if _, err := r.FetchChart(context.Background(), 1); err == nil {
		t.Fatal("未配置 base_url 时应返回错误")
	}
}

func TestRemoteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 404, "message": "chart not found"})
	}))
	defer srv.Close()

	r := NewRemote(RemoteOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	_, err := r.FetchChart(context.Background(), 9)
	if err == nil {
		t.Fatal("HTTP 404 应返回错误")
	}
	if got := err.Error(); got != "remote api error (404): chart not found" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestRemoteFetchSuccess(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "code": 0,
  "message": "ok",
  "data": {
    "chart": {"id": 5, "subject": "Remote", "origin": "2001-02-03T04:05:06Z", "type": 1},
    "points": [{"celestialObjectId": 1, "name": "Sun", "category": 1, "orb": "8", "sign": 10, "degrees": 14, "minutes": 3, "seconds": 0}],
    "angles": [{"angle": 1, "sign": 3, "degrees": 0, "minutes": 0, "seconds": 0}],
    "cusps": [{"houseSystem": 1, "house": 1, "sign": 3, "degrees": 0, "minutes": 0, "seconds": 0}]
  }
}`))
	}))
	defer srv.Close()

	r := NewRemote(RemoteOptions{BaseURL: srv.URL + "/", Timeout: time.Second, UserAgent: "test"}, noopLogger())
	b, err := r.FetchChart(context.Background(), 5)
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}
	if gotPath != "/api/v1/charts/5/export" || gotUA != "test" {
		t.Fatalf("request path %q ua %q", gotPath, gotUA)
	}
	if b.Chart.SubjectName != "Remote" || len(b.Points) != 1 || len(b.Angles) != 1 || len(b.Cusps) != 1 {
		t.Fatalf("unexpected bundle %+v", b)
	}
	if b.Points[0].Coordinate.Sign != 10 || b.Points[0].Coordinate.Degrees != 14 {
		t.Fatalf("coordinate %v", b.Points[0].Coordinate)
	}
}

func TestRemoteEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 3, "message": "bad chart"}`))
	}))
	defer srv.Close()

	r := NewRemote(RemoteOptions{BaseURL: srv.URL}, noopLogger())
	if _, err := r.FetchChart(context.Background(), 1); err == nil {
		t.Fatal("非零 code 应返回错误")
	}
}
