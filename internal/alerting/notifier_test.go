package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/engine"
)

func sampleNote() Notification {
	return Notification{
		Tick:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		NatalChart:   chart.Chart{ID: 1, SubjectName: "Natal"},
		TransitChart: chart.Chart{ID: 4, SubjectName: "Sky", OriginAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		Hits: []engine.Hit{{
			NatalChartID:   1,
			TransitChartID: 4,
			NatalPoint:     "Sun",
			TransitPoint:   "Mars",
			Aspect:         aspect.Square,
			Orb:            decimal.RequireFromString("1.5"),
			TransitHouse:   7,
		}},
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	if !strings.Contains(received["text"], "Mars Square Sun, orb 1.50° (house 7)") {
		t.Fatalf("text 缺少行运行: %q", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), sampleNote()); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

func TestRenderMessageEmpty(t *testing.T) {
	note := sampleNote()
	note.Hits = nil
	note.AdditionalMsg = "simulated"
	msg := RenderMessage(note)
	if !strings.Contains(msg, "No new aspects.") || !strings.HasSuffix(msg, "simulated") {
		t.Fatalf("unexpected message %q", msg)
	}
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, Notification) error {
	f.calls++
	return errors.New("down")
}

func TestFanoutContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	first := &failingNotifier{}
	fan := Fanout{first, NewLogNotifier(zerolog.New(&buf))}

	err := fan.Notify(context.Background(), sampleNote())
	if err == nil || first.calls != 1 {
		t.Fatalf("err = %v calls = %d", err, first.calls)
	}
	if !strings.Contains(buf.String(), `"transit_point":"Mars"`) {
		t.Fatalf("log channel not reached: %s", buf.String())
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
