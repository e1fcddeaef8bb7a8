package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"astroaspects/internal/chart"
	"astroaspects/internal/engine"
	"astroaspects/internal/logging"
)

// Notification 封装一次行运提醒的上下文。
type Notification struct {
	Tick          time.Time
	NatalChart    chart.Chart
	TransitChart  chart.Chart
	Hits          []engine.Hit
	Channels      []string
	AdditionalMsg string
}

// Notifier 定义提醒输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 提醒器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logging.Component(logger, "alert_telegram"),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().
		Int64("natal_chart_id", note.NatalChart.ID).
		Int64("transit_chart_id", note.TransitChart.ID).
		Int("hits", len(note.Hits)).
		Msg("提醒已发送 (Telegram)")
	return nil
}

// LogNotifier writes the digest to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier builds the "log" channel.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.Component(logger, "alert_log")}
}

// Notify logs one line per hit.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	for _, h := range note.Hits {
		n.logger.Info().
			Int64("natal_chart_id", h.NatalChartID).
			Int64("transit_chart_id", h.TransitChartID).
			Str("natal_point", h.NatalPoint).
			Str("aspect", h.Aspect.String()).
			Str("transit_point", h.TransitPoint).
			Str("orb", h.Orb.StringFixed(2)).
			Int("transit_house", h.TransitHouse).
			Msg("transit aspect")
	}
	return nil
}

// Fanout delivers to several notifiers and joins their errors.
type Fanout []Notifier

// Notify sends to every notifier even when one fails.
func (f Fanout) Notify(ctx context.Context, note Notification) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RenderMessage formats the plain-text digest used by chat channels.
func RenderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Transit Digest]\n")
	if !note.Tick.IsZero() {
		builder.WriteString(fmt.Sprintf("Tick: %s UTC\n", note.Tick.UTC().Format(time.RFC3339)))
	}
	builder.WriteString(fmt.Sprintf("Natal: %s (#%d)\n", note.NatalChart.SubjectName, note.NatalChart.ID))
	builder.WriteString(fmt.Sprintf("Transit: %s (#%d, %s)\n",
		note.TransitChart.SubjectName, note.TransitChart.ID, note.TransitChart.OriginAt.UTC().Format(time.RFC3339)))
	if len(note.Hits) == 0 {
		builder.WriteString("No new aspects.\n")
	}
	for _, h := range note.Hits {
		builder.WriteString(fmt.Sprintf("%s %s %s, orb %s°", h.TransitPoint, h.Aspect, h.NatalPoint, h.Orb.StringFixed(2)))
		if h.TransitHouse > 0 {
			builder.WriteString(fmt.Sprintf(" (house %d)", h.TransitHouse))
		}
		builder.WriteString("\n")
	}
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = Fanout(nil)
)
