package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"astroaspects/internal/alerting"
	"astroaspects/internal/aspect"
	"astroaspects/internal/chart"
	"astroaspects/internal/engine"
)

// SimulateAlert 发送一条合成的行运提醒, 用于验证告警通道配置。
func (a *App) SimulateAlert(ctx context.Context, kind aspect.Kind, orb decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is disabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alerting channel configured")
	}

	now := time.Now().UTC()
	note := alerting.Notification{
		Tick:         now,
		NatalChart:   chart.Chart{SubjectName: "Simulated natal", OriginAt: now.AddDate(-30, 0, 0), Type: chart.Natal},
		TransitChart: chart.Chart{SubjectName: "Simulated transit", OriginAt: now, Type: chart.Transit},
		Hits: []engine.Hit{{
			NatalPoint:   "Sun",
			TransitPoint: "Mars",
			Aspect:       kind,
			Orb:          orb,
			TransitHouse: 1,
		}},
		Channels:      a.Config.Alerting.Channels,
		AdditionalMsg: "simulated alert",
	}
	return notifier.Notify(ctx, note)
}
