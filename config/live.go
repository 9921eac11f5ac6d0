package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dyike/CortexSim/consts"
)

// LiveSettings are the market parameters a running session may pick up
// between steps without a restart.
type LiveSettings struct {
	SettleType      string
	InteractionRate float64
	RiskFreeRate    float64
}

func (c *Config) Live() LiveSettings {
	return LiveSettings{
		SettleType:      c.SettleType,
		InteractionRate: c.InteractionRate,
		RiskFreeRate:    c.RiskFreeRate,
	}
}

func (l LiveSettings) Validate() error {
	if l.SettleType != consts.SettleLimit && l.SettleType != consts.SettleMarket {
		return fmt.Errorf("settle type must be %q or %q, got %q", consts.SettleLimit, consts.SettleMarket, l.SettleType)
	}
	if l.InteractionRate < 0 || l.InteractionRate > 1 {
		return fmt.Errorf("interaction rate must be in [0,1], got %g", l.InteractionRate)
	}
	if l.RiskFreeRate <= 0 {
		return fmt.Errorf("risk-free rate must be positive, got %g", l.RiskFreeRate)
	}
	return nil
}

// WatchLive is Watch filtered down to valid changes of the live settings.
// Invalid settings are logged and never reach onChange.
func (m *Manager) WatchLive(ctx context.Context, onChange func(LiveSettings)) error {
	cur := m.Get()
	last := cur.Live()
	return m.Watch(ctx, func(cfg Config) {
		next := cfg.Live()
		if next == last {
			return
		}
		if err := next.Validate(); err != nil {
			log.Warn().Err(err).Str("path", m.Path()).Msg("ignoring invalid live settings")
			return
		}
		last = next
		onChange(next)
	})
}
