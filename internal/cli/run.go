package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"

	"github.com/dyike/CortexSim/config"
	"github.com/dyike/CortexSim/internal/cache"
	"github.com/dyike/CortexSim/internal/display"
	"github.com/dyike/CortexSim/internal/trading"
	"github.com/dyike/CortexSim/pkg/dataflows"
)

type runOptions struct {
	seedSymbol string
	seedDays   int
	watch      bool
}

// runSimulation builds a session from cfg, optionally seeds its history,
// and runs it to completion. When mgr is non-nil and opts.watch is set,
// live edits of the config file are forwarded to the running session.
func runSimulation(ctx context.Context, cfg config.Config, mgr *config.Manager, opts runOptions) (*trading.Summary, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dir := cfg.ProfilePath(); dir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
		log.Info().Str("dir", dir).Msg("cpu profiling enabled")
	}

	var sessOpts []trading.Option
	if opts.seedSymbol != "" {
		client := dataflows.NewYahooFinanceClient(dataflows.WithCache(cache.NewBarCache(cfg.DataCacheDir)))
		returns, err := client.GetHistoricalReturns(ctx, opts.seedSymbol, opts.seedDays)
		if err != nil {
			return nil, fmt.Errorf("seed history from %s: %w", opts.seedSymbol, err)
		}
		log.Info().Str("symbol", opts.seedSymbol).Int("returns", len(returns)).Msg("seeded return history")
		sessOpts = append(sessOpts, trading.WithSeedReturns(returns))
	}

	session, err := trading.NewTradingSession(cfg, sessOpts...)
	if err != nil {
		return nil, err
	}

	if opts.watch {
		if mgr == nil {
			return nil, fmt.Errorf("--watch requires --config")
		}
		if err := mgr.WatchLive(ctx, session.ApplyLive); err != nil {
			return nil, fmt.Errorf("watch config: %w", err)
		}
		log.Info().Str("path", mgr.Path()).Msg("watching config for live settings")
	}

	sum, err := session.Execute(ctx)
	if err != nil {
		log.Error().Err(err).Int("step", session.CurrentStep()).Msg("simulation stopped")
		return nil, err
	}
	return sum, nil
}

func printSummary(sum *trading.Summary) {
	fmt.Print(display.NewResultsDisplay("Simulation results").Render(sum))
}
