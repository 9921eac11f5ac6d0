package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/dyike/CortexSim/config"
	"github.com/dyike/CortexSim/internal/display"
	"github.com/dyike/CortexSim/internal/logger"
	"github.com/dyike/CortexSim/internal/trading"
)

func main() {
	cfg := config.DefaultConfig()
	logger.Setup(cfg.LogLevel, cfg.Debug)

	session, err := trading.NewTradingSession(*cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build session")
	}

	sum, err := session.Execute(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("simulation failed")
		os.Exit(1)
	}

	fmt.Print(display.NewResultsDisplay("CortexSim").Render(sum))
}
