package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/CortexSim/config"
	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/pkg/dataflows"
)

// PromptForSteps prompts the user for the number of steps to simulate
func PromptForSteps(def int) (int, error) {
	var raw string
	prompt := &survey.Input{
		Message: "Number of steps to simulate:",
		Help:    "The learned strategy only starts trading once the history cutoff has been reached.",
		Default: strconv.Itoa(def),
	}

	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		n, err := strconv.Atoi(strings.TrimSpace(val.(string)))
		if err != nil {
			return fmt.Errorf("steps must be an integer")
		}
		if n <= 0 {
			return fmt.Errorf("steps must be positive")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(raw))
}

// PromptForSettleType prompts the user to choose how orders are settled
func PromptForSettleType(def string) (string, error) {
	var settle string
	prompt := &survey.Select{
		Message: "Select settlement type:",
		Options: []string{consts.SettleLimit, consts.SettleMarket},
		Default: def,
		Help:    "limit: orders carry a limit price. market: orders fill at the clearing price.",
	}

	if err := survey.AskOne(prompt, &settle); err != nil {
		return "", err
	}
	return settle, nil
}

// PromptForSeed prompts the user for the random seed
func PromptForSeed(def int64) (int64, error) {
	var raw string
	prompt := &survey.Input{
		Message: "Random seed:",
		Default: strconv.FormatInt(def, 10),
	}

	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		if _, err := strconv.ParseInt(strings.TrimSpace(val.(string)), 10, 64); err != nil {
			return fmt.Errorf("seed must be an integer")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// PromptForSeedSymbol asks for an optional ticker whose daily returns
// prefill the return history. An empty answer skips seeding.
func PromptForSeedSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Seed history from ticker (empty to skip):",
		Help:    "Daily gross returns from Yahoo Finance are loaded before the first step.",
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		return dataflows.ValidateSymbol(str)
	}))
	if err != nil {
		return "", err
	}

	return dataflows.NormalizeSymbol(symbol), nil
}

// PromptForRunOptions collects the interactive answers into cfg and opts.
func PromptForRunOptions(cfg *config.Config, opts *runOptions) error {
	var err error
	if cfg.Steps, err = PromptForSteps(cfg.Steps); err != nil {
		return err
	}
	if cfg.SettleType, err = PromptForSettleType(cfg.SettleType); err != nil {
		return err
	}
	if cfg.Seed, err = PromptForSeed(cfg.Seed); err != nil {
		return err
	}
	if opts.seedSymbol, err = PromptForSeedSymbol(); err != nil {
		return err
	}
	return nil
}
