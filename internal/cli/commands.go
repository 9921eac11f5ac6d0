package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyike/CortexSim/config"
	"github.com/dyike/CortexSim/internal/logger"
)

const version = "v0.1.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var (
		cfg        *config.Config
		mgr        *config.Manager
		configPath string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:   "cortexsim",
		Short: "CortexSim - heterogeneous agent market simulator",
		Long: `CortexSim simulates a single-stock market populated by zero-information,
value, momentum and learned traders connected through a small-world network.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				m, err := config.NewManager(
					config.WithConfigPath(configPath),
					config.WithInitialConfig(config.DefaultConfig()),
				)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				mgr = m
				c := m.Get()
				cfg = &c
			} else {
				cfg = config.DefaultConfig()
			}
			if debug {
				cfg.Debug = true
			}
			logger.Setup(cfg.LogLevel, cfg.Debug)

			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: interactive run
			printBanner()
			opts := runOptions{seedDays: 365}
			if err := PromptForRunOptions(cfg, &opts); err != nil {
				return err
			}
			sum, err := runSimulation(cmd.Context(), *cfg, mgr, opts)
			if err != nil {
				return err
			}
			printSummary(sum)
			return nil
		},
	}

	rootCmd.AddCommand(newRunCmd(&cfg, &mgr))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(&cfg))

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path")

	return rootCmd
}

// newRunCmd creates the non-interactive run command
func newRunCmd(cfg **config.Config, mgr **config.Manager) *cobra.Command {
	var (
		opts       runOptions
		steps      int
		seed       int64
		settle     string
		profileDir string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation with the current configuration",
		Example: `  cortexsim run --steps 500 --seed 7
  cortexsim run --config ./sim.json --watch
  cortexsim run --seed-symbol AAPL --seed-days 730`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := **cfg
			if cmd.Flags().Changed("steps") {
				c.Steps = steps
			}
			if cmd.Flags().Changed("seed") {
				c.Seed = seed
			}
			if cmd.Flags().Changed("settle") {
				c.SettleType = settle
			}
			if cmd.Flags().Changed("profile-dir") {
				c.ProfileDir = profileDir
			}
			if err := c.Validate(); err != nil {
				return err
			}

			sum, err := runSimulation(cmd.Context(), c, *mgr, opts)
			if err != nil {
				return err
			}
			printSummary(sum)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "Number of steps to simulate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed")
	cmd.Flags().StringVar(&settle, "settle", "", "Settlement type (limit or market)")
	cmd.Flags().StringVar(&profileDir, "profile-dir", "", "Write a CPU profile into this directory")
	cmd.Flags().StringVar(&opts.seedSymbol, "seed-symbol", "", "Seed the return history from this ticker")
	cmd.Flags().IntVar(&opts.seedDays, "seed-days", 365, "Calendar days of history to seed")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Apply live config edits while running (needs --config)")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("CortexSim " + version)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg **config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(*cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(*cfg)
		},
	})

	return configCmd
}

func showConfig(cfg *config.Config) {
	printBanner()
	rows := [][2]string{
		{"Project directory", cfg.ProjectDir},
		{"Profile directory", cfg.ProfilePath()},
		{"Agents", fmt.Sprintf("%d", cfg.NumAgents())},
		{"Steps", fmt.Sprintf("%d", cfg.Steps)},
		{"Seed", fmt.Sprintf("%d", cfg.Seed)},
		{"Initial price", fmt.Sprintf("%.2f", cfg.InitialPrice)},
		{"Initial dividend", fmt.Sprintf("%.2f", cfg.InitialDividend)},
		{"Risk-free rate", fmt.Sprintf("%.4f", cfg.RiskFreeRate)},
		{"Settle type", cfg.SettleType},
		{"Interaction rate", fmt.Sprintf("%.2f", cfg.InteractionRate)},
		{"Network degree", fmt.Sprintf("%d", cfg.NetworkDegree)},
		{"Log level", cfg.LogLevel},
	}
	fmt.Println(kv(rows))
	fmt.Println()
	for _, g := range cfg.Groups {
		fmt.Printf("  %-18s x%-4d behaviour=%-3s ra=%.2f la=%.2f\n",
			g.Strategy, g.Count, g.Behaviour, g.RiskAversion, g.LossAversion)
	}
}

func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		printFail(err.Error())
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if cfg.Learned.HistCutoff+cfg.Learned.Lookback >= cfg.Steps {
		printWarn("learned agents will never trade: steps do not exceed the history cutoff")
	}
	printOK("configuration is valid")
	return nil
}
