package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dyike/CortexSim/consts"
)

// AgentGroup describes a block of agents sharing one strategy and behaviour.
type AgentGroup struct {
	Strategy     string  `json:"strategy"`
	Count        int     `json:"count"`
	Behaviour    string  `json:"behaviour"`
	RiskAversion float64 `json:"risk_aversion"`
	LossAversion float64 `json:"loss_aversion"`
}

// LearnedConfig holds the learned strategy's schedule and network settings.
type LearnedConfig struct {
	Lookback     int     `json:"lookback"`
	HistCutoff   int     `json:"hist_cutoff"`
	TrainFreq    int     `json:"train_freq"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	Width        int     `json:"width"`
	HiddenLayers int     `json:"hidden_layers"`
}

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ProfileDir   string `json:"profile_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	Groups []AgentGroup `json:"groups"`
	Steps  int          `json:"steps"`
	Seed   int64        `json:"seed"`

	InitialPrice    float64 `json:"initial_price"`
	InitialDividend float64 `json:"initial_dividend"`
	InitialCash     float64 `json:"initial_cash"`
	InitialShares   float64 `json:"initial_shares"`

	DividendGrowth float64 `json:"dividend_growth"`
	DividendVol    float64 `json:"dividend_vol"`
	DividendFreq   float64 `json:"dividend_freq"`
	RiskFreeRate   float64 `json:"risk_free_rate"`
	Dt             float64 `json:"dt"`

	SettleType       string     `json:"settle_type"`
	InteractionRate  float64    `json:"interaction_rate"`
	ConfidenceLevels [2]float64 `json:"confidence_levels"`
	Tolerance        float64    `json:"tolerance"`

	NetworkDegree int     `json:"network_degree"`
	RewireProb    float64 `json:"rewire_prob"`

	MaxPriceMove float64 `json:"max_price_move"`
	PriceTick    float64 `json:"price_tick"`

	Learned LearnedConfig `json:"learned"`

	LogLevel string `json:"log_level"`
	Debug    bool   `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults rooted at dir,
// without consulting the environment.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		ProjectDir:   dir,
		ProfileDir:   "",
		DataCacheDir: filepath.Join(dir, "data", "cache"),

		Groups: []AgentGroup{
			{Strategy: consts.StrategyZeroInformation, Count: 25, Behaviour: consts.BehaviourRisk, RiskAversion: 2, LossAversion: 2.25},
			{Strategy: consts.StrategyValue, Count: 25, Behaviour: consts.BehaviourLossCautious, RiskAversion: 2, LossAversion: 2.25},
			{Strategy: consts.StrategyMomentum, Count: 25, Behaviour: consts.BehaviourRiskOptimistic, RiskAversion: 2, LossAversion: 2.25},
			{Strategy: consts.StrategyLearned, Count: 5, Behaviour: consts.BehaviourLoss, RiskAversion: 2, LossAversion: 2.25},
		},
		Steps: 500,
		Seed:  42,

		InitialPrice:    100,
		InitialDividend: 5,
		InitialCash:     10000,
		InitialShares:   10,

		DividendGrowth: 0.02,
		DividendVol:    0.1,
		DividendFreq:   4,
		RiskFreeRate:   0.05,
		Dt:             1.0 / 252,

		SettleType:       consts.SettleLimit,
		InteractionRate:  0.2,
		ConfidenceLevels: [2]float64{1.25, 0.75},
		Tolerance:        0.5,

		NetworkDegree: 4,
		RewireProb:    0.1,

		MaxPriceMove: 0.1,
		PriceTick:    0.01,

		Learned: LearnedConfig{
			Lookback:     10,
			HistCutoff:   250,
			TrainFreq:    50,
			Epochs:       1,
			BatchSize:    32,
			LearningRate: 0.001,
			Width:        5,
			HiddenLayers: 3,
		},

		LogLevel: "info",
		Debug:    false,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("CORTEXSIM_PROFILE_DIR"); val != "" {
		c.ProfileDir = val
	}
	if val := os.Getenv("CORTEXSIM_DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("CORTEXSIM_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.Steps = v
		}
	}
	if val := os.Getenv("CORTEXSIM_SEED"); val != "" {
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Seed = v
		}
	}

	if val := os.Getenv("CORTEXSIM_SETTLE_TYPE"); val != "" {
		c.SettleType = strings.ToLower(val)
	}
	if val := os.Getenv("CORTEXSIM_INTERACTION_RATE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.InteractionRate = v
		}
	}
	if val := os.Getenv("CORTEXSIM_RISK_FREE_RATE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.RiskFreeRate = v
		}
	}
	if val := os.Getenv("CORTEXSIM_DIVIDEND_VOL"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.DividendVol = v
		}
	}

	if val := os.Getenv("CORTEXSIM_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("CORTEXSIM_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// NumAgents is the total agent count over all groups.
func (c *Config) NumAgents() int {
	n := 0
	for _, g := range c.Groups {
		n += g.Count
	}
	return n
}

func (c *Config) Validate() error {
	if len(c.Groups) == 0 {
		return fmt.Errorf("at least one agent group is required")
	}
	for i, g := range c.Groups {
		if !slices.Contains(consts.Strategies, g.Strategy) {
			return fmt.Errorf("group %d: unknown strategy %q", i, g.Strategy)
		}
		if g.Count < 0 {
			return fmt.Errorf("group %d: count must not be negative", i)
		}
		if !slices.Contains(consts.BehaviourCodes, g.Behaviour) {
			return fmt.Errorf("group %d: invalid behaviour code %q", i, g.Behaviour)
		}
		if g.RiskAversion <= 0 || g.LossAversion <= 0 {
			return fmt.Errorf("group %d: aversion coefficients must be positive", i)
		}
	}
	if c.NumAgents() == 0 {
		return fmt.Errorf("agent groups contain no agents")
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative")
	}
	if c.InitialPrice <= 0 {
		return fmt.Errorf("initial price must be positive")
	}
	if c.DividendVol == 0 {
		return fmt.Errorf("dividend volatility must be non-zero")
	}
	if c.DividendFreq <= 0 {
		return fmt.Errorf("dividend frequency must be positive")
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive")
	}
	if err := c.Live().Validate(); err != nil {
		return err
	}
	if c.Tolerance < 0 || c.Tolerance > 1 {
		return fmt.Errorf("tolerance must be in [0,1]")
	}
	if c.ConfidenceLevels[0] <= 0 || c.ConfidenceLevels[1] <= 0 {
		return fmt.Errorf("confidence levels must be positive")
	}
	if c.NetworkDegree < 0 || c.NetworkDegree%2 != 0 || c.NetworkDegree >= c.NumAgents() {
		return fmt.Errorf("network degree must be even and below the agent count")
	}
	if c.RewireProb < 0 || c.RewireProb > 1 {
		return fmt.Errorf("rewire probability must be in [0,1]")
	}
	if c.MaxPriceMove < 0 || c.MaxPriceMove >= 1 {
		return fmt.Errorf("max price move must be in [0,1)")
	}
	if c.PriceTick < 0 {
		return fmt.Errorf("price tick must not be negative")
	}
	l := c.Learned
	if l.Lookback <= 0 || l.HistCutoff < 0 || l.TrainFreq <= 0 || l.Epochs <= 0 ||
		l.BatchSize <= 0 || l.LearningRate <= 0 || l.Width <= 0 || l.HiddenLayers < 0 {
		return fmt.Errorf("learned settings are out of range")
	}
	if l.HistCutoff < l.Lookback {
		return fmt.Errorf("learned history cutoff %d must be at least the lookback %d", l.HistCutoff, l.Lookback)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ProfilePath(), c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

// ProfilePath resolves ProfileDir against ProjectDir.
func (c *Config) ProfilePath() string {
	if c.ProfileDir == "" || filepath.IsAbs(c.ProfileDir) {
		return c.ProfileDir
	}
	return filepath.Join(c.ProjectDir, c.ProfileDir)
}
