package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// LedgerMode selects the settlement backend.
const (
	LedgerModePaper   = "paper"
	LedgerModeGateway = "gateway"
)

// TokenLaunch describes one token to launch at startup.
type TokenLaunch struct {
	ID          string          `yaml:"id"`
	Symbol      string          `yaml:"symbol"`
	Name        string          `yaml:"name"`
	CurveType   string          `yaml:"curve_type"`
	BasePrice   decimal.Decimal `yaml:"base_price"`
	Slope       decimal.Decimal `yaml:"slope"`
	Exponent    decimal.Decimal `yaml:"exponent"`
	LogBase     decimal.Decimal `yaml:"log_base"`
	TotalSupply decimal.Decimal `yaml:"total_supply"`
	LogoURL     string          `yaml:"logo_url"`
}

// Config holds all application settings, loaded from YAML with env-var
// overrides for secrets.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Ledger struct {
		Mode             string `yaml:"mode"` // paper | gateway
		WSURL            string `yaml:"ws_url"`
		AccessKey        string `yaml:"access_key"`
		SecretKey        string `yaml:"secret_key"`
		SubmitTimeoutSec int    `yaml:"submit_timeout_sec"`
	} `yaml:"ledger"`

	Rates struct {
		URL             string `yaml:"url"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
	} `yaml:"rates"`

	Trading struct {
		DefaultSlippagePct decimal.Decimal `yaml:"default_slippage_pct"`
		MaxSlippagePct     decimal.Decimal `yaml:"max_slippage_pct"`
	} `yaml:"trading"`

	Launch struct {
		Tokens []TokenLaunch `yaml:"tokens"`
	} `yaml:"launch"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	switch c.Ledger.Mode {
	case LedgerModePaper:
		// No gateway settings required.
	case LedgerModeGateway:
		if !strings.HasPrefix(c.Ledger.WSURL, "ws://") && !strings.HasPrefix(c.Ledger.WSURL, "wss://") {
			return fmt.Errorf("invalid ledger WS URL: %s", c.Ledger.WSURL)
		}
	default:
		return fmt.Errorf("unknown ledger mode: %s", c.Ledger.Mode)
	}

	if c.Trading.MaxSlippagePct.IsNegative() {
		return fmt.Errorf("max slippage must be non-negative")
	}
	if c.Trading.DefaultSlippagePct.GreaterThan(c.Trading.MaxSlippagePct) {
		return fmt.Errorf("default slippage %s exceeds max %s",
			c.Trading.DefaultSlippagePct, c.Trading.MaxSlippagePct)
	}

	return nil
}

// overrideWithEnv overrides sensitive values from environment variables.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("LAUNCHPAD_LEDGER_KEY"); key != "" {
		cfg.Ledger.AccessKey = key
	}
	if secret := os.Getenv("LAUNCHPAD_LEDGER_SECRET"); secret != "" {
		cfg.Ledger.SecretKey = secret
	}
}
