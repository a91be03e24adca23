package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider       string `yaml:"provider" default:"yahoo" validate:"oneof=yahoo rest mock"`
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		Symbol         string `yaml:"symbol" default:"AUDUSD=X" validate:"required"`
		InvertedSymbol string `yaml:"inverted_symbol" default:"USDAUD (inverted)" validate:"required"`
		Tag            string `yaml:"tag" default:"audusd" validate:"required,alphanum"`
		InvertedTag    string `yaml:"inverted_tag" default:"usdaud" validate:"required,alphanum,nefield=Tag"`
	} `yaml:"data_source"`
	Intraday IntradayWindow `yaml:"intraday"`
	Daily    DailyWindow    `yaml:"daily"`
	Forecast struct {
		Disabled  bool `yaml:"disabled"`
		Horizon   int  `yaml:"horizon" default:"5" validate:"min=1,max=260"`
		MinPoints int  `yaml:"min_points" default:"30" validate:"min=2"`
	} `yaml:"forecast"`
	Output struct {
		Dir string `yaml:"dir" default:"data" validate:"required"`
	} `yaml:"output"`
	Schedule struct {
		Cron string `yaml:"cron" default:"0 */15 * * * *"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Window is one fetch window and the suffix its files are written under.
type Window struct {
	Period   string
	Interval string
	FileTag  string
}

// IntradayWindow defaults to one day of 15-minute bars.
type IntradayWindow struct {
	Period   string `yaml:"period" default:"1d" validate:"required"`
	Interval string `yaml:"interval" default:"15m" validate:"required"`
	FileTag  string `yaml:"file_tag" default:"15m" validate:"required"`
}

func (w IntradayWindow) Window() Window { return Window(w) }

// DailyWindow defaults to two years of daily bars.
type DailyWindow struct {
	Period   string `yaml:"period" default:"2y" validate:"required"`
	Interval string `yaml:"interval" default:"1d" validate:"required"`
	FileTag  string `yaml:"file_tag" default:"daily" validate:"required"`
}

func (w DailyWindow) Window() Window { return Window(w) }

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults fill the gaps.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PAIRFEED_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("PAIRFEED_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("PAIRFEED_HORIZON"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse PAIRFEED_HORIZON %q: %w", v, err)
		}
		cfg.Forecast.Horizon = n
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	return nil
}
