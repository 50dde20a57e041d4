package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDoneDir    = "done_videos"
	DefaultErrorDir   = "failed_uploads"
	DefaultCategoryID = "27"
	DefaultLanguage   = "en"
)

type Global struct {
	DefaultSourceDir  string `yaml:"default_source_dir"`
	PublishHours      []int  `yaml:"publish_hours"`
	UTCOffsetHours    int    `yaml:"utc_offset_hours"`
	StateFile         string `yaml:"state_file"`
	AuthDir           string `yaml:"auth_dir"`
	LogDir            string `yaml:"log_dir"`
	LogRetentionDays  int    `yaml:"log_retention_days"`
	TempDir           string `yaml:"temp_dir"`
	TempRetentionDays int    `yaml:"temp_retention_days"`
	WhisperModel      string `yaml:"whisper_model"`
	DeepSeekAPIKey    string `yaml:"deepseek_api_key"`
	HistoryDSN        string `yaml:"history_dsn"`
}

type Channel struct {
	ChannelID       string `yaml:"channel_id"`
	Name            string `yaml:"name"`
	DailyLimit      int    `yaml:"daily_limit"`
	SourceDir       string `yaml:"source_dir"`
	DoneDir         string `yaml:"done_dir"`
	ErrorDir        string `yaml:"error_dir"`
	DefaultLanguage string `yaml:"default_language"`
	CategoryID      string `yaml:"category_id"`
	TokenFile       string `yaml:"token_file"`
}

type Config struct {
	Global   Global    `yaml:"global"`
	Channels []Channel `yaml:"channels"`
}

// Load reads the YAML configuration file and fills in defaults. Validation
// is a separate step so callers can report all problems before aborting.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Global.StateFile == "" {
		c.Global.StateFile = "publishing_state.json"
	}
	if c.Global.AuthDir == "" {
		c.Global.AuthDir = "auth"
	}
	if c.Global.LogDir == "" {
		c.Global.LogDir = "logs"
	}
	if c.Global.LogRetentionDays == 0 {
		c.Global.LogRetentionDays = 30
	}
	if c.Global.TempDir == "" {
		c.Global.TempDir = "temp"
	}
	if c.Global.TempRetentionDays == 0 {
		c.Global.TempRetentionDays = 1
	}
	if c.Global.WhisperModel == "" {
		c.Global.WhisperModel = "base"
	}

	for i := range c.Channels {
		ch := &c.Channels[i]
		if ch.DoneDir == "" {
			ch.DoneDir = DefaultDoneDir
		}
		if ch.ErrorDir == "" {
			ch.ErrorDir = DefaultErrorDir
		}
		if ch.CategoryID == "" {
			ch.CategoryID = DefaultCategoryID
		}
		if ch.DefaultLanguage == "" {
			ch.DefaultLanguage = DefaultLanguage
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("no channels configured")
	}
	if len(c.Global.PublishHours) == 0 {
		return fmt.Errorf("publish_hours is empty")
	}
	prev := -1
	for _, h := range c.Global.PublishHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("publish hour %d out of range", h)
		}
		if h <= prev {
			return fmt.Errorf("publish_hours must be strictly ascending")
		}
		prev = h
	}
	if c.Global.UTCOffsetHours < -12 || c.Global.UTCOffsetHours > 14 {
		return fmt.Errorf("utc_offset_hours %d out of range", c.Global.UTCOffsetHours)
	}

	seen := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.ChannelID == "" {
			return fmt.Errorf("channel %q has no channel_id", ch.Name)
		}
		if seen[ch.ChannelID] {
			return fmt.Errorf("duplicate channel_id %s", ch.ChannelID)
		}
		seen[ch.ChannelID] = true
		if ch.DailyLimit <= 0 {
			return fmt.Errorf("channel %s: daily_limit must be positive", ch.ChannelID)
		}
		if ch.TokenFile == "" {
			return fmt.Errorf("channel %s: token_file is required", ch.ChannelID)
		}
		if ch.SourceDir == "" && c.Global.DefaultSourceDir == "" {
			return fmt.Errorf("channel %s: no source_dir and no default_source_dir", ch.ChannelID)
		}
	}

	return nil
}

// EffectiveSourceDir returns the channel's source directory, falling back to
// the global default.
func (ch Channel) EffectiveSourceDir(g Global) string {
	if ch.SourceDir != "" {
		return ch.SourceDir
	}
	return g.DefaultSourceDir
}
