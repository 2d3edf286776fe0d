package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidReminderTime         = errors.New("invalid reminder time, expected HH:MM")
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env             string `mapstructure:"env"`              // current application environment (local, dev, prod etc)
	Server          Server `mapstructure:"server"`           // HTTP server section
	Line            Line   `mapstructure:"-"`                // LINE channel credentials loaded from environment
	Supabase        Supa   `mapstructure:"-"`                // Supabase credentials loaded from environment
	ReminderUserID  string `mapstructure:"-"`                // default target for scheduled pushes
	ReminderTime    string `mapstructure:"reminder_time"`    // daily reminder time, HH:MM
	LocalTestMode   bool   `mapstructure:"local_test_mode"`  // suppress real outbound sends
	StrictSignature bool   `mapstructure:"strict_signature"` // reject webhooks with a bad signature
}

// Server contains HTTP server parameters.
type Server struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Line contains LINE messaging platform credentials.
type Line struct {
	ChannelSecret string
	ChannelToken  string
}

// Supa contains the Supabase REST endpoint and API key.
type Supa struct {
	URL     string
	AnonKey string
}

// ReminderClock parses ReminderTime into hour and minute.
func (c *Config) ReminderClock() (hour, minute int, err error) {
	parts := strings.SplitN(c.ReminderTime, ":", 2)
	if len(parts) != 2 {
		return 0, 0, ErrInvalidReminderTime
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidReminderTime
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidReminderTime
	}
	return hour, minute, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("server.port", "5001")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("reminder_time", "09:00")
	v.SetDefault("local_test_mode", false)
	v.SetDefault("strict_signature", true)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("line_channel_access_token", "LINE_CHANNEL_ACCESS_TOKEN")
	_ = v.BindEnv("line_channel_secret", "LINE_CHANNEL_SECRET")
	_ = v.BindEnv("supabase_url", "SUPABASE_URL")
	_ = v.BindEnv("supabase_anon_key", "SUPABASE_ANON_KEY")
	_ = v.BindEnv("reminder_user_id", "REMINDER_USER_ID")
	_ = v.BindEnv("reminder_time", "REMINDER_TIME")
	_ = v.BindEnv("local_test_mode", "LOCAL_TEST_MODE")
	_ = v.BindEnv("strict_signature", "STRICT_SIGNATURE")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.Line.ChannelToken = v.GetString("line_channel_access_token")
	cfg.Line.ChannelSecret = v.GetString("line_channel_secret")
	if cfg.Line.ChannelToken == "" || cfg.Line.ChannelSecret == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Supabase.URL = v.GetString("supabase_url")
	cfg.Supabase.AnonKey = v.GetString("supabase_anon_key")
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.ReminderUserID = v.GetString("reminder_user_id")
	cfg.LocalTestMode = v.GetBool("local_test_mode")
	cfg.StrictSignature = v.GetBool("strict_signature")

	if _, _, err := cfg.ReminderClock(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
