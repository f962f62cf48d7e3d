package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SlackBotToken      string
	SlackSigningSecret string
	DefaultChannel     string
	AdminChannel       string
	PayrollEmail       string
	PayrollCCEmail     string
	ConfirmEmoji       string
	TrackerRetention   time.Duration
	GuardRetention     time.Duration
	InlineThreshold    int
	HTTPPort           string
	Debug              bool
}

func New() (*Config, error) {
	token := os.Getenv("SLACK_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN environment variable is not set")
	}

	signingSecret := os.Getenv("SLACK_SIGNING_SECRET")
	if signingSecret == "" {
		return nil, fmt.Errorf("SLACK_SIGNING_SECRET environment variable is not set")
	}

	cfg := &Config{
		SlackBotToken:      token,
		SlackSigningSecret: signingSecret,
		DefaultChannel:     getEnv("DEFAULT_CHANNEL", "#general"),
		AdminChannel:       getEnv("ADMIN_CHANNEL", "#payroll-admin"),
		PayrollEmail:       getEnv("PAYROLL_EMAIL", "pagos@empresa.com"),
		PayrollCCEmail:     getEnv("PAYROLL_CC_EMAIL", "rrhh@empresa.com"),
		ConfirmEmoji:       getEnv("CONFIRM_EMOJI", "white_check_mark"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
	}

	var err error
	cfg.TrackerRetention, err = getEnvAsDuration("TRACKER_RETENTION", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.GuardRetention, err = getEnvAsDuration("GUARD_RETENTION", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.InlineThreshold, err = getEnvAsInt("INLINE_REPORT_THRESHOLD", 20)
	if err != nil {
		return nil, err
	}

	cfg.Debug, err = getEnvAsBool("DEBUG", false)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected a duration like '24h', got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: expected a boolean, got '%s'", key, valueStr)
	}

	return value, nil
}
