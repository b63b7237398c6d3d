package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the EU residency endpoint of the Mixpanel raw export API.
const DefaultBaseURL = "https://data-eu.mixpanel.com"

var (
	ErrMissingProjectID = errors.New("MIXPANEL_PROJECT_ID is not set")
	ErrMissingToken     = errors.New("MIXPANEL_TOKEN is not set")
)

// Config holds process configuration. Credentials are loaded once at startup
// and passed into the export client explicitly; pipeline code never reads the
// environment.
type Config struct {
	ProjectID string
	Token     string
	BaseURL   string
	Port      string
}

// Load reads configuration from the environment and, when present, a
// mixsight.toml file (current directory first, then XDG config dir).
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	v := newBaseViper()
	_ = v.ReadInConfig() // missing config file is fine, env may cover everything

	cfg := &Config{
		ProjectID: v.GetString("mixpanel_project_id"),
		Token:     v.GetString("mixpanel_token"),
		BaseURL:   v.GetString("mixpanel_base_url"),
		Port:      v.GetString("port"),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Port == "" {
		cfg.Port = "3000"
	}

	return cfg, nil
}

// Validate reports the first missing credential. A config that fails
// validation must halt the process before any export call is made.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return ErrMissingProjectID
	}
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("mixsight")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir := configDir(); dir != "" {
		v.AddConfigPath(dir)
	}

	v.AutomaticEnv()
	for _, key := range []string{"mixpanel_project_id", "mixpanel_token", "mixpanel_base_url", "port"} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	return v
}

// configDir returns the XDG config directory for mixsight.
func configDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome == "" {
		return ""
	}
	return filepath.Join(configHome, "mixsight")
}
