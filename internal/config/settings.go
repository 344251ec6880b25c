package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerSettings configures the HTTP API. Every key can be set through an
// API_-prefixed environment variable (API_PORT, API_SCENARIO_DIR, ...).
type ServerSettings struct {
	Port        string        `mapstructure:"port"`
	Env         string        `mapstructure:"env"`
	ScenarioDir string        `mapstructure:"scenario_dir"`
	RunTTL      time.Duration `mapstructure:"run_ttl"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
}

// Production reports whether the server runs in release mode.
func (s ServerSettings) Production() bool {
	return s.Env == "production"
}

// LoadServerSettings reads settings from an optional file and the environment.
// The environment wins over the file.
func LoadServerSettings(path string) (ServerSettings, error) {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("scenario_dir", "examples/scenarios")
	v.SetDefault("run_ttl", time.Hour)
	v.SetDefault("cors_origins", []string{"*"})

	v.SetEnvPrefix("API")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return ServerSettings{}, err
		}
	}

	return ServerSettings{
		Port:        v.GetString("port"),
		Env:         v.GetString("env"),
		ScenarioDir: v.GetString("scenario_dir"),
		RunTTL:      v.GetDuration("run_ttl"),
		CORSOrigins: v.GetStringSlice("cors_origins"),
	}, nil
}
