package config

import "github.com/spf13/viper"

// EnvSettings holds the environment-driven knobs: where to read the
// document from, where to publish snapshots, and the log level. None of
// these live inside the YAML document itself.
type EnvSettings struct {
	ConfigFile string
	DataFile   string
	APIFile    string
	LogLevel   string
}

// LoadEnvSettings resolves EnvSettings from the process environment,
// applying the documented defaults when a variable is unset.
func LoadEnvSettings() EnvSettings {
	v := viper.New()
	v.SetDefault("config_file", "config.yaml")
	v.SetDefault("data_file", "_data/services.json")
	v.SetDefault("api_file", "_site/api/status.json")
	v.SetDefault("log_level", "info")

	_ = v.BindEnv("config_file", "CONFIG_FILE")
	_ = v.BindEnv("data_file", "DATA_FILE")
	_ = v.BindEnv("api_file", "API_FILE")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	return EnvSettings{
		ConfigFile: v.GetString("config_file"),
		DataFile:   v.GetString("data_file"),
		APIFile:    v.GetString("api_file"),
		LogLevel:   v.GetString("log_level"),
	}
}
