// Package config loads and validates the declarative monitor configuration:
// global defaults, the list of probed services, and their per-service
// overrides.
package config

import "time"

// Configuration is the root declarative document.
type Configuration struct {
	Settings GlobalSettings      `yaml:"settings" mapstructure:"settings"`
	Pings    []ServiceDefinition `yaml:"pings" mapstructure:"pings" validate:"required,min=1,dive"`
}

// GlobalSettings holds the tunables applied to every service that does not
// override them.
type GlobalSettings struct {
	CheckIntervalSeconds    int     `yaml:"check_interval" mapstructure:"check_interval" validate:"min=10"`
	WarningThresholdSeconds float64 `yaml:"warning_threshold" mapstructure:"warning_threshold" validate:"min=0"`
	TimeoutSeconds          float64 `yaml:"timeout" mapstructure:"timeout" validate:"min=1"`
	MaxRetries              int     `yaml:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`
	WorkerPoolSize          int     `yaml:"worker_pool_size" mapstructure:"worker_pool_size" validate:"min=0,max=100"`
	HistoryFile             string  `yaml:"history_file" mapstructure:"history_file"`
}

// DefaultGlobalSettings returns the documented defaults, applied before any
// document overrides them.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		CheckIntervalSeconds:    60,
		WarningThresholdSeconds: 2,
		TimeoutSeconds:          5,
		MaxRetries:              3,
		WorkerPoolSize:          0,
		HistoryFile:             "history.csv",
	}
}

// HeaderKV is one configured request header, preserving document order.
type HeaderKV struct {
	Name  string `yaml:"name" mapstructure:"name" validate:"required"`
	Value string `yaml:"value" mapstructure:"value"`
}

// ServiceDefinition is one probed target and its validation criteria.
type ServiceDefinition struct {
	Name             string                 `yaml:"name" mapstructure:"name" validate:"required,max=100,ascii"`
	Protocol         string                 `yaml:"protocol" mapstructure:"protocol" validate:"required,oneof=HTTP HTTPS"`
	Method           string                 `yaml:"method" mapstructure:"method" validate:"required,oneof=GET HEAD POST"`
	Resource         string                 `yaml:"resource" mapstructure:"resource" validate:"required,url"`
	Expected         ExpectedValidation     `yaml:"expected" mapstructure:"expected" validate:"required"`
	Tags             []string               `yaml:"tags" mapstructure:"tags"`
	Headers          []HeaderKV             `yaml:"headers" mapstructure:"headers" validate:"dive"`
	Payload          map[string]interface{} `yaml:"payload,omitempty" mapstructure:"payload"`
	IntervalSeconds  *int                   `yaml:"interval" mapstructure:"interval"`
	TimeoutSeconds   *float64               `yaml:"timeout" mapstructure:"timeout"`
	WarningThreshold *float64               `yaml:"warning_threshold" mapstructure:"warning_threshold"`
}

// ExpectedValidation is the pass criteria for one service's probe.
type ExpectedValidation struct {
	Status  int               `yaml:"status" mapstructure:"status" validate:"required,min=100,max=599"`
	Text    string            `yaml:"text" mapstructure:"text"`
	Headers map[string]string `yaml:"headers,omitempty" mapstructure:"headers"`
}

// EffectiveServiceConfig is the merge of GlobalSettings and a
// ServiceDefinition's overrides, computed fresh at the start of every cycle.
type EffectiveServiceConfig struct {
	Name             string
	Protocol         string
	Method           string
	Resource         string
	Expected         ExpectedValidation
	Tags             []string
	Headers          []HeaderKV
	Payload          map[string]interface{}
	Interval         time.Duration
	Timeout          time.Duration
	WarningThreshold time.Duration
}

// Merge overlays def's overrides onto settings, resolving every numeric
// field to a concrete value.
func Merge(settings GlobalSettings, def ServiceDefinition) EffectiveServiceConfig {
	intervalSeconds := settings.CheckIntervalSeconds
	if def.IntervalSeconds != nil {
		intervalSeconds = *def.IntervalSeconds
	}

	timeoutSeconds := settings.TimeoutSeconds
	if def.TimeoutSeconds != nil {
		timeoutSeconds = *def.TimeoutSeconds
	}

	warningSeconds := settings.WarningThresholdSeconds
	if def.WarningThreshold != nil {
		warningSeconds = *def.WarningThreshold
	}

	return EffectiveServiceConfig{
		Name:             def.Name,
		Protocol:         def.Protocol,
		Method:           def.Method,
		Resource:         def.Resource,
		Expected:         def.Expected,
		Tags:             def.Tags,
		Headers:          def.Headers,
		Payload:          def.Payload,
		Interval:         time.Duration(intervalSeconds) * time.Second,
		Timeout:          secondsToDuration(timeoutSeconds),
		WarningThreshold: secondsToDuration(warningSeconds),
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
