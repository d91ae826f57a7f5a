package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/opswatch/sentinel/internal/apperrors"
)

// fallbackSearchDirs is the ordered list of directories consulted when the
// preferred config path is absent.
var fallbackSearchDirs = []string{".", "./configs", "/etc/sentinel"}

// ResolveConfigPath finds the YAML document to load. If preferred is set and
// exists, it wins outright. Otherwise fallbackSearchDirs is searched, in
// order, for a file named config.yaml or config.yml. Every path tried is
// returned so a total miss can report all of them.
func ResolveConfigPath(preferred string) (path string, tried []string, err error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if preferred != "" {
		tried = append(tried, preferred)
		if _, statErr := os.Stat(preferred); statErr == nil {
			return preferred, tried, nil
		}
	}

	for _, dir := range fallbackSearchDirs {
		for _, name := range []string{"config.yaml", "config.yml"} {
			candidate := filepath.Join(dir, name)
			tried = append(tried, candidate)
			if _, statErr := os.Stat(candidate); statErr == nil {
				v.SetConfigFile(candidate)
				if readErr := v.ReadInConfig(); readErr == nil {
					return candidate, tried, nil
				}
			}
		}
	}

	return "", tried, fmt.Errorf("no configuration file found among %d candidate paths", len(tried))
}

// Load reads, parses, and validates the configuration document at path.
// It never returns a partially-valid Configuration: on any failure the
// returned error is an *apperrors.ConfigurationError carrying every
// violation found, not just the first.
func Load(path string) (*Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigurationError(path, nil, err)
	}
	return Parse(path, raw)
}

// Parse validates and decodes raw YAML bytes into a Configuration. path is
// used only for error reporting.
func Parse(path string, raw []byte) (*Configuration, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, apperrors.NewConfigurationError(path, []string{"document is empty"}, nil)
	}

	var shape interface{}
	if err := yaml.Unmarshal(raw, &shape); err != nil {
		return nil, apperrors.NewConfigurationError(path, nil, err)
	}

	shapeErrors := checkShape(shape)
	if len(shapeErrors) > 0 {
		return nil, apperrors.NewConfigurationError(path, shapeErrors, nil)
	}

	cfg := Configuration{Settings: DefaultGlobalSettings()}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, apperrors.NewConfigurationError(path, nil, err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, apperrors.NewConfigurationError(path, errs, nil)
	}

	return &cfg, nil
}
