package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opswatch/sentinel/internal/apperrors"
	"github.com/opswatch/sentinel/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file without probing anything",
	Long: `validate resolves and loads a configuration document the same way
run does, then reports every violation it finds and exits non-zero if the
document is not usable. It never issues a network request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := config.LoadEnvSettings()

		preferred := configFlag
		if preferred == "" {
			preferred = env.ConfigFile
		}

		path, tried, err := config.ResolveConfigPath(preferred)
		if err != nil {
			return fmt.Errorf("resolving configuration path (tried %v): %w", tried, err)
		}

		cfg, err := config.Load(path)
		if err != nil {
			var cfgErr *apperrors.ConfigurationError
			if asConfigurationError(err, &cfgErr) {
				fmt.Printf("configuration at %s is invalid:\n", cfgErr.Path)
				for _, field := range cfgErr.Fields {
					fmt.Printf("  - %s\n", field)
				}
				if cfgErr.Cause != nil {
					fmt.Printf("  - %v\n", cfgErr.Cause)
				}
				return fmt.Errorf("validation failed with %d problem(s)", len(cfgErr.Fields))
			}
			return err
		}

		fmt.Printf("configuration at %s is valid: %d service(s) configured\n", path, len(cfg.Pings))
		return nil
	},
}

func asConfigurationError(err error, target **apperrors.ConfigurationError) bool {
	ce, ok := err.(*apperrors.ConfigurationError)
	if !ok {
		return false
	}
	*target = ce
	return true
}
