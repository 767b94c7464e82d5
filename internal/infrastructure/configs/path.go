package configs

import (
	"os"

	"github.com/hilthontt/ragtp/internal/infrastructure/env"
)

// DetermineConfigPath returns the YAML file to load, or "" when the
// process should run from defaults and environment only.
func DetermineConfigPath() string {
	if configPath := env.GetString("RAGTP_CONFIG", ""); configPath != "" {
		return configPath
	}

	candidates := []string{
		"./config.yaml",
		"./config.yml",
		"/etc/ragtp/config.yaml",
		"/app/config.yaml", // common in Docker
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
