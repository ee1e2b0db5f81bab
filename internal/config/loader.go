package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/clearclaim/clearclaim/pkg/errors"
)

// envPrefix is the prefix for environment overrides, e.g.
// CLEARCLAIM_LOG_LEVEL=debug or CLEARCLAIM_SEARCH_ENABLED=true.
const envPrefix = "CLEARCLAIM"

// scalarKeys lists the settings reachable through environment variables.
// Registering them as viper defaults makes AutomaticEnv resolve the
// corresponding CLEARCLAIM_* variables during Unmarshal; table-valued domain
// settings are file-only.
func scalarKeys(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"log.level":                cfg.Log.Level,
		"log.format":               cfg.Log.Format,
		"log.output_paths":         cfg.Log.OutputPaths,
		"engine.max_query_length":  cfg.Engine.MaxQueryLength,
		"engine.chain_concurrency": cfg.Engine.ChainConcurrency,
		"search.enabled":           cfg.Search.Enabled,
		"search.addresses":         cfg.Search.Addresses,
		"search.username":          cfg.Search.Username,
		"search.password":          cfg.Search.Password,
		"search.index":             cfg.Search.Index,
		"search.top_k":             cfg.Search.TopK,
	}
}

// Load builds the effective configuration: built-in defaults, overlaid by the
// YAML file at path (optional, empty means none), overlaid by CLEARCLAIM_*
// environment variables. The result is validated; callers treat any error as
// fatal.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range scalarKeys(cfg) {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigRead, "reading config file").WithDetail(path)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "decoding configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
