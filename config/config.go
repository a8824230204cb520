package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. AWS_INVENTORY_REGIONS
const EnvPrefix = "AWS_INVENTORY"

// configName is the file looked up in the working and home directories
const configName = ".aws-inventory"

// flagKeys maps configuration keys to the command line flags that override them
var flagKeys = map[string]string{
	"regions":   "region",
	"profile":   "profile",
	"verbose":   "verbose",
	"nodefault": "nodefault",
	"output":    "output",
	"log-level": "log-level",
	"fail-fast": "fail-fast",
}

// Load builds the run configuration from defaults, an optional YAML file,
// AWS_INVENTORY_* environment variables and flags, in increasing precedence.
// An explicitly given path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var file string
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		file = v.ConfigFileUsed()
	}

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Regions = normalizeRegions(cfg.Regions)
	cfg.File = file

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("regions", DefaultRegions)
	v.SetDefault("profile", "")
	v.SetDefault("verbose", false)
	v.SetDefault("nodefault", false)
	v.SetDefault("output", "table")
	v.SetDefault("log-level", "info")
	v.SetDefault("fail-fast", false)
}

// normalizeRegions splits comma separated entries, trims them and drops
// empty and repeated names, keeping the first occurrence
func normalizeRegions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, region := range strings.Split(entry, ",") {
			region = strings.TrimSpace(region)
			if region == "" || slices.Contains(out, region) {
				continue
			}
			out = append(out, region)
		}
	}
	return out
}

// validateConfig validates the run configuration
func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s: failed on the '%s' rule", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return err
	}
	return nil
}
