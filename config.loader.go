// File: config.loader.go

package memberjwt

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadConfig,
// e.g. MEMBERJWT_SECRET or MEMBERJWT_LIFETIME_IN_DAYS.
const EnvPrefix = "MEMBERJWT"

// LoadConfig reads a Config from an optional YAML file and the environment.
//
// Environment variables win over the file. When path is empty the loader looks
// for memberjwt.yaml in the working directory and in ./config; a missing file
// is not an error. The returned config is validated, so a missing secret
// surfaces here as ErrConfiguration.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to set defaults: %w", ErrConfiguration, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("memberjwt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Unmarshal only sees env values for keys viper already knows about.
	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		if key := t.Field(i).Tag.Get("mapstructure"); key != "" {
			_ = v.BindEnv(key)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("%w: failed to read config file: %w", ErrConfiguration, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to decode config: %w", ErrConfiguration, err)
	}

	// viper lower-cases map keys; member field keys such as firstName are
	// case sensitive, so that section is decoded straight from the file.
	if used := v.ConfigFileUsed(); used != "" {
		fields, err := readMemberFields(used)
		if err != nil {
			return Config{}, err
		}
		if fields != nil {
			cfg.IncludedMemberFields = fields
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readMemberFields(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrConfiguration, err)
	}

	var doc struct {
		IncludedMemberFields map[string]string `yaml:"included_member_fields"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid included_member_fields: %w", ErrConfiguration, err)
	}
	return doc.IncludedMemberFields, nil
}
