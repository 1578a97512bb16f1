// Package config resolves ucrepl settings from flags, UCREPL_* environment
// variables, an optional ucrepl.yaml and defaults, in that order.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ormasoftchile/ucrepl/pkg/logging"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "UCREPL"

// Keys.
const (
	KeyCatalog  = "catalog"
	KeyGroupBy  = "group_by"
	KeyIdentity = "identity"
	KeyLogLevel = "log_level"
	KeyNoColor  = "no_color"
)

// DefaultGroupBy is the tag the selector labels with.
const DefaultGroupBy = "domain"

// Config is the resolved configuration.
type Config struct {
	Catalog  string         `mapstructure:"catalog"`
	GroupBy  string         `mapstructure:"group_by"`
	Identity map[string]any `mapstructure:"identity"`
	LogLevel string         `mapstructure:"log_level"`
	NoColor  bool           `mapstructure:"no_color"`
}

// New returns a viper instance with defaults, env binding and the config
// file search path set up. A non-empty file is used instead of the search.
func New(file string) *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyCatalog, "")
	v.SetDefault(KeyGroupBy, DefaultGroupBy)
	v.SetDefault(KeyLogLevel, logging.DefaultLevel)
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyIdentity, map[string]any{})
	SetEnvPrefix(v, EnvPrefix)

	if file != "" {
		v.SetConfigFile(file)
		return v
	}
	v.SetConfigName("ucrepl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "ucrepl"))
	}
	return v
}

// SetEnvPrefix lets v read PREFIX_KEY variables, with dashes mapped to
// underscores.
func SetEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// BindFlags binds every flag of cmd to the key of the same name with
// dashes turned into underscores.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			errs = append(errs, errors.Wrapf(err, "bind flag %s", f.Name))
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return errors.Join(errs...)
}

// Load reads the config file, if any, and decodes all sources. A missing
// file in the search path is not an error; a missing explicit file is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.GroupBy == "" {
		cfg.GroupBy = DefaultGroupBy
	}
	if cfg.Identity == nil {
		cfg.Identity = map[string]any{}
	}
	return &cfg, nil
}
