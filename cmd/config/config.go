package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-slots/pkg/aggregate"
)

var cfgFile string

// Config is the resolved configuration for one invocation.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	OnDemand bool   `mapstructure:"on_demand"`
	// GroupBy is a comma separated list of rule names; empty means the
	// natural directory tree.
	GroupBy string `mapstructure:"group_by"`
	// CollapseLevel collapses groups at or below this depth after loading;
	// negative leaves everything expanded.
	CollapseLevel int              `mapstructure:"collapse_level"`
	Aggregates    []aggregate.Spec `mapstructure:"aggregates"`
}

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "slots"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SLOTS")
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	viper.SetDefault("data_dir", filepath.Join(home, ".local", "share", "slots"))
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("on_demand", false)
	viper.SetDefault("group_by", "")
	viper.SetDefault("collapse_level", -1)

	// A missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// Load resolves the configuration from viper.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:       viper.GetString("data_dir"),
		LogLevel:      viper.GetString("log_level"),
		OnDemand:      viper.GetBool("on_demand"),
		GroupBy:       strings.TrimSpace(viper.GetString("group_by")),
		CollapseLevel: viper.GetInt("collapse_level"),
	}
	specs, err := DecodeAggregates(viper.Get("aggregates"))
	if err != nil {
		return nil, err
	}
	cfg.Aggregates = specs
	return cfg, nil
}

// DecodeAggregates turns the raw aggregates section into validated specs.
func DecodeAggregates(raw any) ([]aggregate.Spec, error) {
	if raw == nil {
		return nil, nil
	}
	var specs []aggregate.Spec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &specs,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid aggregates section: %w", err)
	}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// DBPath is the sqlite database inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "slots.db")
}

// NewLogger creates the stderr logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/slots/config.yaml)")
}
