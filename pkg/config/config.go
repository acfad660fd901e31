package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Estimation EstimationConfig
	Gaps       GapsConfig
	Code       CodeConfig
	Batch      BatchConfig
	Logging    LoggingConfig
}

type EstimationConfig struct {
	// SafetyFactor is the markup applied to hours whose readings cannot
	// resolve the intra-hour peak.
	SafetyFactor float64
	// DefaultVoltage is used when a site spec omits panel voltage.
	DefaultVoltage float64
	// Method selects the estimation variant: hea, nec or lbnl.
	Method string
}

type GapsConfig struct {
	Enabled bool
	// Timezone is the IANA zone applied to naive meter timestamps.
	Timezone string
	// Tolerance is the multiple of the expected interval beyond which a
	// delta is flagged as a gap.
	Tolerance float64
}

type CodeConfig struct {
	Edition string
}

type BatchConfig struct {
	// Parallelism bounds concurrent solution evaluation; 1 means
	// sequential.
	Parallelism int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/panelcalc")

	viper.SetEnvPrefix("PANELCALC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("estimation.safetyFactor", 1.3)
	viper.SetDefault("estimation.defaultVoltage", 240.0)
	viper.SetDefault("estimation.method", "hea")

	viper.SetDefault("gaps.enabled", true)
	viper.SetDefault("gaps.timezone", "UTC")
	viper.SetDefault("gaps.tolerance", 1.5)

	viper.SetDefault("code.edition", "legacy")

	viper.SetDefault("batch.parallelism", 1)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
