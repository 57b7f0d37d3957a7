// Package config holds the runtime configuration: school constants,
// directory layout and the filler strings used in report slots.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the zeugnis configuration.
type Config struct {
	// SchoolName is printed on every report (SCHOOL / SCHOOLBIG).
	SchoolName string `mapstructure:"schoolName"`
	// SchoolYear is the year the school year ends in, e.g. 2016 for
	// the school year 2015 – 2016.
	SchoolYear int `mapstructure:"schoolYear"`
	// DataDir holds the per-school-year data (grade database).
	DataDir string `mapstructure:"dataDir"`
	// TemplateDir holds the template-definition files.
	TemplateDir string `mapstructure:"templateDir"`
	// DateFormat is the printed date layout (Go reference time).
	DateFormat string       `mapstructure:"dateFormat"`
	Fillers    FillerConfig `mapstructure:"fillers"`
	Quiet      bool         `mapstructure:"quiet"`
	Verbose    bool         `mapstructure:"verbose"`
}

// FillerConfig contains the texts placed in report slots no subject or
// grade claimed.
type FillerConfig struct {
	NoSubject string `mapstructure:"noSubject"`
	Ungraded  string `mapstructure:"ungraded"`
}

// LoadConfig loads configuration from defaults, an optional
// .zeugnisrc.{json,yaml,yml} file and ZEUGNIS_* environment variables.
func LoadConfig(dataDir string) (*Config, error) {
	viper.SetDefault("schoolName", "Freie Michaelschule")
	viper.SetDefault("schoolYear", 2016)
	viper.SetDefault("dataDir", "DATA")
	viper.SetDefault("templateDir", "templates")
	viper.SetDefault("dateFormat", "02.01.2006")
	viper.SetDefault("fillers.noSubject", "––––––––––")
	viper.SetDefault("fillers.ungraded", "––––––––––")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)

	configPaths := []string{".zeugnisrc.json", ".zeugnisrc.yaml", ".zeugnisrc.yml"}
	for _, path := range configPaths {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err == nil {
			break
		}
	}

	viper.SetEnvPrefix("ZEUGNIS")
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if dataDir != "" {
		config.DataDir = dataDir
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.SchoolName == "" {
		return fmt.Errorf("schoolName must not be empty")
	}
	if config.SchoolYear < 1900 || config.SchoolYear > 3000 {
		return fmt.Errorf("implausible schoolYear: %d", config.SchoolYear)
	}
	if config.DateFormat == "" {
		return fmt.Errorf("dateFormat must not be empty")
	}
	if config.Fillers.NoSubject == "" || config.Fillers.Ungraded == "" {
		return fmt.Errorf("filler strings must not be empty")
	}
	return nil
}

// PrintSchoolYear renders the school year for report output,
// e.g. "2015 – 2016".
func (c *Config) PrintSchoolYear() string {
	return fmt.Sprintf("%d – %d", c.SchoolYear-1, c.SchoolYear)
}
