package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
)

// Requirements are the base per-day headcounts before the leader adjustment
type Requirements struct {
	Night   int `yaml:"night" validate:"min=0"`
	Day     int `yaml:"day" validate:"min=0"`
	Evening int `yaml:"evening" validate:"min=0"`
}

// Constraints tune the hard constraints of the roster model
type Constraints struct {
	WorkDayConstrain int    `yaml:"workDayConstrain" validate:"min=0"`
	DayOffConstrain  int    `yaml:"dayOffConstrain" validate:"min=0,ltefield=WorkDayConstrain"`
	PreferenceQuota  int    `yaml:"preferenceQuota" validate:"min=0"`
	RestRule         string `yaml:"restRule" validate:"oneof=night-isolation minimum-gap"`
	MinRestHours     int    `yaml:"minRestHours" validate:"min=0,max=48"`
}

// Solver configures the solve
type Solver struct {
	TimeBudgetSeconds int `yaml:"timeBudgetSeconds" validate:"min=1"`
}

// Config represents the application configuration
type Config struct {
	StaffSheetID    string       `yaml:"staffSheetID" validate:"required"`
	StaffTab        string       `yaml:"staffTab" validate:"required"`
	RosterSheetID   string       `yaml:"rosterSheetID,omitempty"`
	CredentialsFile string       `yaml:"credentialsFile,omitempty"`
	DatabaseURL     string       `yaml:"databaseURL,omitempty"`
	Requirements    Requirements `yaml:"requirements"`
	Constraints     Constraints  `yaml:"constraints"`
	Solver          Solver       `yaml:"solver"`
	CommonDaysOff   []string     `yaml:"commonDaysOff" validate:"dive,required"`
	Holidays        []string     `yaml:"holidays,omitempty" validate:"dive,datetime=2006-01-02"`
	MetricsFile     string       `yaml:"metricsFile,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns a config holding every default value. Sheet IDs are left
// empty.
func Default() *Config {
	params := scheduling.DefaultParams()
	return &Config{
		Requirements: Requirements{Night: 2, Day: 4, Evening: 3},
		Constraints: Constraints{
			WorkDayConstrain: params.WorkDayConstrain,
			DayOffConstrain:  params.DayOffConstrain,
			PreferenceQuota:  params.PreferenceQuota,
			RestRule:         string(params.RestRule),
			MinRestHours:     params.MinRestHours,
		},
		Solver:        Solver{TimeBudgetSeconds: 20},
		CommonDaysOff: []string{calendar.DefaultDaysOffRule},
	}
}

// LoadWithEnv loads scheduler_config.<env>.yaml from the current directory,
// falling back to the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(fmt.Sprintf("scheduler_config.%s.yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Keys absent from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.CommonDaysOff {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in commonDaysOff[%d]: %w", i, err)
		}
	}

	return nil
}

// ResolveDatabaseURL prefers databaseURL from the file, then DATABASE_URL
func (c *Config) ResolveDatabaseURL() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", fmt.Errorf("no database configured: set databaseURL or DATABASE_URL")
}

// Params converts the constraint section for the optimizer
func (c *Config) Params() scheduling.Params {
	return scheduling.Params{
		WorkDayConstrain: c.Constraints.WorkDayConstrain,
		DayOffConstrain:  c.Constraints.DayOffConstrain,
		PreferenceQuota:  c.Constraints.PreferenceQuota,
		RestRule:         scheduling.RestRule(c.Constraints.RestRule),
		MinRestHours:     c.Constraints.MinRestHours,
	}
}

func (c *Config) BaseRequirements() scheduling.Headcount {
	return scheduling.NewHeadcount(c.Requirements.Night, c.Requirements.Day, c.Requirements.Evening)
}

func (c *Config) TimeBudget() time.Duration {
	return time.Duration(c.Solver.TimeBudgetSeconds) * time.Second
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
