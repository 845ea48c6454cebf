package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. SHIPRISK_MODEL_MAX_ITERATIONS.
const EnvPrefix = "SHIPRISK"

// ConfigFileEnv names the environment variable that points at a YAML config file.
const ConfigFileEnv = "SHIPRISK_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Pipeline   PipelineConfig   `yaml:"pipeline" envconfig:"PIPELINE"`
	Model      ModelConfig      `yaml:"model" envconfig:"MODEL"`
	Evaluation EvaluationConfig `yaml:"evaluation" envconfig:"EVALUATION"`
	Finance    FinanceConfig    `yaml:"finance" envconfig:"FINANCE"`
	Store      StoreConfig      `yaml:"store" envconfig:"STORE"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	Input        string `yaml:"input" envconfig:"INPUT"`
	Sheet        string `yaml:"sheet" envconfig:"SHEET"`
	ArtifactsDir string `yaml:"artifacts_dir" envconfig:"ARTIFACTS_DIR" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
}

// PipelineConfig controls preparation of the dataset
type PipelineConfig struct {
	TrainFraction          float64 `yaml:"train_fraction" envconfig:"TRAIN_FRACTION" validate:"gt=0,lt=1"`
	ValFractionOfRemainder float64 `yaml:"val_fraction_of_remainder" envconfig:"VAL_FRACTION_OF_REMAINDER" validate:"gt=0,lt=1"`
	Seed                   int64   `yaml:"seed" envconfig:"SEED"`
	// FitScope selects the rows the encoder and normalizer learn from:
	// "train" (training partition only) or "all" (whole dataset, legacy).
	FitScope                  string   `yaml:"fit_scope" envconfig:"FIT_SCOPE" validate:"oneof=train all"`
	DropReference             bool     `yaml:"drop_reference" envconfig:"DROP_REFERENCE"`
	ExcludeFeatures           []string `yaml:"exclude_features" envconfig:"EXCLUDE_FEATURES"`
	GeopoliticalRiskThreshold float64  `yaml:"geopolitical_risk_threshold" envconfig:"GEOPOLITICAL_RISK_THRESHOLD"`
	WeatherSeverityThreshold  float64  `yaml:"weather_severity_threshold" envconfig:"WEATHER_SEVERITY_THRESHOLD"`
}

// ModelConfig controls the logistic regression solver
type ModelConfig struct {
	MaxIterations int     `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"min=1,max=10000"`
	Tolerance     float64 `yaml:"tolerance" envconfig:"TOLERANCE" validate:"gt=0"`
}

// EvaluationConfig controls thresholding of predicted probabilities
type EvaluationConfig struct {
	Threshold float64 `yaml:"threshold" envconfig:"THRESHOLD" validate:"gt=0,lt=1"`
	// LabelRule is "inverted" (p > threshold predicts late) or "natural".
	LabelRule string `yaml:"label_rule" envconfig:"LABEL_RULE" validate:"oneof=inverted natural"`
}

// FinanceConfig holds per-decision costs in whole USD and projection volumes
type FinanceConfig struct {
	PreventionCost int64 `yaml:"prevention_cost" envconfig:"PREVENTION_COST" validate:"gte=0"`
	LateLoss       int64 `yaml:"late_loss" envconfig:"LATE_LOSS" validate:"gte=0"`
	MonthlyVolume  int   `yaml:"monthly_volume" envconfig:"MONTHLY_VOLUME" validate:"gte=0"`
	AnnualVolume   int   `yaml:"annual_volume" envconfig:"ANNUAL_VOLUME" validate:"gte=0"`
}

// StoreConfig selects the artifact store backend
type StoreConfig struct {
	Backend    string `yaml:"backend" envconfig:"BACKEND" validate:"oneof=file badger"`
	BadgerPath string `yaml:"badger_path" envconfig:"BADGER_PATH" validate:"required_if=Backend badger"`
	SyncWrites bool   `yaml:"sync_writes" envconfig:"SYNC_WRITES"`
}

// TelemetryConfig contains tracing and metrics export configuration
type TelemetryConfig struct {
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	TraceFile       string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// ServerConfig contains HTTP report server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// RateLimitRPS caps requests per second; 0 disables limiting.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"gte=0"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or the file named by SHIPRISK_CONFIG_FILE, or a well-known location),
// then environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; fields carry no default tags.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Finance.LateLoss < c.Finance.PreventionCost {
		return fmt.Errorf("finance: late_loss (%d) must not be below prevention_cost (%d)",
			c.Finance.LateLoss, c.Finance.PreventionCost)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"shiprisk.yaml",
		"configs/shiprisk.yaml",
		"../configs/shiprisk.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: "logs/shiprisk.log",
		},
		Paths: PathsConfig{
			ArtifactsDir: DefaultArtifactsDir,
			ReportsDir:   DefaultReportsDir,
		},
		Pipeline: PipelineConfig{
			TrainFraction:             DefaultTrainFraction,
			ValFractionOfRemainder:    DefaultValFractionOfRemainder,
			Seed:                      DefaultSeed,
			FitScope:                  FitScopeTrain,
			DropReference:             true,
			GeopoliticalRiskThreshold: DefaultGeopoliticalRiskThreshold,
			WeatherSeverityThreshold:  DefaultWeatherSeverityThreshold,
		},
		Model: ModelConfig{
			MaxIterations: DefaultMaxIterations,
			Tolerance:     DefaultTolerance,
		},
		Evaluation: EvaluationConfig{
			Threshold: DefaultThreshold,
			LabelRule: LabelRuleInverted,
		},
		Finance: FinanceConfig{
			PreventionCost: DefaultPreventionCost,
			LateLoss:       DefaultLateLoss,
			MonthlyVolume:  DefaultMonthlyVolume,
			AnnualVolume:   DefaultAnnualVolume,
		},
		Store: StoreConfig{
			Backend:    StoreBackendFile,
			BadgerPath: "data/artifacts/badger",
			SyncWrites: true,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
	}
}
