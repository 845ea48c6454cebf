package config

import "shiprisk/pkg/contracts"

// Application constants
const (
	AppName    = "shiprisk"
	AppVersion = contracts.Version
)

// Defaults for pipeline preparation
const (
	DefaultTrainFraction          = 0.4
	DefaultValFractionOfRemainder = 0.5
	DefaultSeed                   = 42

	DefaultGeopoliticalRiskThreshold = 0.6
	DefaultWeatherSeverityThreshold  = 7.0
)

// Fit scopes for the encoder and normalizer
const (
	FitScopeTrain = "train"
	FitScopeAll   = "all"
)

// Solver defaults
const (
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-8
)

// Evaluation defaults
const (
	DefaultThreshold  = 0.5
	LabelRuleInverted = "inverted"
	LabelRuleNatural  = "natural"
)

// Finance defaults, whole USD per order
const (
	DefaultPreventionCost = 6078
	DefaultLateLoss       = 7493
	DefaultMonthlyVolume  = 10000
	DefaultAnnualVolume   = 120000
)

// Store backends
const (
	StoreBackendFile   = "file"
	StoreBackendBadger = "badger"
)

// Default directories, relative to the working directory
const (
	DefaultArtifactsDir = "data/artifacts"
	DefaultReportsDir   = "data/reports"
	DefaultLogLevel     = "info"
)
