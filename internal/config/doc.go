// Package config provides centralized configuration management for shiprisk.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SHIPRISK_<SECTION>_<FIELD>:
//
//	SHIPRISK_PATHS_INPUT=data/shipments.xlsx
//	SHIPRISK_PIPELINE_SEED=7
//	SHIPRISK_PIPELINE_FIT_SCOPE=all
//	SHIPRISK_MODEL_MAX_ITERATIONS=50
//	SHIPRISK_EVALUATION_LABEL_RULE=natural
//	SHIPRISK_STORE_BACKEND=badger
//
// # Validation
//
// Struct constraints are declared with validator tags and checked by
// Validate, together with cross-field rules such as late_loss >= prevention_cost.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
