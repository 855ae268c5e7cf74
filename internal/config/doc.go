// Package config provides configuration management for the laptop price
// analyzer. It handles loading configuration from multiple sources, validation,
// and provides a type-safe API for accessing configuration values.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//  1. Default values (Default)
//  2. YAML file (-config, else config.yaml or configs/config.yaml)
//  3. Environment variables, including those read from a .env file
//  4. Command line flags applied by cmd/analyzer
//
// # Environment Variables
//
// All environment variables use the LAPTOP_ prefix and split nested field
// names on word boundaries:
//
//	LAPTOP_INPUT_PATH=data/laptop_price.csv
//	LAPTOP_OUTPUT_DIR=output
//	LAPTOP_CHARTS_FORMAT=svg
//	LAPTOP_EXPORT_SQLITE=true
//	LAPTOP_LOGGING_LEVEL=debug
//
// # YAML File
//
//	input:
//	  path: data/laptop_price.csv
//	  delimiter: ","
//	charts:
//	  enabled: true
//	  format: png
//	  bins: 30
//	export:
//	  excel: true
//	  excel_file: laptops.xlsx
//
// # Validation
//
// Load validates the merged result with go-playground/validator struct tags.
// A failed load or validation is reported as a CONFIG error.
//
// # Testing
//
// Tests start from Default() and override the fields they exercise; it
// requires no environment variables or files.
package config
