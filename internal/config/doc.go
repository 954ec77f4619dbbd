// Package config loads radarcli configuration from defaults, an optional
// YAML file and environment variables.
//
// # Configuration Sources
//
// Configuration is assembled in the following order, later sources winning:
//
//	1. Default() values
//	2. config.yaml or configs/config.yaml (gopkg.in/yaml.v2)
//	3. Environment variables (kelseyhightower/envconfig)
//
// # Environment Variables
//
// Variables use the RADAR prefix followed by section and field:
//
//	RADAR_SERVER_PORT=8080
//	RADAR_LOGGING_LEVEL=debug
//	RADAR_CHART_INTEGER_MODE=true
//	RADAR_CHART_PALETTE=Dark2
//	RADAR_SESSIONS_TTL=30m
//
// # Validation
//
// Load validates the assembled configuration: ports and timeouts must be
// positive, chart limits must be usable, and logging always emits JSON.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default() or LoadFile with a temporary YAML file.
package config
