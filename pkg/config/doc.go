// Package config loads gatekit configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing tagged structs. Load works with any
// struct; Config is the aggregate used by gatectl:
//
//	if err := config.LoadEnv(".env.local"); err != nil {
//		return err
//	}
//	var cfg config.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// A struct with a Validate() error method is validated after parsing.
package config
