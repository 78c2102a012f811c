// Package config loads voxkit configuration with Viper.
//
// A YAML file is found in the standard locations (./cmd/<service>/config.yml,
// ./config/config.yml, ./config.yml) unless one is given explicitly. A .env
// file is loaded with godotenv, and VOXKIT_* environment variables override
// file values using underscore-separated paths.
//
// # Usage
//
//	var cfg transcript.AppConfig
//	err := config.LoadConfig("voxkit", &cfg, config.WithConfigFile(path))
package config
