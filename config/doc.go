// Package config provides configuration loading for pipeline hosts.
//
// It uses Viper to load configuration from config.yml files and environment
// variables, with .env files loaded through godotenv. Environment variables
// override file values; TELEMETRY_SAMPLE_RATE binds to both
// telemetry_sample_rate and telemetry.sample_rate style paths.
//
// # Usage
//
//	type TrainerConfig struct {
//	    config.Runtime `yaml:",inline" mapstructure:",squash"`
//	    Shards []string `yaml:"shards" mapstructure:"shards"`
//	}
//
//	var cfg TrainerConfig
//	err := config.LoadConfig("trainer", &cfg)
package config
