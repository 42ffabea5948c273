// Package config loads restorm configuration from config.yml, .env files
// and environment variables.
//
// It uses Viper for file loading and godotenv for .env files. Environment
// variables are bound to nested keys, so RESTORM_API_BASE_URL fills
// api.base_url when the loader runs WithEnvPrefix("RESTORM").
//
// # Usage
//
//	var cfg config.Config
//	err := config.LoadConfig(config.ServiceName, &cfg, config.WithEnvPrefix("RESTORM"))
//
// Configs that embed ServiceConfig get defaults applied and are validated
// after loading.
package config
