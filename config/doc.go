// Package config loads launchpad's settings and resolves the immutable
// ServiceConfig the bootstrap runs on.
//
// Settings come from a YAML file, an optional .env file and the process
// environment (viper + godotenv). Every settings key can be overridden by
// an environment variable spelled in upper case with underscores, e.g.
// PRIVILEGE_USER or HEALTH_INTERVAL.
//
// The listening port is not a settings key. Resolve reads it exactly once
// from the variable named by server.port_env (default PORT):
//
//	settings, err := config.Load("launchpad")
//	cfg, err := config.Resolve(settings, os.LookupEnv)
//	cfg.Addr() // "0.0.0.0:8000"
package config
