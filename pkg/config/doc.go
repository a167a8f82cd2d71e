// Package config loads typed configuration from environment variables.
//
// Structs describe their variables with caarlos0/env tags; Load parses them
// once per type and caches the result. The first Load also reads a .env file
// from the working directory when one exists, and LoadEnv reads others:
//
//	if err := config.LoadEnv("deploy/guard.env"); err != nil {
//	    return err
//	}
//	var cfg validator.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	v, err := validator.NewFromConfig(cfg)
//
// Reset clears the cache so tests can reload after changing the environment.
package config
