// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Configuration is entirely environment-driven so the same binary runs
// unchanged across development, staging, and production. Struct fields are
// annotated with `env` and `envDefault` tags:
//
//	type Config struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
//	}
package config
