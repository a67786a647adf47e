// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
// optional dotenv files are loaded first, then the environment is parsed
// into a struct using `env` / `envDefault` field tags.
//
// Unlike a global cache, every Load call parses afresh. The binary loads one
// composed Config at startup and hands the relevant sub-structs to each
// component constructor.
//
//	type Config struct {
//		HTTP   httpserver.Config
//		Resend resend.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg, config.WithEnvFiles(".env"))
//
// Tests can bypass the process environment entirely:
//
//	err := config.Load(&cfg, config.WithEnvironment(map[string]string{
//		"HTTP_ADDR": ":9090",
//	}))
package config
