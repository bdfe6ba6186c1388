package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// StoreBackend selects the room store: "memory" for a single process,
	// "postgres" to share rooms across processes.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	PostgresDSN  string `env:"POSTGRES_DSN"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
