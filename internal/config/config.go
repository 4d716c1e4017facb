package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort         string `env:"HTTP_PORT" envDefault:"5000"`
	AppEnv           string `env:"APP_ENV" envDefault:"development"`
	DatabaseURL      string `env:"DATABASE_URL,required"`
	MigrationsDir    string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	JWTSecret        string `env:"JWT_SECRET,required"`
	JWTExpiryMinutes int    `env:"JWT_EXPIRY_MINUTES" envDefault:"60"`
	GithubBaseURL    string `env:"GITHUB_BASE_URL" envDefault:"https://api.github.com"`
	GithubClientID   string `env:"GITHUB_CLIENT_ID"`
	GithubSecret     string `env:"GITHUB_SECRET"`
	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
