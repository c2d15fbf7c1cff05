package config

// Config aggregates all environment-driven settings for the platform.
type Config struct {
	BaseURL        string `env:"BASE_URL" env-default:"http://localhost:4000"`
	DatabaseConfig DatabaseConfig
	EmailConfig    EmailConfig
	SessionConfig  SessionConfig
	ThrottleConfig ThrottleConfig
	PasswordConfig PasswordConfig
}
