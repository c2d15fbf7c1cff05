package config

import "time"

// SessionConfig holds session cookie and expiry settings.
type SessionConfig struct {
	CookieName     string `env:"SESSION_COOKIE_NAME" env-default:"cwh_session"`
	CookieSecure   bool   `env:"SESSION_COOKIE_SECURE" env-default:"false"`
	IdleTimeoutSec int    `env:"SESSION_IDLE_TIMEOUT_SECS" env-default:"1800"`
}

// IdleTimeout returns the configured inactivity window.
func (s SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSec) * time.Second
}

// ThrottleConfig holds login lockout settings.
type ThrottleConfig struct {
	MaxAttempts int `env:"LOGIN_MAX_ATTEMPTS" env-default:"5"`
	WindowSecs  int `env:"LOGIN_ATTEMPT_WINDOW_SECS" env-default:"900"`
}

// Window returns the trailing interval over which failures count.
func (t ThrottleConfig) Window() time.Duration {
	return time.Duration(t.WindowSecs) * time.Second
}

// PasswordConfig holds password policy settings.
type PasswordConfig struct {
	MinLength  int `env:"PASSWORD_MIN_LENGTH" env-default:"8"`
	BcryptCost int `env:"PASSWORD_BCRYPT_COST" env-default:"10"`
}
