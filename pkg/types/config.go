package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Identity provider
	JWKSURL     string `envconfig:"JWKS_URL"`
	TokenIssuer string `envconfig:"TOKEN_ISSUER"`
	RoleClaim   string `envconfig:"ROLE_CLAIM" default:"role"`

	// Row lock wait for the acceptance protocol before the store gives up
	AcceptLockTimeoutMS uint `envconfig:"ACCEPT_LOCK_TIMEOUT_MS" default:"2000"`

	// Rating events. Empty RedisAddr keeps aggregate maintenance in-process.
	RedisAddr      string `envconfig:"REDIS_ADDR"`
	RatingsChannel string `envconfig:"RATINGS_CHANNEL" default:"ratings.recorded"`
}
