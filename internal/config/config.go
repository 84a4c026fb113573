package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Only the store connection string and the JWT
// secret are required; everything else falls back to a default.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	ConnectionURI   string        // MongoDB connection string
	DBName          string        // MongoDB database name
	JWTSecret       string        // secret used to sign JWTs
	TokenTTL        time.Duration // bearer token lifetime
	BcryptCost      int           // bcrypt cost for password hashing
	StaticDir       string        // directory served as static assets
	AccessLogPath   string        // append-only access log file
	CORSOrigins     []string      // allowed cross-origin callers
	PublicMovieList bool          // serve GET /movies without a token
	LogLevel        string
	LogFormat       string
	RedisAddr       string // token denylist; empty disables logout
	RedisPassword   string
	RedisDB         int
	RedisTLS        bool
	AMQPURL         string // user events broker; empty disables publishing
	EventsLogPath   string // file the event consumer appends to
}

// Load reads an optional .env file and then the process environment. Missing
// required variables are reported together in one error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:             getenv("APP_ENV", "dev"),
		Port:            getenv("PORT", "8080"),
		ConnectionURI:   os.Getenv("CONNECTION_URI"),
		DBName:          getenv("DB_NAME", "movie_api"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        envDur("JWT_TTL", 7*24*time.Hour),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		StaticDir:       getenv("STATIC_DIR", "public"),
		AccessLogPath:   getenv("ACCESS_LOG_PATH", "log.txt"),
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "*")),
		PublicMovieList: envBool("PUBLIC_MOVIE_LIST", false),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envInt("REDIS_DB", 0),
		RedisTLS:        envBool("REDIS_TLS", false),
		AMQPURL:         getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		EventsLogPath:   getenv("EVENTS_LOG_PATH", "logs/users.log"),
	}

	var missing []string
	if cfg.ConnectionURI == "" {
		missing = append(missing, "CONNECTION_URI")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, errors.New("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("JWT_TTL must be positive")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
