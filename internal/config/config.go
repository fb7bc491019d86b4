// README: Config loader with env defaults for HTTP, DB, Redis, auth, fares and ledger limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

type FareConfig struct {
	MaxPerKmRate       float64
	WaitingIntervalMin int
	CacheTTL           time.Duration
}

type LedgerConfig struct {
	MaxRideEarnings float64
}

type AuthConfig struct {
	Provider string
	JWT      struct {
		Secret string
		TTL    time.Duration
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
}

type AdminConfig struct {
	Phone    string
	Name     string
	Password string
}

type Config struct {
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
	}
	DB struct {
		DSN     string
		Timeout time.Duration
	}
	Redis struct {
		Addr string
	}
	Maps struct {
		APIKey string
		Region string
	}
	Fare     FareConfig
	Ledger   LedgerConfig
	Auth     AuthConfig
	Admin    AdminConfig
	LogLevel string
}

// Load reads the API configuration; the selected auth provider must be fully configured.
func Load() (Config, error) {
	return load(true)
}

// LoadDeploy reads the configuration for the deploy-time migrate step, which
// never verifies tokens and so does not require auth settings.
func LoadDeploy() (Config, error) {
	return load(false)
}

func load(checkAuth bool) (Config, error) {
	var cfg Config
	var errs []error

	cfg.HTTP.Addr = envOrDefault("AUTOMETER_HTTP_ADDR", ":8080")
	cfg.HTTP.ShutdownTimeout = envOrDefaultDuration("AUTOMETER_HTTP_SHUTDOWN_TIMEOUT", 15*time.Second, &errs)
	cfg.DB.DSN = os.Getenv("AUTOMETER_DB_DSN")
	cfg.DB.Timeout = envOrDefaultDuration("AUTOMETER_DB_TIMEOUT", 5*time.Second, &errs)
	cfg.Redis.Addr = strings.TrimSpace(os.Getenv("AUTOMETER_REDIS_ADDR"))
	cfg.Maps.APIKey = os.Getenv("AUTOMETER_MAPS_API_KEY")
	cfg.Maps.Region = envOrDefault("AUTOMETER_MAPS_REGION", "in")

	cfg.Fare.MaxPerKmRate = envOrDefaultFloat("AUTOMETER_MAX_PER_KM_RATE", 1000, &errs)
	cfg.Fare.WaitingIntervalMin = envOrDefaultInt("AUTOMETER_WAITING_INTERVAL_MIN", 60, &errs)
	cfg.Fare.CacheTTL = envOrDefaultDuration("AUTOMETER_FARE_CACHE_TTL", 5*time.Minute, &errs)
	cfg.Ledger.MaxRideEarnings = envOrDefaultFloat("AUTOMETER_MAX_RIDE_EARNINGS", 10000, &errs)

	cfg.Auth.Provider = strings.ToLower(envOrDefault("AUTOMETER_AUTH_PROVIDER", AuthProviderJWT))
	cfg.Auth.JWT.Secret = os.Getenv("AUTOMETER_JWT_SECRET")
	cfg.Auth.JWT.TTL = envOrDefaultDuration("AUTOMETER_JWT_TTL", 24*time.Hour, &errs)
	cfg.Auth.Firebase.ProjectID = os.Getenv("AUTOMETER_FIREBASE_PROJECT_ID")
	cfg.Auth.Firebase.CredentialsFile = os.Getenv("AUTOMETER_FIREBASE_CREDENTIALS")

	cfg.Admin.Phone = os.Getenv("AUTOMETER_ADMIN_PHONE")
	cfg.Admin.Name = envOrDefault("AUTOMETER_ADMIN_NAME", "admin")
	cfg.Admin.Password = os.Getenv("AUTOMETER_ADMIN_PASSWORD")

	cfg.LogLevel = envOrDefault("AUTOMETER_LOG_LEVEL", "info")

	if cfg.Fare.WaitingIntervalMin <= 0 {
		errs = append(errs, errors.New("AUTOMETER_WAITING_INTERVAL_MIN must be > 0"))
	}
	if cfg.Fare.MaxPerKmRate <= 0 {
		errs = append(errs, errors.New("AUTOMETER_MAX_PER_KM_RATE must be > 0"))
	}
	if cfg.Ledger.MaxRideEarnings <= 0 {
		errs = append(errs, errors.New("AUTOMETER_MAX_RIDE_EARNINGS must be > 0"))
	}
	if !checkAuth {
		return cfg, errors.Join(errs...)
	}
	switch cfg.Auth.Provider {
	case AuthProviderJWT:
		if cfg.Auth.JWT.Secret == "" {
			errs = append(errs, errors.New("AUTOMETER_JWT_SECRET is required for the jwt auth provider"))
		}
	case AuthProviderFirebase:
		if cfg.Auth.Firebase.ProjectID == "" {
			errs = append(errs, errors.New("AUTOMETER_FIREBASE_PROJECT_ID is required for the firebase auth provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTOMETER_AUTH_PROVIDER %q", cfg.Auth.Provider))
	}

	return cfg, errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func envOrDefaultFloat(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func envOrDefaultDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}
