package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// minSecretLength adalah panjang minimum JWT_SECRET di luar mode debug.
const minSecretLength = 32

type Config struct {
	AppName    string
	AppVersion string
	Debug      bool

	ServerHost string
	ServerPort int

	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	CORSOrigins  []string
	RateLimitMax int
	TaskCacheTTL time.Duration

	AdminEmail    string
	AdminPassword string

	LogDir string

	// loadErrs berisi nilai env yang tidak bisa di-parse; dilaporkan oleh Validate.
	loadErrs []error
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment and default values")
		}
	}

	env := &envReader{}
	cfg := Config{
		AppName:    getString("APP_NAME", "Task Management API"),
		AppVersion: getString("APP_VERSION", "1.0.0"),
		Debug:      env.boolean("APP_DEBUG", false),

		ServerHost: getString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.integer("SERVER_PORT", 8000),

		DBDriver:   strings.ToLower(getString("DB_DRIVER", "postgres")),
		DBHost:     getString("DB_HOST", "localhost"),
		DBPort:     env.integer("DB_PORT", 5432),
		DBUser:     getString("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getString("DB_NAME", "taskmanager_db"),
		DBSSLMode:  getString("DB_SSLMODE", "disable"),
		SQLitePath: getString("SQLITE_PATH", "taskmanager.db"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     env.integer("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       env.integer("REDIS_DB", 0),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  time.Duration(env.integer("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(env.integer("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		BcryptCost:      env.integer("BCRYPT_COST", 12),

		CORSOrigins:  getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:8000"}),
		RateLimitMax: env.integer("RATE_LIMIT_MAX", 100),
		TaskCacheTTL: env.duration("TASK_CACHE_TTL", time.Hour),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		LogDir: getString("LOG_DIR", "logs"),
	}
	cfg.loadErrs = env.errs
	return cfg
}

// Validate dipanggil sekali saat start; aplikasi tidak boleh jalan dengan config rusak.
func (c Config) Validate() error {
	errs := append([]error(nil), c.loadErrs...)

	switch {
	case c.JWTSecret == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case len(c.JWTSecret) < minSecretLength && !c.Debug:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		errs = append(errs, errors.New("refresh token lifetime must exceed access token lifetime"))
	}
	if c.BcryptCost < 10 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 10 and 31, got %d", c.BcryptCost))
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort))
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	return errors.Join(errs...)
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// envReader membaca env bertipe; nilai kosong memakai default, nilai yang
// tidak valid dicatat supaya Validate gagal alih-alih diam-diam memakai default.
type envReader struct {
	errs []error
}

func (r *envReader) invalid(key, raw, kind string) {
	r.errs = append(r.errs, fmt.Errorf("%s must be %s, got %q", key, kind, raw))
}

func (r *envReader) integer(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.invalid(key, raw, "an integer")
		return fallback
	}
	return v
}

func (r *envReader) boolean(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.invalid(key, raw, "a boolean")
		return fallback
	}
	return v
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.invalid(key, raw, "a duration")
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
