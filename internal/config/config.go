package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseDriver      string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventSubjectPrefix  string
	JWTSecret           string
	JWTTTL              time.Duration
	CacheTTL            time.Duration
	PublicBackupEnabled bool
	LoginRateLimit      int
	LoginRateWindow     time.Duration
	AdminUsername       string
	AdminPassword       string
	AdminFullName       string
	AllowOrigins        string
	AccessLog           bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SIKORI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SIKORI API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("events.subject_prefix", "sikori")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("backup.public_enabled", false)
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("auth.login_rate_window", "1m")
	v.SetDefault("admin.username", "superadmin")
	v.SetDefault("admin.full_name", "Super Administrator")
	v.SetDefault("http.allow_origins", "*")
	v.SetDefault("http.access_log", true)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	jwtTTL, err := parseDuration(v, "jwt.ttl", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cacheTTL, err := parseDuration(v, "cache.ttl", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	loginWindow, err := parseDuration(v, "auth.login_rate_window", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseDriver:      strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventSubjectPrefix:  v.GetString("events.subject_prefix"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTTTL:              jwtTTL,
		CacheTTL:            cacheTTL,
		PublicBackupEnabled: v.GetBool("backup.public_enabled"),
		LoginRateLimit:      v.GetInt("auth.login_rate_limit"),
		LoginRateWindow:     loginWindow,
		AdminUsername:       strings.TrimSpace(v.GetString("admin.username")),
		AdminPassword:       v.GetString("admin.password"),
		AdminFullName:       v.GetString("admin.full_name"),
		AllowOrigins:        v.GetString("http.allow_origins"),
		AccessLog:           v.GetBool("http.access_log"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return fallback, nil
	}

	return value, nil
}
