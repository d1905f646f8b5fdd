package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/gema-progress-api/internal/database"
	"github.com/noah-isme/gema-progress-api/internal/progress"
)

// Config holds runtime configuration values for the progress service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	NATSURL     string
	NATSSubject string
	CORSOrigins string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	RedisDialTimeout  time.Duration

	PlatformVersion progress.PlatformVersion
	LogBackends     []string
	ViewCacheTTL    time.Duration
	Location        *time.Location
	WrapAfter       int
	DefaultLongBars progress.LongBars
	ShowInactive    bool
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Pool returns the database pool settings.
func (c Config) Pool() database.PoolOptions {
	return database.PoolOptions{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
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
	v.SetEnvPrefix("PROGRESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Progress API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "progress")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.dial_timeout", "3s")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("progress.platform_version", "4.1")
	v.SetDefault("progress.log_backends", "standard,legacy")
	v.SetDefault("progress.view_cache_ttl", "30m")
	v.SetDefault("progress.timezone", "UTC")
	v.SetDefault("progress.wrap_after", 16)
	v.SetDefault("progress.default_long_bars", string(progress.LongBarsSqueeze))
	v.SetDefault("progress.show_inactive", false)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	version, err := progress.ParsePlatformVersion(v.GetString("progress.platform_version"))
	if err != nil {
		return Config{}, err
	}

	ttl, err := time.ParseDuration(v.GetString("progress.view_cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid view cache ttl: %w", err)
	}

	lifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid database connection lifetime: %w", err)
	}

	dialTimeout, err := time.ParseDuration(v.GetString("redis.dial_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid redis dial timeout: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("progress.timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone: %w", err)
	}

	wrapAfter := v.GetInt("progress.wrap_after")
	if wrapAfter < 10 || wrapAfter > 20 || wrapAfter%2 != 0 {
		return Config{}, fmt.Errorf("wrap_after must be an even number between 10 and 20, got %d", wrapAfter)
	}

	longBars := progress.ParseLongBars(v.GetString("progress.default_long_bars"), "")
	if longBars == "" {
		return Config{}, fmt.Errorf("invalid default long bars %q", v.GetString("progress.default_long_bars"))
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
		CORSOrigins:       v.GetString("cors.allow_origins"),
		DBMaxOpenConns:    v.GetInt("database.max_open_conns"),
		DBMaxIdleConns:    v.GetInt("database.max_idle_conns"),
		DBConnMaxLifetime: lifetime,
		RedisDialTimeout:  dialTimeout,
		PlatformVersion:   version,
		LogBackends:       splitList(v.GetString("progress.log_backends")),
		ViewCacheTTL:      ttl,
		Location:          location,
		WrapAfter:         wrapAfter,
		DefaultLongBars:   longBars,
		ShowInactive:      v.GetBool("progress.show_inactive"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
