package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// Config aggregates runtime configuration for both processes.
type Config struct {
	App       AppConfig
	Discord   DiscordConfig
	Storage   StorageConfig
	Dashboard DashboardConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DiscordConfig holds the gateway identifiers. Token, GuildID,
// TicketCategoryID and StaffRoleID are required for the bot process.
type DiscordConfig struct {
	Token            string
	GuildID          string
	TicketCategoryID string
	StaffRoleID      string
	PanelImageURL    string
}

// StorageConfig locates the JSON snapshot directory.
type StorageConfig struct {
	DataDir string
}

// DashboardConfig describes the archival dashboard collaborator.
type DashboardConfig struct {
	IngestURL       string
	SharedSecret    string
	TokenTTLMinutes int
}

// PostgresConfig holds DB connection values for the dashboard archive.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the dashboard stats cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// LoadBot reads configuration for the bot process. Missing Discord
// identifiers are a fatal configuration error; the bot never runs
// partially configured.
func LoadBot() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	for _, required := range []struct{ name, value string }{
		{"DISCORD_TOKEN", cfg.Discord.Token},
		{"GUILD_ID", cfg.Discord.GuildID},
		{"TICKET_CATEGORY_ID", cfg.Discord.TicketCategoryID},
		{"STAFF_ROLE_ID", cfg.Discord.StaffRoleID},
	} {
		if required.value == "" {
			return nil, apperrors.NewConfigurationError(required.name)
		}
	}
	return cfg, nil
}

// LoadDashboard reads configuration for the dashboard process. All external
// identifiers are optional; Postgres and Redis are attached when configured.
func LoadDashboard() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "tickets-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Discord: DiscordConfig{
			Token:            getEnv("DISCORD_TOKEN", os.Getenv("TOKEN")),
			GuildID:          os.Getenv("GUILD_ID"),
			TicketCategoryID: os.Getenv("TICKET_CATEGORY_ID"),
			StaffRoleID:      os.Getenv("STAFF_ROLE_ID"),
			PanelImageURL:    os.Getenv("PANEL_IMAGE_URL"),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Dashboard: DashboardConfig{
			IngestURL:       os.Getenv("DASHBOARD_INGEST_URL"),
			SharedSecret:    os.Getenv("DASHBOARD_SHARED_SECRET"),
			TokenTTLMinutes: getEnvAsInt("DASHBOARD_TOKEN_TTL_MINUTES", 5),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("POSTGRES_DSN", os.Getenv("DATABASE_URL")),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
