package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	AI          AIConfig
	Storage     StorageConfig
	Board       BoardConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type AIConfig struct {
	// Endpoint must be an https URL; the shipped placeholder value counts
	// as unconfigured and disables AI features.
	Endpoint       string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

type StorageConfig struct {
	Path   string
	Bucket string
}

type BoardConfig struct {
	SaveDebounce     time.Duration
	AutoSaveInterval time.Duration
	DueDateInterval  time.Duration
	UndoWindow       time.Duration
	NoticeFeedSize   int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the application can boot anywhere.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "todocore"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "127.0.0.1"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		AI: AIConfig{
			Endpoint:       os.Getenv("AI_BACKEND_URL"),
			RequestTimeout: getDuration("AI_REQUEST_TIMEOUT", 30*time.Second),
			CacheTTL:       getDuration("AI_CACHE_TTL", 5*time.Minute),
		},
		Storage: StorageConfig{
			Path:   getString("BOLTDB_PATH", "./data/todocore.db"),
			Bucket: getString("BOLTDB_BUCKET", "blobs"),
		},
		Board: BoardConfig{
			SaveDebounce:     getDuration("SAVE_DEBOUNCE", time.Second),
			AutoSaveInterval: getDuration("AUTOSAVE_INTERVAL", 30*time.Second),
			DueDateInterval:  getDuration("DUE_DATE_SCAN_INTERVAL", time.Minute),
			UndoWindow:       getDuration("UNDO_WINDOW", 8*time.Second),
			NoticeFeedSize:   getInt("NOTICE_FEED_SIZE", 100),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
