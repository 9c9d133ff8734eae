// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string

	// AuthBaseURL is the base URL of the hosted auth provider.
	AuthBaseURL string

	// AuthAPIKey is the provider's publishable API key.
	AuthAPIKey string

	// WebhookSecret guards the auth event webhook; empty disables
	// the check.
	WebhookSecret string

	// CacheFile is the path of the durable identity cache.
	CacheFile string

	// AdminEmails lists the addresses granted recruiter access,
	// comma separated in flag/env form.
	AdminEmails []string

	// LogLevel sets the zap log level (debug, info, warn, error).
	LogLevel string

	// AMQPURL is the broker address for portal events; empty disables
	// publishing.
	AMQPURL string

	// S3Bucket, S3Region, S3Endpoint, S3AccessKey and S3SecretKey
	// configure resume object storage. Endpoint is optional and
	// supports S3-compatible providers.
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// WatchInterval is how often the session watcher polls the
	// provider for externally revoked or created sessions.
	WatchInterval time.Duration

	// Config is the path to the config file.
	Config string

	adminEmailsRaw string
}

var options = &Options{}

func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.AuthBaseURL, "auth-url", "", "auth provider base url")
	flag.StringVar(&options.AuthAPIKey, "auth-key", "", "auth provider api key")
	flag.StringVar(&options.CacheFile, "cache", "hirrd_user.json", "identity cache file")
	flag.StringVar(&options.adminEmailsRaw, "admins", "admin@hirrd.com", "comma separated admin emails")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level")
	flag.DurationVar(&options.WatchInterval, "watch-interval", time.Minute, "session watcher poll interval")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse loads a .env file when present, then parses command-line flags,
// the config file and environment variables, in increasing precedence.
// It returns a pointer to the Options struct containing the parsed
// configuration values.
func Parse() *Options {
	// Missing .env is fine; values may come from the real environment.
	_ = godotenv.Load()

	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	applyEnv(options)
	options.AdminEmails = splitList(options.adminEmailsRaw)

	return options
}

func applyEnv(o *Options) {
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		o.Port = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := os.Getenv("AUTH_BASE_URL"); v != "" {
		o.AuthBaseURL = v
	}
	if v := os.Getenv("AUTH_API_KEY"); v != "" {
		o.AuthAPIKey = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		o.WebhookSecret = v
	}
	if v := os.Getenv("CACHE_FILE"); v != "" {
		o.CacheFile = v
	}
	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		o.adminEmailsRaw = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		o.AMQPURL = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		o.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		o.S3Region = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		o.S3Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		o.S3AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		o.S3SecretKey = v
	}
	if v := os.Getenv("WATCH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			o.WatchInterval = d
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
