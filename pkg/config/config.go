package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting the server consumes. Feature flags are
// threaded into the services explicitly so tests can vary them per case.
type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int

	// LocalDomain is the domain local accounts live on; WebDomain is the
	// public-facing alias when they differ.
	LocalDomain string
	WebDomain   string

	// EnableEmojiReaction turns the emoji-reaction pipeline on; when off every
	// Like-class activity resolves to a plain favourite.
	EnableEmojiReaction bool
	// ReceiveRemoteEmojiReaction accepts emoji reactions targeting statuses
	// that live on other servers.
	ReceiveRemoteEmojiReaction bool
	// StreamRemoteEmojiReaction publishes realtime events for reactions on
	// remote statuses as well as local ones.
	StreamRemoteEmojiReaction bool

	// Status lock tuning: how long one acquire may wait, and the lease after
	// which a crashed holder stops blocking others.
	LockWait  time.Duration
	LockLease time.Duration

	DeliveryWorkers   int
	DeliveryQueueSize int
}

func Load() *Config {
	return &Config{
		Port:                       getEnv("PORT", "8080"),
		Env:                        getEnv("ENV", "development"),
		FirebaseCredentialsPath:    getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:            getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                   getEnv("MONGO_URI", ""),
		RedisAddr:                  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisDB:                    getEnvInt("REDIS_DB", 0),
		LocalDomain:                getEnv("LOCAL_DOMAIN", "localhost"),
		WebDomain:                  getEnv("WEB_DOMAIN", ""),
		EnableEmojiReaction:        getEnvBool("ENABLE_EMOJI_REACTION", true),
		ReceiveRemoteEmojiReaction: getEnvBool("RECEIVE_REMOTE_EMOJI_REACTION", true),
		StreamRemoteEmojiReaction:  getEnvBool("STREAM_REMOTE_EMOJI_REACTION", false),
		LockWait:                   getEnvDuration("STATUS_LOCK_WAIT", 5*time.Second),
		LockLease:                  getEnvDuration("STATUS_LOCK_LEASE", 30*time.Second),
		DeliveryWorkers:            getEnvInt("DELIVERY_WORKERS", 4),
		DeliveryQueueSize:          getEnvInt("DELIVERY_QUEUE_SIZE", 10000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
