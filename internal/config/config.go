package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/keiworks/authd/internal/hash"
	"github.com/keiworks/authd/internal/models"
	"github.com/keiworks/authd/internal/validate"
)

// Config is built once at startup and passed into each component's
// constructor; nothing mutates it afterwards.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string

	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Argon2 hash.Params
	Bounds validate.Bounds

	DefaultRole      string
	RoutePrefix      string
	ErrorKey         string
	LoginMinDuration time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	// Optional bootstrap admin account, created at startup when both are set.
	AdminUsername string
	AdminPassword string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		Addr:        envDefault("AUTH_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    envDefault("LOG_LEVEL", "info"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		Argon2: hash.Params{
			Memory:      envUint32("ARGON2_MEMORY_KB", hash.DefaultParams().Memory),
			Time:        envUint32("ARGON2_TIME", hash.DefaultParams().Time),
			Parallelism: uint8(envUint32("ARGON2_PARALLELISM", uint32(hash.DefaultParams().Parallelism))),
			SaltLength:  envUint32("ARGON2_SALT_LENGTH", hash.DefaultParams().SaltLength),
			KeyLength:   envUint32("ARGON2_HASH_LENGTH", hash.DefaultParams().KeyLength),
		},
		Bounds: validate.Bounds{
			UsernameMin: envInt("USERNAME_MIN_LENGTH", validate.DefaultBounds().UsernameMin),
			UsernameMax: envInt("USERNAME_MAX_LENGTH", validate.DefaultBounds().UsernameMax),
			PasswordMin: envInt("PASSWORD_MIN_LENGTH", validate.DefaultBounds().PasswordMin),
			PasswordMax: envInt("PASSWORD_MAX_LENGTH", validate.DefaultBounds().PasswordMax),
		},

		DefaultRole: envDefault("DEFAULT_ROLE", "regular"),
		RoutePrefix: envDefault("ROUTE_PREFIX", "/api/auth"),
		ErrorKey:    envDefault("ERROR_KEY", "server.validation"),

		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envDefault("KAFKA_TOPIC", "auth_events"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWT_SECRET is required")
	}

	var err error
	if cfg.AccessTTL, err = envDuration("ACCESS_TTL", 20*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTTL, err = envDuration("REFRESH_TTL", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LoginMinDuration, err = envDuration("LOGIN_MIN_DURATION", 2*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// InitDB opens the postgres connection and migrates the auth tables.
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.RefreshToken{}); err != nil {
		return nil, fmt.Errorf("migrate auth tables: %w", err)
	}
	return db, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envUint32(key string, def uint32) uint32 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
