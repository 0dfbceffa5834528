package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend names accepted by CART_BACKEND.
const (
	BackendMemory = "memory"
	BackendCookie = "cookie"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port          string        `env:"PORT" envDefault:"8081"`
	DBDSN         string        `env:"DB_DSN" envDefault:"storecart.db"`
	LogFile       string        `env:"LOG_FILE" envDefault:"./storecart.log"`
	CartBackend   string        `env:"CART_BACKEND" envDefault:"sqlite"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"168h"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	NotifyURL     string        `env:"NOTIFY_URL"`
	NotifyChatID  string        `env:"NOTIFY_CHAT_ID"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	JWTSecret     string        `env:"JWT_SECRET"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// Load reads an optional .env file, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("[config] parse env: %v", err)
	}
	switch cfg.CartBackend {
	case BackendMemory, BackendCookie, BackendRedis, BackendSQLite:
	default:
		log.Printf("[warn] unknown CART_BACKEND %q, using %s", cfg.CartBackend, BackendSQLite)
		cfg.CartBackend = BackendSQLite
	}
	log.Printf("[config] PORT=%s DB_DSN=%s CART_BACKEND=%s LOG_FILE=%s NOTIFY=%t",
		cfg.Port, cfg.DBDSN, cfg.CartBackend, cfg.LogFile, cfg.NotifyURL != "")
	return cfg
}
