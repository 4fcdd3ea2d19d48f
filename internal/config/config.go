package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/thereayou/groupchat/internal/websocket"
)

const (
	defaultPort            = 8080
	defaultTokenTTL        = 24 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	AppEnv         string        `env:"APP_ENV,default=development"`
	Port           int           `env:"PORT,default=8080"`
	DatabaseURL    string        `env:"DATABASE_URL,required=true"`
	RedisURL       string        `env:"REDIS_URL"`
	JWTSecret      string        `env:"JWT_SECRET,required=true"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=24h"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`

	WSSendBuffer    int     `env:"WS_SEND_BUFFER,default=256"`
	WSMaxFrameBytes int64   `env:"WS_MAX_FRAME_BYTES,default=65536"`
	WSFrameRate     float64 `env:"WS_FRAME_RATE,default=5"`
	WSFrameBurst    int     `env:"WS_FRAME_BURST,default=10"`

	// Проверять членство в группе при joinRoom
	WSEnforceRoomMembership bool `env:"WS_ENFORCE_ROOM_MEMBERSHIP,default=false"`

	SeedDefaultGroup bool          `env:"SEED_DEFAULT_GROUP,default=true"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// LoadConfig читает .env.local, затем .env, затем окружение процесса
func LoadConfig() (Config, error) {
	// файлы не обязательны, godotenv не перезаписывает уже заданные переменные
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate возвращает неположительные значения к значениям по умолчанию
// и проверяет обязательные поля
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}

	if c.Port <= 0 || c.Port > 65535 {
		c.Port = defaultPort
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}

	def := websocket.DefaultOptions()
	if c.WSSendBuffer <= 0 {
		c.WSSendBuffer = def.SendBuffer
	}
	if c.WSMaxFrameBytes <= 0 {
		c.WSMaxFrameBytes = def.MaxFrameBytes
	}
	if c.WSFrameRate <= 0 {
		c.WSFrameRate = def.FrameRate
	}
	if c.WSFrameBurst <= 0 {
		c.WSFrameBurst = def.FrameBurst
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Origins разбирает ALLOWED_ORIGINS
func (c Config) Origins() []string {
	return ParseOrigins(c.AllowedOrigins)
}

func ParseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c Config) HubOptions() websocket.Options {
	return websocket.Options{
		SendBuffer:    c.WSSendBuffer,
		MaxFrameBytes: c.WSMaxFrameBytes,
		FrameRate:     c.WSFrameRate,
		FrameBurst:    c.WSFrameBurst,
	}
}
