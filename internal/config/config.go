// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Session                 `yaml:"session"`
	Routes                  `yaml:"routes"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP  string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP  time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimitRPS float64       `yaml:"rate_limit_rps" env-default:"10"`
	RateBurst    int           `yaml:"rate_burst" env-default:"20"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ настройки брокера для событий решений. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL   string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange      string        `yaml:"exchange" env-default:"session-events"`
	RabbitRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitDelay   time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Session настройки жизненного цикла сессии.
type Session struct {
	RecheckInterval   time.Duration `yaml:"recheck_interval" env-default:"5m"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" env-default:"60s"`
	IdleTTL           time.Duration `yaml:"idle_ttl" env-default:"30m"`
	SweepInterval     time.Duration `yaml:"sweep_interval" env-default:"1m"`
}

// Routes маршруты клиента, между которыми переключает шлюз.
type Routes struct {
	Entry     string   `yaml:"entry" env-default:"/login"`
	Landing   string   `yaml:"landing" env-default:"/"`
	Home      string   `yaml:"home" env-default:"/app"`
	Expired   string   `yaml:"expired" env-default:"/app/expired"`
	AppPrefix string   `yaml:"app_prefix" env-default:"/app"`
	Public    []string `yaml:"public" env-default:"/login,/register,/register/confirm,/,/terms,/privacy"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, переменные окружения перекрывают значения файла.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Session:\n"+
			"  RecheckInterval: %s\n"+
			"  HeartbeatInterval: %s\n"+
			"  IdleTTL: %s\n",
		c.Env,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.RecheckInterval,
		c.HeartbeatInterval,
		c.IdleTTL,
	)
}
