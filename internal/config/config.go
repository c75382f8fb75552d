// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string   `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string   `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string   `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	AllowedOrigins          []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	Gemini                  `yaml:"gemini"`
	SupabaseAuth            `yaml:"supabase_auth"`
	Dodo                    `yaml:"dodo"`
	RabbitMQ                `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"ADDRESS_HTTP" env-default:":3000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"ADDRESS_REDIS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Gemini структура для настройки клиента генерации текста
type Gemini struct {
	GeminiAPIKey  string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	GeminiAPIURL  string        `yaml:"api_url" env:"GEMINI_API_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash-exp:generateContent"`
	GeminiTimeout time.Duration `yaml:"timeout" env-default:"60s"`
}

// SupabaseAuth структура для настройки провайдера аутентификации.
//
// Mode определяет способ проверки bearer-токена: "remote" — обмен токена
// на пользователя через HTTP API провайдера, "local" — локальная проверка
// подписи JWT секретом проекта.
type SupabaseAuth struct {
	SupabaseURL string `yaml:"url" env:"SUPABASE_URL"`
	ServiceKey  string `yaml:"service_key" env:"SUPABASE_SERVICE_KEY"`
	JWTSecret   string `yaml:"jwt_secret" env:"SUPABASE_JWT_SECRET"`
	Mode        string `yaml:"mode" env:"SUPABASE_AUTH_MODE" env-default:"remote"`
}

// Dodo структура для настройки платежного провайдера
type Dodo struct {
	WebhookSecret string `yaml:"webhook_secret" env:"DODO_WEBHOOK_SECRET"`
	Mode          string `yaml:"mode" env:"DODO_MODE" env-default:"production"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений.
// Пустой адрес означает, что публикация событий отключена.
type RabbitMQ struct {
	RabbitAddress string        `yaml:"address" env:"RABBITMQ_ADDRESS"`
	RabbitQueue   string        `yaml:"queue" env-default:"payment_events"`
	RabbitRetries int           `yaml:"retries" env-default:"5"`
	RabbitDelay   time.Duration `yaml:"delay" env-default:"2s"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
