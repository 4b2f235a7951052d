// Package config содержит конфигурацию и загрузчик настроек.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config содержит конфигурацию приложения
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Vision       VisionConfig       `yaml:"vision"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Notification NotificationConfig `yaml:"notification"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig содержит настройки подключения к БД
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// StorageConfig содержит настройки блоб-хранилища изображений.
type StorageConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

// VisionConfig содержит настройки клиента классификации изображений.
// Ключ API приходит из окружения, в файле лежит только имя переменной.
type VisionConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey возвращает ключ API из окружения.
func (v *VisionConfig) APIKey() string {
	return os.Getenv(v.APIKeyEnv)
}

// KafkaConfig содержит настройки событийного потока изменений.
// Пустой список брокеров выключает публикацию событий.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// NotificationConfig содержит настройки баннера результата операции.
type NotificationConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// TelemetryConfig содержит настройки трассировки и метрик.
type TelemetryConfig struct {
	ServiceName      string  `yaml:"service_name"`
	Environment      string  `yaml:"environment"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint"`
	OTLPInsecure     bool    `yaml:"otlp_insecure"`
	TracesEnabled    bool    `yaml:"traces_enabled"`
	MetricsEnabled   bool    `yaml:"metrics_enabled"`
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`
	MetricsPath      string  `yaml:"metrics_path"`
}

// LoadConfig загружает конфигурацию из файла. Переменные окружения
// подтягиваются из .env, если он есть.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	normalizeConfig(&cfg)
	return &cfg, nil
}

// Address возвращает адрес сервера в формате host:port
func (s *ServerConfig) Address() string {
	if s.Host == "" {
		return fmt.Sprintf(":%d", s.Port)
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         "",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN: "",
		},
		Storage: StorageConfig{
			Dir:     "./data",
			BaseURL: "http://localhost:8080",
		},
		Vision: VisionConfig{
			Endpoint:  "https://vision.googleapis.com/v1/images:annotate",
			APIKeyEnv: "GOOGLE_VISION_API_KEY",
		},
		Kafka: KafkaConfig{
			Brokers: nil,
			Topic:   "pantry.items",
		},
		Notification: NotificationConfig{
			TTL: 6 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:      "pantry",
			Environment:      "local",
			OTLPEndpoint:     "localhost:4318",
			OTLPInsecure:     true,
			TracesEnabled:    true,
			MetricsEnabled:   true,
			TraceSampleRatio: 1.0,
			MetricsPath:      "/metrics",
		},
	}
}

func normalizeConfig(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "./data"
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Vision.Endpoint == "" {
		cfg.Vision.Endpoint = "https://vision.googleapis.com/v1/images:annotate"
	}
	if cfg.Vision.APIKeyEnv == "" {
		cfg.Vision.APIKeyEnv = "GOOGLE_VISION_API_KEY"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "pantry.items"
	}
	if cfg.Notification.TTL <= 0 {
		cfg.Notification.TTL = 6 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "pantry"
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		cfg.Telemetry.OTLPEndpoint = "localhost:4318"
	}
	if cfg.Telemetry.TraceSampleRatio <= 0 || cfg.Telemetry.TraceSampleRatio > 1 {
		cfg.Telemetry.TraceSampleRatio = 1.0
	}
	if cfg.Telemetry.MetricsPath == "" {
		cfg.Telemetry.MetricsPath = "/metrics"
	}
}
