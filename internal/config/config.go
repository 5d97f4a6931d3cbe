package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// DefaultEnvFile файл, из которого читаются настройки, если путь не передан явно.
const DefaultEnvFile = ".env"

// Имена обязательных ключей конфигурации.
const (
	KeyEndpoint        = "OPENAI_ENDPOINT"
	KeyAPIKey          = "OPENAI_API_KEY"
	KeyModelDeployment = "MODEL_DEPLOYMENT"
)

type Config struct {
	Endpoint        string `env:"OPENAI_ENDPOINT"`    // Адрес ресурса Azure OpenAI, напр. https://name.openai.azure.com
	APIKey          string `env:"OPENAI_API_KEY"`     // Ключ доступа к ресурсу
	ModelDeployment string `env:"MODEL_DEPLOYMENT"`   // Имя деплоймента модели генерации изображений
	APIVersion      string `env:"OPENAI_API_VERSION"` // Версия API Azure OpenAI
	ImagesDir       string `env:"IMAGES_DIR"`         // Папка для сохранения картинок относительно рабочей директории
	DebugMode       bool   `env:"DEBUG_MODE"`         // Режим дебага
}

// MissingKeysError перечисляет обязательные ключи, которые не заданы или пусты.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env и переменными окружения.
func Defaults() *Config {
	return &Config{
		APIVersion: "2024-02-01",
		ImagesDir:  "images",
		DebugMode:  false,
	}
}

// Load читает .env (если есть) и переменные окружения поверх дефолтов.
// Переменные окружения процесса перекрывают значения из файла.
func Load(path string) (*Config, error) {
	return LoadFrom(path, os.Environ())
}

// LoadFrom то же, что Load, но окружение передаётся явно в формате KEY=VALUE.
func LoadFrom(path string, environ []string) (*Config, error) {
	if path == "" {
		path = DefaultEnvFile
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		values = map[string]string{}
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			values[k] = v
		}
	}

	cfg := Defaults()
	if err := env.Parse(cfg, env.Options{Environment: values}); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.ModelDeployment = strings.TrimSpace(cfg.ModelDeployment)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет, что все обязательные ключи заданы.
func (c *Config) Validate() error {
	required := map[string]string{
		KeyEndpoint:        c.Endpoint,
		KeyAPIKey:          c.APIKey,
		KeyModelDeployment: c.ModelDeployment,
	}
	// порядок ключей фиксированный, чтобы сообщение было стабильным
	missing := lo.Filter([]string{KeyEndpoint, KeyAPIKey, KeyModelDeployment}, func(k string, _ int) bool {
		return strings.TrimSpace(required[k]) == ""
	})
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}
