package ai

import (
	"context"
	"fmt"
)

// Параметры генерации по умолчанию: квадрат 1024x1024, стандартное качество, ответ ссылкой.
const (
	DefaultSize           = "1024x1024"
	DefaultQuality        = "standard"
	DefaultResponseFormat = "url"
)

// GenerateOptions параметры запроса на генерацию изображения.
type GenerateOptions struct {
	Size           string
	Quality        string
	ResponseFormat string
}

// DefaultOptions возвращает фиксированные параметры генерации.
func DefaultOptions() GenerateOptions {
	return GenerateOptions{
		Size:           DefaultSize,
		Quality:        DefaultQuality,
		ResponseFormat: DefaultResponseFormat,
	}
}

// GeneratedImage результат генерации. RevisedPrompt пуст, если сервис промпт не переписывал.
type GeneratedImage struct {
	URL           string
	RevisedPrompt string
}

// ImageClient интерфейс генерации изображений. Все реализации должны быть взаимозаменяемыми.
type ImageClient interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (GeneratedImage, error)
}

// APIError структурированная ошибка, которую вернул сервис генерации.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}
