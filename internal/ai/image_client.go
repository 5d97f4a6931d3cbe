package ai

import (
	"ImageGenClient/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient генерирует изображения через деплоймент Azure OpenAI.
// Владеет собственным http.Client, который освобождается в Shutdown.
type OpenAIClient struct {
	client     openai.Client
	httpClient *http.Client
	deployment string

	closeOnce sync.Once
}

// NewOpenAIClient проверяет endpoint и ключ и создаёт клиента.
// Дополнительные опции добавляются после стандартных (например, для тестов).
func NewOpenAIClient(cfg *config.Config, opts ...option.RequestOption) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}
	if strings.ContainsAny(cfg.APIKey, " \t\r\n") {
		return nil, errors.New("api key contains whitespace")
	}

	httpClient := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	base := []option.RequestOption{
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}

	return &OpenAIClient{
		client:     openai.NewClient(append(base, opts...)...),
		httpClient: httpClient,
		deployment: cfg.ModelDeployment,
	}, nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return fmt.Errorf("malformed endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("malformed endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("malformed endpoint %q: missing host", endpoint)
	}
	return nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (GeneratedImage, error) {
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.deployment),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(opts.Size),
		Quality:        openai.ImageGenerateParamsQuality(opts.Quality),
		ResponseFormat: openai.ImageGenerateParamsResponseFormat(opts.ResponseFormat),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return GeneratedImage{}, toAPIError(apiErr)
		}
		return GeneratedImage{}, err
	}

	if len(resp.Data) == 0 {
		return GeneratedImage{}, errors.New("image response contains no data")
	}
	img := resp.Data[0]
	if img.URL == "" {
		return GeneratedImage{}, errors.New("image response contains no url")
	}
	return GeneratedImage{URL: img.URL, RevisedPrompt: img.RevisedPrompt}, nil
}

func toAPIError(e *openai.Error) *APIError {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = strings.TrimSpace(e.RawJSON())
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return &APIError{StatusCode: e.StatusCode, Code: e.Code, Message: msg}
}

// Shutdown закрывает простаивающие соединения. Повторный вызов ничего не делает.
func (c *OpenAIClient) Shutdown() error {
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
	})
	return nil
}
