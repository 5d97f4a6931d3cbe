package ai

import (
	"context"
	"sync"
)

// StubResult один заранее заданный ответ заглушки.
type StubResult struct {
	Image GeneratedImage
	Err   error
}

// StubClient заглушка, которая не делает реальных запросов.
// Возвращает ответы по порядку, последний повторяется; без ответов отдаёт фиктивную ссылку.
type StubClient struct {
	mu      sync.Mutex
	results []StubResult
	prompts []string
	opts    []GenerateOptions
}

func NewStubClient(results ...StubResult) *StubClient {
	return &StubClient{results: results}
}

func (c *StubClient) Generate(_ context.Context, prompt string, opts GenerateOptions) (GeneratedImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	c.opts = append(c.opts, opts)

	if len(c.results) == 0 {
		return GeneratedImage{URL: "https://example.invalid/image.png"}, nil
	}
	r := c.results[0]
	if len(c.results) > 1 {
		c.results = c.results[1:]
	}
	return r.Image, r.Err
}

// Calls количество вызовов Generate.
func (c *StubClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

// Prompts промпты в порядке вызовов.
func (c *StubClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Options параметры генерации в порядке вызовов.
func (c *StubClient) Options() []GenerateOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]GenerateOptions(nil), c.opts...)
}
