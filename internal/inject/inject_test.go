package inject

import (
	"ImageGenClient/internal/ai"
	"ImageGenClient/internal/app/session"
	"ImageGenClient/internal/config"
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T, environ []string) (*do.Injector, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	injector := Setup(Options{
		EnvFile: filepath.Join(t.TempDir(), "absent.env"),
		Environ: environ,
		In:      strings.NewReader("quit\n"),
		Out:     out,
		Logger:  zaptest.NewLogger(t).Sugar(),
	})
	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector, out
}

func TestSetup_MissingConfigMakesNoRequests(t *testing.T) {
	full := []string{"OPENAI_ENDPOINT=https://x", "OPENAI_API_KEY=k", "MODEL_DEPLOYMENT=d"}
	for i, key := range []string{config.KeyEndpoint, config.KeyAPIKey, config.KeyModelDeployment} {
		t.Run(key, func(t *testing.T) {
			environ := append(append([]string{}, full[:i]...), full[i+1:]...)
			injector, _ := setup(t, environ)
			stub := ai.NewStubClient()
			do.Override[ai.ImageClient](injector, func(*do.Injector) (ai.ImageClient, error) {
				return stub, nil
			})

			s, err := do.Invoke[*session.Session](injector)

			require.Error(t, err)
			assert.Nil(t, s)
			assert.Contains(t, err.Error(), key)
			assert.Equal(t, 0, stub.Calls())
		})
	}
}

func TestSetup_MalformedEndpoint(t *testing.T) {
	injector, _ := setup(t, []string{"OPENAI_ENDPOINT=not a url", "OPENAI_API_KEY=k", "MODEL_DEPLOYMENT=d"})

	_, err := do.Invoke[*session.Session](injector)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed endpoint")
}

func TestSetup_BuildsSessionAndReleasesClient(t *testing.T) {
	injector, out := setup(t, []string{
		"OPENAI_ENDPOINT=https://x",
		"OPENAI_API_KEY=k",
		"MODEL_DEPLOYMENT=d",
		"IMAGES_DIR=" + t.TempDir(),
	})

	s, err := do.Invoke[*session.Session](injector)
	require.NoError(t, err)
	require.NotNil(t, s)

	client, err := do.Invoke[ai.ImageClient](injector)
	require.NoError(t, err)
	assert.IsType(t, &ai.OpenAIClient{}, client)

	require.NoError(t, s.Run(t.Context()))
	assert.Contains(t, out.String(), "Goodbye!")
	assert.NoError(t, injector.Shutdown())
}

// closingClient считает вызовы Shutdown, которые делает injector.
type closingClient struct {
	*ai.StubClient
	shutdowns int
}

func (c *closingClient) Shutdown() error {
	c.shutdowns++
	return nil
}

func TestSetup_ShutdownReleasesImageClient(t *testing.T) {
	valid := []string{"OPENAI_ENDPOINT=https://x", "OPENAI_API_KEY=k", "MODEL_DEPLOYMENT=d", "IMAGES_DIR=" + t.TempDir()}

	t.Run("after successful setup", func(t *testing.T) {
		injector, _ := setup(t, valid)
		client := &closingClient{StubClient: ai.NewStubClient()}
		do.Override[ai.ImageClient](injector, func(*do.Injector) (ai.ImageClient, error) {
			return client, nil
		})

		s, err := do.Invoke[*session.Session](injector)
		require.NoError(t, err)
		require.NoError(t, s.Run(t.Context()))

		require.NoError(t, injector.Shutdown())
		assert.Equal(t, 1, client.shutdowns)
	})

	t.Run("after configuration failure", func(t *testing.T) {
		injector, _ := setup(t, []string{"OPENAI_API_KEY=k"})
		client := &closingClient{StubClient: ai.NewStubClient()}
		do.Override[ai.ImageClient](injector, func(*do.Injector) (ai.ImageClient, error) {
			return client, nil
		})

		_, err := do.Invoke[*session.Session](injector)
		require.Error(t, err)

		assert.NotPanics(t, func() { _ = injector.Shutdown() })
		assert.Equal(t, 0, client.shutdowns)
		assert.Equal(t, 0, client.Calls())
	})
}

func TestOpenAIClientIsShutdownable(t *testing.T) {
	var _ do.Shutdownable = (*ai.OpenAIClient)(nil)
}
