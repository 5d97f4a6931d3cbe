package inject

import (
	"ImageGenClient/internal/ai"
	"ImageGenClient/internal/app/session"
	"ImageGenClient/internal/config"
	"ImageGenClient/internal/service/image"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options входные данные для сборки зависимостей.
type Options struct {
	EnvFile string   // Путь к .env; пусто — .env в рабочей директории
	Environ []string // Окружение KEY=VALUE; nil — окружение процесса
	In      io.Reader
	Out     io.Writer
	Logger  *zap.SugaredLogger
}

// Setup регистрирует провайдеры. Сервисы создаются лениво при первом Invoke,
// injector.Shutdown освобождает те из них, что успели создаться.
func Setup(opts Options) *do.Injector {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.Provide[*config.Config](injector, func(i *do.Injector) (*config.Config, error) {
		return config.LoadFrom(opts.EnvFile, environ)
	})
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.Provide[ai.ImageClient](injector, func(i *do.Injector) (ai.ImageClient, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		c, err := ai.NewOpenAIClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("create image client: %w", err)
		}
		logger.Infow("Image client created", "endpoint", cfg.Endpoint, "deployment", cfg.ModelDeployment)
		return c, nil
	})
	do.Provide[*image.Downloader](injector, func(i *do.Injector) (*image.Downloader, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		return image.NewDownloader(do.MustInvoke[*http.Client](i), cfg.ImagesDir, opts.Out, logger), nil
	})
	do.Provide[*session.Session](injector, func(i *do.Injector) (*session.Session, error) {
		// Сначала конфигурация: при её ошибке клиент не создаётся вовсе
		if _, err := do.Invoke[*config.Config](i); err != nil {
			return nil, err
		}
		client, err := do.Invoke[ai.ImageClient](i)
		if err != nil {
			return nil, err
		}
		downloader, err := do.Invoke[*image.Downloader](i)
		if err != nil {
			return nil, err
		}
		return session.New(client, downloader, opts.In, opts.Out, logger), nil
	})

	return injector
}
