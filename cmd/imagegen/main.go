package main

import (
	"ImageGenClient/internal/app/session"
	"ImageGenClient/internal/config"
	"ImageGenClient/internal/inject"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/do"
	"go.uber.org/zap"
)

func main() {
	// создаём регистратор zap; уровень поднимается до debug после чтения конфигурации
	level := zap.NewAtomicLevelAt(zap.WarnLevel)
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = level
	zcfg.DisableStacktrace = true
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	injector := inject.Setup(inject.Options{
		In:     os.Stdin,
		Out:    os.Stdout,
		Logger: sugar,
	})
	// освобождаем клиента на любом пути выхода
	defer func() {
		if err := injector.Shutdown(); err != nil {
			sugar.Errorw("Failed to release resources", "error", err)
		}
	}()

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		var mk *config.MissingKeysError
		if errors.As(err, &mk) {
			fmt.Printf("Configuration is incomplete. Set %s in .env or the environment.\n", strings.Join(mk.Keys, ", "))
		} else {
			fmt.Printf("Failed to load configuration: %v\n", err)
		}
		return
	}
	if cfg.DebugMode {
		level.SetLevel(zap.DebugLevel)
	}

	sess, err := do.Invoke[*session.Session](injector)
	if err != nil {
		fmt.Printf("Failed to initialise image client: %v\n", err)
		return
	}

	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		sugar.Errorw("Session ended with error", "error", err)
	}
}
