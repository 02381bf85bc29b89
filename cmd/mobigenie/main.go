package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mobigenie/mobigenie/config"
	"github.com/mobigenie/mobigenie/internal/app"
	"github.com/mobigenie/mobigenie/internal/webapi"
	"github.com/mobigenie/mobigenie/internal/webserver"
)

func main() {
	cfgFile := flag.String("c", "mobigenie.yml", "config file path")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgFile)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(); err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Release()

	server := webserver.New(webserver.Config{
		Listen:    cfg.System.Listen,
		StaticDir: cfg.System.StaticDir,
	})
	webapi.Register(server.Echo(), webapi.NewHandler(
		application.Store(),
		application.Matcher(),
		application.Engine(),
		application.Chat(),
	))

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("webserver error: %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zap.S().Errorf("shutdown error: %s", err.Error())
	}
}
