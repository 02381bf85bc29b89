package app

import (
	"os"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mobigenie/mobigenie/config"
	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/chat"
	"github.com/mobigenie/mobigenie/internal/recommend"
)

// Application wires the catalog snapshot, the recommendation core and
// the chat gateway together and owns their lifecycle.
type Application struct {
	appConfig *config.AppConfig
	bus       EventBus.Bus
	store     *catalog.Store
	matcher   *recommend.Matcher
	engine    *recommend.Engine
	gateway   chat.Gateway
	sched     *cron.Cron
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() *catalog.Store {
	return a.store
}

func (a *Application) Matcher() *recommend.Matcher {
	return a.matcher
}

func (a *Application) Engine() *recommend.Engine {
	return a.engine
}

func (a *Application) Chat() chat.Gateway {
	return a.gateway
}

// Init builds the logger, loads the catalog snapshot and constructs
// the request-path components. A catalog load failure is fatal.
func (a *Application) Init() error {
	cfg := a.appConfig

	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger()

	a.bus = EventBus.New()
	a.matcher = recommend.NewMatcher(a.bus)

	a.store, err = catalog.Load(catalog.Sources{
		MainPath:   cfg.Catalog.MainPath,
		LaptopPath: cfg.Catalog.LaptopPath,
		MobilePath: cfg.Catalog.MobilePath,
	}, a.bus)
	if err != nil {
		return err
	}

	a.engine = recommend.NewEngine()
	a.gateway = chat.NewMistral(
		cfg.Chat.APIURL,
		cfg.Chat.Token,
		time.Duration(cfg.Chat.TimeoutSec)*time.Second,
	)

	a.initJob()
	return nil
}

func (a *Application) initLogger() {
	cfg := a.appConfig

	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	_ = zap.L().Sync()
}
