package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amflabs/stockpilot/config"
	"github.com/amflabs/stockpilot/internal/advisor"
	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/store"
	"github.com/amflabs/stockpilot/pkg/metrics"
)

// Version is stamped by the release build; "dev" for local builds.
var Version = "dev"

const topicStockChanged = "stock.changed"

type Application struct {
	appConfig *config.AppConfig
	dataStore *store.Store
	backend   store.Backend
	sched     *cron.Cron
	bus       EventBus.Bus
	advClient *advisor.Client
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() *store.Store {
	return a.dataStore
}

func (a *Application) Advisor() *advisor.Client {
	return a.advClient
}

// OverrideStore replaces the application's store (used in tests).
func (a *Application) OverrideStore(s *store.Store) {
	a.dataStore = s
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	if err := os.MkdirAll(cfg.System.Workdir, 0755); err != nil {
		return err
	}

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	backend, err := store.OpenBolt(cfg.Storage.Path)
	if err != nil {
		return err
	}
	a.backend = backend
	zap.S().Infof("Storage opened: %s", cfg.Storage.Path)

	a.dataStore = store.New(backend, cfg.Web.Secret)
	if err := a.dataStore.Load(); err != nil {
		return err
	}
	zap.L().Info("collections loaded")

	a.advClient = advisor.NewClient(
		cfg.Advisor.ApiUrl,
		cfg.Advisor.ApiKey,
		time.Duration(cfg.Advisor.Timeout)*time.Second,
	)

	a.bus = EventBus.New()
	if err := a.bus.Subscribe(topicStockChanged, a.onStockChanged); err != nil {
		zap.S().Errorf("subscribe %s: %s", topicStockChanged, err)
	}
	a.dataStore.SetStockNotifier(func(p domain.Product) {
		a.bus.Publish(topicStockChanged, p)
	})

	a.initJob()
	return nil
}

func (a *Application) initLogger(cfg *config.AppConfig) {
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
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

// InitDb wipes the persisted collections and reseeds factory defaults.
func (a *Application) InitDb() error {
	return a.dataStore.Restore(store.SeedDump(a.appConfig.Web.Secret))
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.backend != nil {
		_ = a.backend.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
