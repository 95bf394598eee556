package app

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/ayurwell/ayurcms/config"
	"github.com/ayurwell/ayurcms/internal/blobstore"
	"github.com/ayurwell/ayurcms/internal/domain"
	"github.com/ayurwell/ayurcms/internal/pipeline"
	"github.com/ayurwell/ayurcms/internal/stage"
	"github.com/ayurwell/ayurcms/internal/store"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	dataStore *store.Store
	fileStage *stage.Stage
	blobStore *blobstore.Store
	uploads   *pipeline.Pipeline
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ PipelineProvider  = (*Application)(nil)
	_ StageProvider     = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Store() *store.Store {
	return a.dataStore
}

func (a *Application) Pipeline() *pipeline.Pipeline {
	return a.uploads
}

func (a *Application) Stage() *stage.Stage {
	return a.fileStage
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.dataStore = store.New(db)
}

// OverridePipeline replaces the upload pipeline (used in tests).
func (a *Application) OverridePipeline(p *pipeline.Pipeline) {
	a.uploads = p
	a.fileStage = p.Stage()
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database)
	a.dataStore = store.New(a.gormDB)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.fileStage, err = stage.New(cfg.GetStageDir(), stage.DefaultMaxSize, stage.DefaultAllowedTypes)
	if err != nil {
		zap.S().Fatalf("failed to create upload stage dir: %v", err)
	}

	a.blobStore, err = blobstore.New(&cfg.Storage)
	if err != nil {
		zap.S().Fatalf("storage configuration invalid: %v", err)
	}

	a.uploads = pipeline.New(a.fileStage, a.blobStore)

	a.initJob()
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		filename := cfg.Logger.Filename
		if filename == "" {
			filename = filepath.Join(cfg.GetLogDir(), "ayurcms.log")
		}
		lumberJackLogger := &lumberjack.Logger{
			Filename:   filename,
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

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	_ = zap.L().Sync()
}
