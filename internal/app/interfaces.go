package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/ayurwell/ayurcms/config"
	"github.com/ayurwell/ayurcms/internal/pipeline"
	"github.com/ayurwell/ayurcms/internal/stage"
	"github.com/ayurwell/ayurcms/internal/store"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the entity store
type StoreProvider interface {
	Store() *store.Store
}

// PipelineProvider provides the upload pipeline
type PipelineProvider interface {
	Pipeline() *pipeline.Pipeline
}

// StageProvider provides the temporary upload stage
type StageProvider interface {
	Stage() *stage.Stage
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines the provider interfaces for full application
// context. Handlers should depend on specific providers or this
// combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	StoreProvider
	PipelineProvider
	StageProvider
	SchedulerProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	SeedDb() error
	DropAll()
}
