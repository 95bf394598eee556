package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ayurwell/ayurcms/internal/stage"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	// Leak recovery for staged files a failed pipeline run never
	// removed. Files younger than the age threshold are left alone.
	_, err := a.sched.AddFunc("@hourly", func() {
		a.SchedStageSweepTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedStageSweepTask removes stale staged upload files.
func (a *Application) SchedStageSweepTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	removed := a.fileStage.Sweep(stage.DefaultMaxAge)
	if removed > 0 {
		zap.S().Infof("stage sweep removed %d stale files", removed)
	}
}
