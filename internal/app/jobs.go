package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// initJob starts the scheduler and, when configured, the periodic
// catalog reload. A failed reload keeps the previous snapshot.
func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.UTC
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	if spec := a.appConfig.Catalog.ReloadCron; spec != "" {
		_, err := a.sched.AddFunc(spec, func() {
			if err := a.store.Reload(); err != nil {
				zap.S().Errorf("scheduled catalog reload failed: %s", err.Error())
			}
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}
