package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/phonemart/phonemart/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedClearExpireData()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// Deal windows expire on wall-clock time without any row change, so
	// cached listings go stale; drop them every few minutes.
	_, err = a.sched.AddFunc("@every 5m", func() {
		a.resultCache.Flush()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if a.stripeSyncer != nil {
		_, err = a.sched.AddFunc("@hourly", func() {
			a.SchedStripeSync()
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedClearExpireData purges aged operator logs.
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	idays := a.ConfigMgr().GetInt("system", "OprLogRetentionDays")
	if idays == 0 {
		idays = 365
	}
	a.gormDB.
		Where("opt_time < ? ", time.Now().
			Add(-time.Hour*24*time.Duration(idays))).Delete(domain.SysOprLog{})
}

// SchedStripeSync mirrors the catalog to the payment provider.
func (a *Application) SchedStripeSync() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	batch := a.ConfigMgr().GetInt("stripe", "SyncBatchSize")
	if batch <= 0 {
		batch = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := a.stripeSyncer.SyncCatalog(ctx, batch); err != nil {
		zap.L().Error("stripe catalog sync failed", zap.Error(err))
	}
}
