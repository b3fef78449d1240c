package app

import (
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	evbus "github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/config"
	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/promotions"
	"github.com/phonemart/phonemart/internal/stripesync"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sched         *cron.Cron
	bus           evbus.Bus
	configManager *ConfigManager
	resultCache   *promotions.ResultCache

	dealService     *promotions.FlashDealService
	productService  *catalog.ProductService
	homepageService *promotions.HomepageService
	stripeSyncer    *stripesync.Syncer
}

// Ensure Application implements all interfaces
var (
	_ DBProvider            = (*Application)(nil)
	_ ConfigProvider        = (*Application)(nil)
	_ SettingsProvider      = (*Application)(nil)
	_ SchedulerProvider     = (*Application)(nil)
	_ ConfigManagerProvider = (*Application)(nil)
	_ AppContext            = (*Application)(nil)
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

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
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
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkSuper()
		a.checkSettings()
		a.checkDemoCatalog()
		a.transferLegacyFlashDeals()
	}()

	a.configManager = NewConfigManager(a)
	a.bus = evbus.New()

	cacheTTL := promotions.DefaultCacheTTL
	if minutes := a.configManager.GetInt64("promotion", "CacheTTLMinutes"); minutes > 0 {
		cacheTTL = time.Duration(minutes) * time.Minute
	}
	a.resultCache = promotions.NewResultCache(cacheTTL, a.bus)

	dealStore := promotions.NewGormDealStore(a.gormDB)
	productStore := catalog.NewGormProductStore(a.gormDB)
	a.dealService = promotions.NewFlashDealService(dealStore, a.bus)
	a.productService = catalog.NewProductService(productStore)

	dealLimit := int(a.configManager.GetInt64("promotion", "HomepageDealLimit"))
	a.homepageService = promotions.NewHomepageService(a.dealService, a.productService, a.resultCache, dealLimit)

	if cfg.Stripe.Enabled {
		client := stripesync.NewClient(cfg.Stripe.Endpoint, cfg.Stripe.ApiKey, cfg.Stripe.Currency)
		a.stripeSyncer = stripesync.NewSyncer(a.gormDB, client)
	}

	a.initJob()
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

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
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

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Bus returns the application event bus
func (a *Application) Bus() evbus.Bus {
	return a.bus
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configManager.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configManager.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configManager.GetBool(category, key)
}

// GetDealService returns the flash deal service, untyped for the web layer.
func (a *Application) GetDealService() interface{} {
	return a.dealService
}

// GetHomepageService returns the homepage aggregator.
func (a *Application) GetHomepageService() interface{} {
	return a.homepageService
}

// GetProductService returns the catalog service.
func (a *Application) GetProductService() interface{} {
	return a.productService
}

// GetSettings returns the configuration manager, untyped for the web layer.
func (a *Application) GetSettings() interface{} {
	return a.configManager
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.resultCache != nil {
		a.resultCache.Stop()
	}
	if a.stripeSyncer != nil {
		a.stripeSyncer.Stop()
	}
	_ = zap.L().Sync()
}
