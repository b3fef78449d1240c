package app

import (
	_ "embed"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/phonemart/phonemart/internal/domain"
)

//go:embed config_schemas.json
var configSchemasData []byte

type ConfigSchema struct {
	Key         string `json:"key"`
	Default     string `json:"default"`
	Description string `json:"description"`
}

type ConfigSchemasJSON struct {
	Schemas []ConfigSchema `json:"schemas"`
}

const configCacheTTL = 30 * time.Second

// ConfigManager reads sys_config values with a short-lived cache so hot
// paths do not hit the database on every request.
type ConfigManager struct {
	app *Application

	mu     sync.RWMutex
	values map[string]string
	loaded time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app, values: map[string]string{}}
}

func (m *ConfigManager) reloadIfStale() {
	m.mu.RLock()
	fresh := time.Since(m.loaded) < configCacheTTL
	m.mu.RUnlock()
	if fresh {
		return
	}

	var rows []domain.SysConfig
	if err := m.app.gormDB.Find(&rows).Error; err != nil {
		zap.L().Error("failed to load sys_config", zap.Error(err))
		return
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Type+"."+row.Name] = row.Value
	}

	m.mu.Lock()
	m.values = values
	m.loaded = time.Now()
	m.mu.Unlock()
}

func (m *ConfigManager) get(category, name string) string {
	m.reloadIfStale()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[category+"."+name]
}

func (m *ConfigManager) GetString(category, name string) string {
	return m.get(category, name)
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.get(category, name))
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.get(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.get(category, name))
}

// SetValue writes a setting and invalidates the cache.
func (m *ConfigManager) SetValue(category, name, value string) error {
	var row domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, name).First(&row).Error
	if err != nil {
		return err
	}
	if err := m.app.gormDB.Model(&domain.SysConfig{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error; err != nil {
		return err
	}

	m.mu.Lock()
	m.loaded = time.Time{}
	m.mu.Unlock()
	return nil
}
