package app

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "phonemart"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default password", zap.Error(err))
		return
	}

	var operator domain.SysOpr
	err = a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Email:     "N/A",
			Username:  superUsername,
			Password:  string(hashed),
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

func (a *Application) checkSettings() {
	// Load configuration definitions from the embedded JSON file
	var schemasData ConfigSchemasJSON
	if err := json.Unmarshal(configSchemasData, &schemasData); err != nil {
		zap.L().Error("failed to load config schemas from JSON", zap.Error(err))
		return
	}

	// Iterate over all configuration definitions, checking and initializing missing entries
	for sortid, schema := range schemasData.Schemas {
		// Parse key: "category.name" -> category, name
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}

		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkDemoCatalog seeds a small catalog so a fresh install has something
// to show on the storefront.
func (a *Application) checkDemoCatalog() {
	var count int64
	a.gormDB.Model(&domain.Phone{}).Count(&count)
	if count > 0 {
		return
	}

	phone := domain.Phone{
		ID:          common.UUIDint64(),
		Name:        "Galaxy S24",
		Brand:       "Samsung",
		Description: "Demo phone seeded on first start",
		Slug:        "samsung-galaxy-s24",
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := a.gormDB.Create(&phone).Error; err != nil {
		zap.L().Error("failed to seed demo phone", zap.Error(err))
		return
	}

	variants := []domain.PhoneVariant{
		{
			ID:           common.UUIDint64(),
			PhoneID:      phone.ID,
			SKU:          "S24-BLK-256",
			Color:        "Black",
			Storage:      "256GB",
			Price:        decimal.NewFromInt(899),
			Stock:        25,
			IsActive:     true,
			IsNewArrival: true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		},
		{
			ID:           common.UUIDint64(),
			PhoneID:      phone.ID,
			SKU:          "S24-GRY-512",
			Color:        "Gray",
			Storage:      "512GB",
			Price:        decimal.NewFromInt(999),
			Stock:        10,
			IsActive:     true,
			IsBestSeller: true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		},
	}
	for i := range variants {
		if err := a.gormDB.Create(&variants[i]).Error; err != nil {
			zap.L().Error("failed to seed demo variant", zap.Error(err))
		}
	}

	acc := domain.Accessory{
		ID:           common.UUIDint64(),
		Name:         "25W USB-C Charger",
		Slug:         "25w-usb-c-charger",
		Category:     "chargers",
		Price:        decimal.NewFromInt(29),
		Stock:        100,
		IsActive:     true,
		IsNewArrival: true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := a.gormDB.Create(&acc).Error; err != nil {
		zap.L().Error("failed to seed demo accessory", zap.Error(err))
		return
	}

	zap.L().Info("seeded demo catalog", zap.Int("variants", len(variants)))
}
