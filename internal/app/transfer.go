package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/promotions"
)

// transferLegacyFlashDeals migrates old per-product flash deal columns
// into first-class deal rows. The legacy flags are cleared after
// transfer so restarts are no-ops. Expired legacy deals are dropped,
// not transferred.
func (a *Application) transferLegacyFlashDeals() {
	ctx := context.Background()
	now := time.Now()
	transferred := 0

	var variants []domain.PhoneVariant
	if err := a.gormDB.Preload("Phone").
		Where("is_flash_deal = ?", true).Find(&variants).Error; err != nil {
		zap.L().Error("failed to query legacy variant deals", zap.Error(err))
		return
	}
	for i := range variants {
		v := &variants[i]
		created, err := a.transferLegacyDeal(ctx, v, v.SalePrice, v.FlashDealEnd, now)
		if err != nil {
			// Keep the legacy columns so the next start retries.
			zap.L().Warn("legacy deal transfer failed",
				zap.String("product", v.DealName()), zap.Error(err))
			continue
		}
		if created {
			transferred++
		}
		a.gormDB.Model(&domain.PhoneVariant{}).Where("id = ?", v.ID).
			Updates(map[string]interface{}{"is_flash_deal": false, "sale_price": nil, "flash_deal_end": nil})
	}

	var accessories []domain.Accessory
	if err := a.gormDB.Where("is_flash_deal = ?", true).Find(&accessories).Error; err != nil {
		zap.L().Error("failed to query legacy accessory deals", zap.Error(err))
		return
	}
	for i := range accessories {
		acc := &accessories[i]
		created, err := a.transferLegacyDeal(ctx, acc, acc.SalePrice, acc.FlashDealEnd, now)
		if err != nil {
			zap.L().Warn("legacy deal transfer failed",
				zap.String("product", acc.DealName()), zap.Error(err))
			continue
		}
		if created {
			transferred++
		}
		a.gormDB.Model(&domain.Accessory{}).Where("id = ?", acc.ID).
			Updates(map[string]interface{}{"is_flash_deal": false, "sale_price": nil, "flash_deal_end": nil})
	}

	if transferred > 0 {
		zap.L().Info("transferred legacy flash deals", zap.Int("count", transferred))
	}
}

// transferLegacyDeal converts one legacy product deal into a FlashDeal
// row. A (false, nil) return means the legacy deal was intentionally
// dropped (expired or priceless) and its columns may be cleared; a
// non-nil error means the columns must be kept for a retry.
func (a *Application) transferLegacyDeal(ctx context.Context, src promotions.DealSource,
	salePrice *decimal.Decimal, dealEnd *time.Time, now time.Time) (bool, error) {
	if salePrice == nil {
		return false, nil
	}
	if dealEnd != nil && dealEnd.Before(now) {
		return false, nil
	}

	end := now.AddDate(0, 0, 7)
	if dealEnd != nil {
		end = *dealEnd
	}
	// Back-date the start so the transferred deal is live immediately.
	start := now.Add(-24 * time.Hour)

	if _, err := a.dealService.CreateFromSalePrice(ctx, src, *salePrice, start, end, "", ""); err != nil {
		return false, err
	}
	return true, nil
}
