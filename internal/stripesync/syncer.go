package stripesync

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/internal/domain"
)

const syncWorkers = 4

// Syncer mirrors catalog products that have no provider id yet. Each
// product costs two API round-trips, so a small worker pool keeps a
// batch from serializing behind network latency.
type Syncer struct {
	db     *gorm.DB
	client *Client
	pool   *ants.Pool
}

func NewSyncer(db *gorm.DB, client *Client) *Syncer {
	pool, err := ants.NewPool(syncWorkers)
	if err != nil {
		zap.L().Error("failed to create stripe sync pool", zap.Error(err))
	}
	return &Syncer{db: db, client: client, pool: pool}
}

func (s *Syncer) Stop() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// SyncCatalog pushes unmirrored variants and accessories, up to batch of
// each kind per run.
func (s *Syncer) SyncCatalog(ctx context.Context, batch int) error {
	var variants []domain.PhoneVariant
	if err := s.db.WithContext(ctx).Preload("Phone").
		Where("is_active = ? AND stripe_price_id = ''", true).
		Limit(batch).Find(&variants).Error; err != nil {
		return err
	}

	var accessories []domain.Accessory
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND stripe_id = ''", true).
		Limit(batch).Find(&accessories).Error; err != nil {
		return err
	}

	var wg sync.WaitGroup
	for i := range variants {
		v := &variants[i]
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			s.syncVariant(ctx, v)
		}); err != nil {
			wg.Done()
		}
	}
	for i := range accessories {
		acc := &accessories[i]
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			s.syncAccessory(ctx, acc)
		}); err != nil {
			wg.Done()
		}
	}
	wg.Wait()
	return nil
}

func (s *Syncer) syncVariant(ctx context.Context, v *domain.PhoneVariant) {
	productID := v.Phone.StripeID
	if productID == "" {
		id, err := s.client.CreateProduct(ctx, v.Phone.Brand+" "+v.Phone.Name, v.Phone.Description)
		if err != nil {
			zap.L().Warn("stripe product sync failed", zap.String("sku", v.SKU), zap.Error(err))
			return
		}
		productID = id
		s.db.Model(&domain.Phone{}).Where("id = ?", v.PhoneID).Update("stripe_id", productID)
	}

	priceID, err := s.client.CreatePrice(ctx, productID, toCents(v.Price))
	if err != nil {
		zap.L().Warn("stripe price sync failed", zap.String("sku", v.SKU), zap.Error(err))
		return
	}
	s.db.Model(&domain.PhoneVariant{}).Where("id = ?", v.ID).Update("stripe_price_id", priceID)
}

func (s *Syncer) syncAccessory(ctx context.Context, acc *domain.Accessory) {
	productID, err := s.client.CreateProduct(ctx, acc.Name, acc.Description)
	if err != nil {
		zap.L().Warn("stripe product sync failed", zap.String("accessory", acc.Name), zap.Error(err))
		return
	}
	priceID, err := s.client.CreatePrice(ctx, productID, toCents(acc.Price))
	if err != nil {
		zap.L().Warn("stripe price sync failed", zap.String("accessory", acc.Name), zap.Error(err))
		return
	}
	s.db.Model(&domain.Accessory{}).Where("id = ?", acc.ID).
		Updates(map[string]interface{}{"stripe_id": productID, "stripe_price_id": priceID})
}

func toCents(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
