package promotions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phonemart/phonemart/internal/domain"
	"gorm.io/gorm"
)

// DealStore handles database operations for flash deals. All reads are
// side-effect free and safe to call concurrently.
type DealStore interface {
	// Create inserts a new deal; the slug unique index may reject it.
	Create(ctx context.Context, deal *domain.FlashDeal) error

	// Update persists an existing deal by primary key.
	Update(ctx context.Context, deal *domain.FlashDeal) error

	// GetByID retrieves a deal regardless of its active flag.
	GetByID(ctx context.Context, id int64) (*domain.FlashDeal, error)

	// GetBySlug retrieves an active deal by slug. Returns (nil, nil)
	// when absent or administratively disabled.
	GetBySlug(ctx context.Context, slug string) (*domain.FlashDeal, error)

	// SlugExists reports whether any deal already uses slug.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ActiveDeals returns deals that are enabled and inside their time
	// window. limit <= 0 means no truncation.
	ActiveDeals(ctx context.Context, limit int) ([]domain.FlashDeal, error)

	// UpcomingDeals returns enabled deals that have not started yet,
	// soonest first.
	UpcomingDeals(ctx context.Context, limit int) ([]domain.FlashDeal, error)

	// List retrieves deals with pagination for the admin API.
	List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]domain.FlashDeal, int64, error)

	// Delete removes a deal.
	Delete(ctx context.Context, id int64) error

	// Transaction runs fn against a transactional store.
	Transaction(ctx context.Context, fn func(DealStore) error) error
}

// GormDealStore is the GORM implementation of DealStore.
type GormDealStore struct {
	db *gorm.DB
}

// NewGormDealStore creates a new GORM-based deal store.
func NewGormDealStore(db *gorm.DB) *GormDealStore {
	return &GormDealStore{db: db}
}

func (r *GormDealStore) Create(ctx context.Context, deal *domain.FlashDeal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *GormDealStore) Update(ctx context.Context, deal *domain.FlashDeal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

func (r *GormDealStore) GetByID(ctx context.Context, id int64) (*domain.FlashDeal, error) {
	var deal domain.FlashDeal
	err := r.db.WithContext(ctx).First(&deal, id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *GormDealStore) GetBySlug(ctx context.Context, slug string) (*domain.FlashDeal, error) {
	var deal domain.FlashDeal
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&deal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *GormDealStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.FlashDeal{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *GormDealStore) ActiveDeals(ctx context.Context, limit int) ([]domain.FlashDeal, error) {
	now := time.Now()
	q := r.db.WithContext(ctx).
		Where("is_active = ? AND start_date <= ? AND end_date > ?", true, now, now).
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var deals []domain.FlashDeal
	err := q.Find(&deals).Error
	return deals, err
}

func (r *GormDealStore) UpcomingDeals(ctx context.Context, limit int) ([]domain.FlashDeal, error) {
	q := r.db.WithContext(ctx).
		Where("is_active = ? AND start_date > ?", true, time.Now()).
		Order("start_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var deals []domain.FlashDeal
	err := q.Find(&deals).Error
	return deals, err
}

func (r *GormDealStore) List(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]domain.FlashDeal, int64, error) {
	var deals []domain.FlashDeal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.FlashDeal{})
	for key, value := range filter {
		if value != nil && value != "" {
			query = query.Where(key+" = ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&deals).Error
	return deals, total, err
}

func (r *GormDealStore) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.FlashDeal{}, id).Error
}

func (r *GormDealStore) Transaction(ctx context.Context, fn func(DealStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormDealStore{db: tx})
	})
}

// IsDuplicateSlug reports whether err comes from the slug unique index.
// The constraint is the final authority on slug uniqueness under
// concurrent creation; callers retry with the next suffix.
func IsDuplicateSlug(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
