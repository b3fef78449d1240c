package catalog

import (
	"context"
	"errors"

	"github.com/phonemart/phonemart/internal/domain"
	"gorm.io/gorm"
)

// ProductStore handles catalog reads plus the few writes the catalog owns.
// Flash deals are never written here.
type ProductStore interface {
	NewArrivalPhones(ctx context.Context, limit int) ([]domain.PhoneVariant, error)
	NewArrivalAccessories(ctx context.Context, limit int) ([]domain.Accessory, error)
	BestSellerPhones(ctx context.Context, limit int) ([]domain.PhoneVariant, error)
	BestSellerAccessories(ctx context.Context, limit int) ([]domain.Accessory, error)

	PhoneBySlug(ctx context.Context, slug string) (*domain.Phone, error)
	VariantsByPhone(ctx context.Context, phoneID int64) ([]domain.PhoneVariant, error)
	VariantByID(ctx context.Context, id int64) (*domain.PhoneVariant, error)
	AccessoryBySlug(ctx context.Context, slug string) (*domain.Accessory, error)
	AccessoryByID(ctx context.Context, id int64) (*domain.Accessory, error)

	RelatedPhoneVariants(ctx context.Context, brand string, excludePhoneID int64, limit int) ([]domain.PhoneVariant, error)
	RelatedAccessories(ctx context.Context, excludeID int64, limit int) ([]domain.Accessory, error)

	DeleteVariant(ctx context.Context, id int64) error
	DeleteAccessory(ctx context.Context, id int64) error
}

// GormProductStore is the GORM implementation of ProductStore.
type GormProductStore struct {
	db *gorm.DB
}

func NewGormProductStore(db *gorm.DB) *GormProductStore {
	return &GormProductStore{db: db}
}

func (r *GormProductStore) NewArrivalPhones(ctx context.Context, limit int) ([]domain.PhoneVariant, error) {
	var rows []domain.PhoneVariant
	err := r.db.WithContext(ctx).Preload("Phone").
		Where("is_new_arrival = ? AND is_active = ?", true, true).
		Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *GormProductStore) NewArrivalAccessories(ctx context.Context, limit int) ([]domain.Accessory, error) {
	var rows []domain.Accessory
	err := r.db.WithContext(ctx).
		Where("is_new_arrival = ? AND is_active = ?", true, true).
		Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *GormProductStore) BestSellerPhones(ctx context.Context, limit int) ([]domain.PhoneVariant, error) {
	var rows []domain.PhoneVariant
	err := r.db.WithContext(ctx).Preload("Phone").
		Where("is_best_seller = ? AND is_active = ?", true, true).
		Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *GormProductStore) BestSellerAccessories(ctx context.Context, limit int) ([]domain.Accessory, error) {
	var rows []domain.Accessory
	err := r.db.WithContext(ctx).
		Where("is_best_seller = ? AND is_active = ?", true, true).
		Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *GormProductStore) PhoneBySlug(ctx context.Context, slug string) (*domain.Phone, error) {
	var phone domain.Phone
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &phone, nil
}

func (r *GormProductStore) VariantsByPhone(ctx context.Context, phoneID int64) ([]domain.PhoneVariant, error) {
	var rows []domain.PhoneVariant
	err := r.db.WithContext(ctx).Preload("Phone").
		Where("phone_id = ? AND is_active = ?", phoneID, true).
		Find(&rows).Error
	return rows, err
}

func (r *GormProductStore) VariantByID(ctx context.Context, id int64) (*domain.PhoneVariant, error) {
	var row domain.PhoneVariant
	err := r.db.WithContext(ctx).Preload("Phone").First(&row, id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormProductStore) AccessoryBySlug(ctx context.Context, slug string) (*domain.Accessory, error) {
	var row domain.Accessory
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormProductStore) AccessoryByID(ctx context.Context, id int64) (*domain.Accessory, error) {
	var row domain.Accessory
	err := r.db.WithContext(ctx).First(&row, id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormProductStore) RelatedPhoneVariants(ctx context.Context, brand string, excludePhoneID int64, limit int) ([]domain.PhoneVariant, error) {
	var rows []domain.PhoneVariant
	err := r.db.WithContext(ctx).Preload("Phone").
		Joins("JOIN store_phone ON store_phone.id = store_phone_variant.phone_id").
		Where("store_phone.brand = ? AND store_phone.id != ?", brand, excludePhoneID).
		Where("store_phone_variant.is_active = ?", true).
		Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *GormProductStore) RelatedAccessories(ctx context.Context, excludeID int64, limit int) ([]domain.Accessory, error) {
	var rows []domain.Accessory
	err := r.db.WithContext(ctx).
		Where("id != ? AND is_active = ?", excludeID, true).
		Limit(limit).Find(&rows).Error
	return rows, err
}

// DeleteVariant removes a catalog variant and clears the weak reference on
// any deal copied from it. Deals survive the product they were copied
// from; only the back-reference goes away.
func (r *GormProductStore) DeleteVariant(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.FlashDeal{}).
			Where("reference_phone_id = ?", id).
			Update("reference_phone_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.PhoneVariant{}, id).Error
	})
}

// DeleteAccessory mirrors DeleteVariant for accessories.
func (r *GormProductStore) DeleteAccessory(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.FlashDeal{}).
			Where("reference_accessory_id = ?", id).
			Update("reference_accessory_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Accessory{}, id).Error
	})
}
