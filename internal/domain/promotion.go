package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product type of the item a flash deal was copied from.
const (
	ProductTypePhone     = "phone"
	ProductTypeAccessory = "accessory"
)

var (
	// ErrInvalidWindow indicates end_date <= start_date.
	ErrInvalidWindow = errors.New("end date must be after start date")
	// ErrAmbiguousReference indicates both product references are set.
	ErrAmbiguousReference = errors.New("a flash deal can reference either a phone variant or an accessory, not both")
)

// FlashDeal is a time-boxed discounted offer, optionally copied from a
// catalog product. Prices are fixed-point decimals with 2 decimal places;
// sale_price and discount_percentage are kept mutually consistent by the
// promotions save pipeline.
type FlashDeal struct {
	ID                 int64            `json:"id,string" form:"id"`
	Name               string           `gorm:"size:200" json:"name" form:"name"`
	Description        string           `gorm:"type:text" json:"description" form:"description"`
	ProductType        string           `gorm:"size:16;index" json:"product_type" form:"product_type"`
	OriginalPrice      decimal.Decimal  `gorm:"type:decimal(10,2)" json:"original_price"`
	DiscountPercentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percentage"`
	SalePrice          *decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price"`
	Image              string           `gorm:"size:1024" json:"image"`
	StartDate          time.Time        `gorm:"index" json:"start_date"`
	EndDate            time.Time        `gorm:"index" json:"end_date"`
	IsActive           bool             `json:"is_active" form:"is_active"`
	Stock              int              `json:"stock" form:"stock"`
	Slug               string           `gorm:"size:255;uniqueIndex" json:"slug" form:"slug"`

	// Weak references back to the catalog item the deal was created from.
	// Lookup only: deleting the product clears the reference, it never
	// cascades to the deal.
	ReferencePhoneID     *int64 `gorm:"index" json:"reference_phone,omitempty"`
	ReferenceAccessoryID *int64 `gorm:"index" json:"reference_accessory,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (FlashDeal) TableName() string {
	return "flash_deal"
}

// Validate checks the entity invariants. It runs before every persist.
func (d *FlashDeal) Validate() error {
	if !d.EndDate.After(d.StartDate) {
		return ErrInvalidWindow
	}
	if d.ReferencePhoneID != nil && d.ReferenceAccessoryID != nil {
		return ErrAmbiguousReference
	}
	return nil
}

// Deal time states derived from the start/end window. Never stored.
const (
	DealPending = "pending"
	DealRunning = "running"
	DealExpired = "expired"
)

// TimeState reports where now falls in the deal window.
func (d *FlashDeal) TimeState(now time.Time) string {
	switch {
	case now.Before(d.StartDate):
		return DealPending
	case now.Before(d.EndDate):
		return DealRunning
	default:
		return DealExpired
	}
}

// IsLive reports whether the deal is visible to the public API:
// running in time and administratively enabled.
func (d *FlashDeal) IsLive(now time.Time) bool {
	return d.IsActive && d.TimeState(now) == DealRunning
}

func (d *FlashDeal) String() string {
	if d.DiscountPercentage != nil {
		return fmt.Sprintf("%s (%s%% off)", d.Name, d.DiscountPercentage.String())
	}
	return d.Name
}
