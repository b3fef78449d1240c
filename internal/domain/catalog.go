package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Phone is the parent catalog record for a phone model; the sellable units
// are its variants.
type Phone struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"size:200;index" json:"name" form:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex" json:"slug" form:"slug"`
	Brand       string    `gorm:"size:100;index" json:"brand" form:"brand"`
	Description string    `gorm:"type:text" json:"description" form:"description"`
	Image       string    `gorm:"size:1024" json:"image"`
	IsActive    bool      `gorm:"index" json:"is_active" form:"is_active"`
	StripeID    string    `gorm:"size:100" json:"stripe_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Phone) TableName() string {
	return "store_phone"
}

// PhoneVariant is a sellable phone configuration (color + storage).
type PhoneVariant struct {
	ID           int64           `json:"id,string" form:"id"`
	PhoneID      int64           `gorm:"index" json:"phone_id,string" form:"phone_id"`
	Phone        Phone           `gorm:"foreignKey:PhoneID" json:"phone"`
	SKU          string          `gorm:"size:100;uniqueIndex" json:"sku" form:"sku"`
	Color        string          `gorm:"size:50" json:"color" form:"color"`
	Storage      string          `gorm:"size:50" json:"storage" form:"storage"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Stock        int             `json:"stock" form:"stock"`
	Image        string          `gorm:"size:1024" json:"image"`
	IsActive     bool            `gorm:"index" json:"is_active" form:"is_active"`
	IsNewArrival bool            `gorm:"index" json:"is_new_arrival" form:"is_new_arrival"`
	IsBestSeller bool            `gorm:"index" json:"is_best_seller" form:"is_best_seller"`

	// Legacy flash-deal columns, kept for the one-time transfer into the
	// flash_deal table. New deals never read them.
	IsFlashDeal  bool             `json:"is_flash_deal"`
	SalePrice    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price,omitempty"`
	FlashDealEnd *time.Time       `json:"flash_deal_end,omitempty"`

	StripePriceID string    `gorm:"size:100" json:"stripe_price_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (PhoneVariant) TableName() string {
	return "store_phone_variant"
}

// Accessory is a flat catalog record (cases, chargers, earphones...).
type Accessory struct {
	ID           int64           `json:"id,string" form:"id"`
	Name         string          `gorm:"size:200;index" json:"name" form:"name"`
	Slug         string          `gorm:"size:255;uniqueIndex" json:"slug" form:"slug"`
	Description  string          `gorm:"type:text" json:"description" form:"description"`
	Category     string          `gorm:"size:100;index" json:"category" form:"category"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Stock        int             `json:"stock" form:"stock"`
	Image        string          `gorm:"size:1024" json:"image"`
	IsActive     bool            `gorm:"index" json:"is_active" form:"is_active"`
	IsNewArrival bool            `gorm:"index" json:"is_new_arrival" form:"is_new_arrival"`
	IsBestSeller bool            `gorm:"index" json:"is_best_seller" form:"is_best_seller"`

	// Legacy flash-deal columns, see PhoneVariant.
	IsFlashDeal  bool             `json:"is_flash_deal"`
	SalePrice    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price,omitempty"`
	FlashDealEnd *time.Time       `json:"flash_deal_end,omitempty"`

	StripeID      string    `gorm:"size:100" json:"stripe_id,omitempty"`
	StripePriceID string    `gorm:"size:100" json:"stripe_price_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Accessory) TableName() string {
	return "store_accessory"
}

// DealSource capability, implemented by both sellable product kinds so the
// promotions service never inspects concrete types.

func (v *PhoneVariant) DealName() string {
	parts := []string{v.Phone.Brand, v.Phone.Name, v.Color, v.Storage}
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func (v *PhoneVariant) DealDescription() string { return v.Phone.Description }

func (v *PhoneVariant) DealPrice() decimal.Decimal { return v.Price }

func (v *PhoneVariant) DealStock() int { return v.Stock }

func (v *PhoneVariant) DealImage() string { return v.Image }

func (v *PhoneVariant) DealProductType() string { return ProductTypePhone }

func (v *PhoneVariant) ProductID() int64 { return v.ID }

func (a *Accessory) DealName() string { return a.Name }

func (a *Accessory) DealDescription() string { return a.Description }

func (a *Accessory) DealPrice() decimal.Decimal { return a.Price }

func (a *Accessory) DealStock() int { return a.Stock }

func (a *Accessory) DealImage() string { return a.Image }

func (a *Accessory) DealProductType() string { return ProductTypeAccessory }

func (a *Accessory) ProductID() int64 { return a.ID }
