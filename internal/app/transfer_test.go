package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/promotions"
)

func testApp(t *testing.T) *Application {
	t.Helper()
	dbfile := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbfile), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &Application{
		gormDB:      db,
		dealService: promotions.NewFlashDealService(promotions.NewGormDealStore(db), nil),
	}
}

func TestTransferLegacyFlashDeals(t *testing.T) {
	a := testApp(t)
	db := a.gormDB

	phone := domain.Phone{ID: 1, Name: "Galaxy A54", Brand: "Samsung", Slug: "samsung-galaxy-a54", IsActive: true}
	if err := db.Create(&phone).Error; err != nil {
		t.Fatal(err)
	}

	sale := decimal.NewFromInt(299)
	end := time.Now().Add(72 * time.Hour)
	variant := domain.PhoneVariant{
		ID: 2, PhoneID: 1, SKU: "A54-BLU-128",
		Color: "Blue", Storage: "128GB",
		Price: decimal.NewFromInt(399), IsActive: true,
		IsFlashDeal: true, SalePrice: &sale, FlashDealEnd: &end,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatal(err)
	}

	// Expired legacy deal must be dropped, not transferred.
	expiredSale := decimal.NewFromInt(5)
	expiredEnd := time.Now().Add(-time.Hour)
	expired := domain.Accessory{
		ID: 3, Name: "Old Cable", Slug: "old-cable",
		Price: decimal.NewFromInt(10), IsActive: true,
		IsFlashDeal: true, SalePrice: &expiredSale, FlashDealEnd: &expiredEnd,
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatal(err)
	}

	a.transferLegacyFlashDeals()

	var deals []domain.FlashDeal
	if err := db.Find(&deals).Error; err != nil {
		t.Fatal(err)
	}
	if len(deals) != 1 {
		t.Fatalf("deals = %d, want 1 (expired dropped)", len(deals))
	}

	deal := deals[0]
	if deal.Slug != "samsung-galaxy-a54-blue-128gb-flash-deal" {
		t.Fatalf("slug = %q", deal.Slug)
	}
	if deal.SalePrice == nil || deal.SalePrice.StringFixed(2) != "299.00" {
		t.Fatal("sale price not carried over")
	}
	if deal.DiscountPercentage == nil {
		t.Fatal("discount not derived from legacy sale price")
	}
	if deal.ReferencePhoneID == nil || *deal.ReferencePhoneID != variant.ID {
		t.Fatal("reference to source variant missing")
	}
	if !deal.IsLive(time.Now()) {
		t.Fatal("transferred deal should be live immediately")
	}
	if d := deal.EndDate.Sub(end); d < -time.Second || d > time.Second {
		t.Fatalf("end = %v, want legacy end %v", deal.EndDate, end)
	}

	// Legacy columns are cleared so a second run is a no-op.
	var after domain.PhoneVariant
	if err := db.First(&after, variant.ID).Error; err != nil {
		t.Fatal(err)
	}
	if after.IsFlashDeal || after.SalePrice != nil {
		t.Fatal("legacy flags not cleared")
	}

	a.transferLegacyFlashDeals()
	var count int64
	db.Model(&domain.FlashDeal{}).Count(&count)
	if count != 1 {
		t.Fatalf("second run created %d extra deals", count-1)
	}
}

func TestTransferKeepsLegacyColumnsOnFailure(t *testing.T) {
	a := testApp(t)
	db := a.gormDB

	phone := domain.Phone{ID: 1, Name: "Galaxy A54", Brand: "Samsung", Slug: "samsung-galaxy-a54", IsActive: true}
	if err := db.Create(&phone).Error; err != nil {
		t.Fatal(err)
	}
	sale := decimal.NewFromInt(299)
	end := time.Now().Add(72 * time.Hour)
	variant := domain.PhoneVariant{
		ID: 2, PhoneID: 1, SKU: "A54-BLU-128",
		Price: decimal.NewFromInt(399), IsActive: true,
		IsFlashDeal: true, SalePrice: &sale, FlashDealEnd: &end,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatal(err)
	}

	// Make the deal insert fail, the legacy columns must survive for a
	// retry on the next start.
	if err := db.Migrator().DropTable(&domain.FlashDeal{}); err != nil {
		t.Fatal(err)
	}
	a.transferLegacyFlashDeals()

	var after domain.PhoneVariant
	if err := db.First(&after, variant.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !after.IsFlashDeal || after.SalePrice == nil {
		t.Fatal("legacy columns cleared despite failed transfer")
	}

	// Once the store is healthy again the retry completes and clears.
	if err := db.AutoMigrate(&domain.FlashDeal{}); err != nil {
		t.Fatal(err)
	}
	a.transferLegacyFlashDeals()
	if err := db.First(&after, variant.ID).Error; err != nil {
		t.Fatal(err)
	}
	if after.IsFlashDeal {
		t.Fatal("legacy flag not cleared after successful retry")
	}
	var count int64
	db.Model(&domain.FlashDeal{}).Count(&count)
	if count != 1 {
		t.Fatalf("deals = %d, want 1", count)
	}
}
