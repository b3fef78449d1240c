package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phonemart/phonemart/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) (domain.Phone, domain.PhoneVariant, domain.Accessory) {
	t.Helper()
	phone := domain.Phone{
		ID: 100, Name: "Pixel 9", Brand: "Google", Slug: "google-pixel-9", IsActive: true,
	}
	if err := db.Create(&phone).Error; err != nil {
		t.Fatal(err)
	}
	variant := domain.PhoneVariant{
		ID: 101, PhoneID: phone.ID, SKU: "PX9-BLK-128",
		Color: "Black", Storage: "128GB",
		Price: decimal.NewFromInt(699), IsActive: true, IsNewArrival: true,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatal(err)
	}
	acc := domain.Accessory{
		ID: 102, Name: "Pixel Buds", Slug: "pixel-buds",
		Price: decimal.NewFromInt(99), IsActive: true, IsBestSeller: true,
	}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatal(err)
	}
	return phone, variant, acc
}

func TestNewArrivalsFiltersFlags(t *testing.T) {
	db := testDB(t)
	_, _, _ = seedCatalog(t, db)

	// Inactive new arrival must stay hidden.
	hidden := domain.PhoneVariant{
		ID: 200, PhoneID: 100, SKU: "PX9-HID",
		Price: decimal.NewFromInt(1), IsActive: false, IsNewArrival: true,
	}
	if err := db.Create(&hidden).Error; err != nil {
		t.Fatal(err)
	}

	svc := NewProductService(NewGormProductStore(db))
	group, err := svc.NewArrivals(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(group.Phones) != 1 || group.Phones[0].SKU != "PX9-BLK-128" {
		t.Fatalf("phones = %v", group.Phones)
	}
	if len(group.Accessories) != 0 {
		t.Fatal("no accessory is flagged as new arrival")
	}
}

func TestBestSellers(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)

	svc := NewProductService(NewGormProductStore(db))
	group, err := svc.BestSellers(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(group.Accessories) != 1 || group.Accessories[0].Name != "Pixel Buds" {
		t.Fatalf("accessories = %v", group.Accessories)
	}
}

func TestPhoneBySlug(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)

	svc := NewProductService(NewGormProductStore(db))
	detail, err := svc.PhoneBySlug(context.Background(), "google-pixel-9")
	if err != nil {
		t.Fatal(err)
	}
	if detail == nil {
		t.Fatal("phone not found")
	}
	if len(detail.Variants) != 1 {
		t.Fatalf("variants = %d, want 1", len(detail.Variants))
	}

	missing, err := svc.PhoneBySlug(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown slug")
	}
}

// Deleting a product clears the weak reference on deals copied from it;
// the deal itself survives.
func TestDeleteVariantClearsDealReference(t *testing.T) {
	db := testDB(t)
	_, variant, acc := seedCatalog(t, db)

	variantID := variant.ID
	accID := acc.ID
	deal := domain.FlashDeal{
		Name:             "Pixel Deal",
		ProductType:      domain.ProductTypePhone,
		OriginalPrice:    decimal.NewFromInt(699),
		StartDate:        time.Now().Add(-time.Hour),
		EndDate:          time.Now().Add(time.Hour),
		IsActive:         true,
		Slug:             "pixel-deal",
		ReferencePhoneID: &variantID,
	}
	if err := db.Create(&deal).Error; err != nil {
		t.Fatal(err)
	}
	accDeal := domain.FlashDeal{
		Name:                 "Buds Deal",
		ProductType:          domain.ProductTypeAccessory,
		OriginalPrice:        decimal.NewFromInt(99),
		StartDate:            time.Now().Add(-time.Hour),
		EndDate:              time.Now().Add(time.Hour),
		IsActive:             true,
		Slug:                 "buds-deal",
		ReferenceAccessoryID: &accID,
	}
	if err := db.Create(&accDeal).Error; err != nil {
		t.Fatal(err)
	}

	svc := NewProductService(NewGormProductStore(db))
	if err := svc.DeleteVariant(context.Background(), variantID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteAccessory(context.Background(), accID); err != nil {
		t.Fatal(err)
	}

	var got domain.FlashDeal
	if err := db.First(&got, deal.ID).Error; err != nil {
		t.Fatalf("deal must survive product deletion: %v", err)
	}
	if got.ReferencePhoneID != nil {
		t.Fatal("phone reference not cleared")
	}

	var gotAcc domain.FlashDeal
	if err := db.First(&gotAcc, accDeal.ID).Error; err != nil {
		t.Fatalf("deal must survive product deletion: %v", err)
	}
	if gotAcc.ReferenceAccessoryID != nil {
		t.Fatal("accessory reference not cleared")
	}

	var count int64
	db.Model(&domain.PhoneVariant{}).Where("id = ?", variantID).Count(&count)
	if count != 0 {
		t.Fatal("variant not deleted")
	}
}
