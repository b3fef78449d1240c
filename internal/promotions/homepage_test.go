package promotions

import (
	"context"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/domain"
)

func testHomepage(t *testing.T) (*HomepageService, *FlashDealService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	deals := NewFlashDealService(NewGormDealStore(db), nil)
	products := catalog.NewProductService(catalog.NewGormProductStore(db))
	cache := NewResultCache(time.Minute, nil)
	t.Cleanup(cache.Stop)
	return NewHomepageService(deals, products, cache, 2), deals, db
}

func TestHomepageAggregatesSections(t *testing.T) {
	svc, deals, db := testHomepage(t)
	ctx := context.Background()

	deal := baseDeal("Homepage Deal")
	if err := deals.SaveDeal(ctx, deal); err != nil {
		t.Fatal(err)
	}

	acc := domain.Accessory{
		ID:           7001,
		Name:         "Clear Case",
		Slug:         "clear-case",
		Price:        decimal.NewFromInt(19),
		IsActive:     true,
		IsNewArrival: true,
	}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatal(err)
	}

	data, err := svc.Homepage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.FlashDeals) != 1 {
		t.Fatalf("flash deals = %d, want 1", len(data.FlashDeals))
	}
	if len(data.NewArrivals.Accessories) != 1 {
		t.Fatalf("new arrivals = %d, want 1", len(data.NewArrivals.Accessories))
	}
	// Empty sections must not error out the page.
	if data.BestSellers == nil || len(data.BestSellers.Phones) != 0 {
		t.Fatal("best sellers should be present and empty")
	}
}

// The homepage deal list is capped; extra running deals are cut off.
func TestHomepageDealLimit(t *testing.T) {
	svc, deals, _ := testHomepage(t)
	ctx := context.Background()

	for _, name := range []string{"Deal One", "Deal Two", "Deal Three"} {
		if err := deals.SaveDeal(ctx, baseDeal(name)); err != nil {
			t.Fatal(err)
		}
	}

	data, err := svc.Homepage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.FlashDeals) != 2 {
		t.Fatalf("flash deals = %d, want the limit of 2", len(data.FlashDeals))
	}
}

func TestHomepageServesFromCache(t *testing.T) {
	svc, deals, db := testHomepage(t)
	ctx := context.Background()

	if err := deals.SaveDeal(ctx, baseDeal("Cached Deal")); err != nil {
		t.Fatal(err)
	}
	first, err := svc.Homepage(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Bypass the service so the cache cannot know about the change.
	if err := db.Delete(&domain.FlashDeal{}, first.FlashDeals[0].ID).Error; err != nil {
		t.Fatal(err)
	}

	second, err := svc.Homepage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.FlashDeals) != 1 {
		t.Fatal("expected the cached aggregate, not a fresh query")
	}
}

// A deal write published on the bus invalidates the cached listings, so
// the next read sees the new deal immediately.
func TestActiveDealsCacheFlushedByWrite(t *testing.T) {
	db := testDB(t)
	bus := evbus.New()
	deals := NewFlashDealService(NewGormDealStore(db), bus)
	products := catalog.NewProductService(catalog.NewGormProductStore(db))
	cache := NewResultCache(time.Minute, bus)
	t.Cleanup(cache.Stop)
	svc := NewHomepageService(deals, products, cache, 10)
	ctx := context.Background()

	if err := deals.SaveDeal(ctx, baseDeal("First Deal")); err != nil {
		t.Fatal(err)
	}
	got, err := svc.ActiveDeals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("deals = %d, want 1", len(got))
	}

	if err := deals.SaveDeal(ctx, baseDeal("Second Deal")); err != nil {
		t.Fatal(err)
	}
	bus.WaitAsync()

	got, err = svc.ActiveDeals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("deals = %d after write, want 2", len(got))
	}
}

// The full flash-deals listing ignores the homepage cap; only the
// homepage aggregate is limited.
func TestActiveDealsListingNotCapped(t *testing.T) {
	svc, deals, _ := testHomepage(t)
	ctx := context.Background()

	for _, name := range []string{"Deal One", "Deal Two", "Deal Three"} {
		if err := deals.SaveDeal(ctx, baseDeal(name)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := svc.ActiveDeals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("active deals = %d, want all 3", len(list))
	}
}
