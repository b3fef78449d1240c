package promotions

import (
	"context"

	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultHomepageDealLimit caps how many running deals the homepage shows.
const DefaultHomepageDealLimit = 8

// HomepageData is what the storefront landing page renders. Any section
// may be empty, the page degrades instead of failing.
type HomepageData struct {
	FlashDeals  []domain.FlashDeal    `json:"flash_deals"`
	NewArrivals *catalog.ProductGroup `json:"new_arrivals"`
	BestSellers *catalog.ProductGroup `json:"best_sellers"`
}

// HomepageService composes deals and curated catalog groups, with a
// read-through cache in front of the whole aggregate.
type HomepageService struct {
	deals     *FlashDealService
	products  *catalog.ProductService
	cache     *ResultCache
	dealLimit int
}

func NewHomepageService(deals *FlashDealService, products *catalog.ProductService, cache *ResultCache, dealLimit int) *HomepageService {
	if dealLimit <= 0 {
		dealLimit = DefaultHomepageDealLimit
	}
	return &HomepageService{deals: deals, products: products, cache: cache, dealLimit: dealLimit}
}

// ActiveDeals returns every running deal, cached under CacheKeyFlashDeals.
// The homepage deal limit applies only to the homepage aggregate, not to
// this listing.
func (s *HomepageService) ActiveDeals(ctx context.Context) ([]domain.FlashDeal, error) {
	var cached []domain.FlashDeal
	if s.cache != nil && s.cache.Get(CacheKeyFlashDeals, &cached) {
		return cached, nil
	}
	deals, err := s.deals.ActiveDeals(ctx, 0)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(CacheKeyFlashDeals, deals)
	}
	return deals, nil
}

// Homepage assembles the landing page aggregate. The three sections load
// in parallel; a cached copy short-circuits everything.
func (s *HomepageService) Homepage(ctx context.Context) (*HomepageData, error) {
	var cached HomepageData
	if s.cache != nil && s.cache.Get(CacheKeyHomepageData, &cached) {
		return &cached, nil
	}

	data := &HomepageData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.FlashDeals, err = s.deals.ActiveDeals(gctx, s.dealLimit)
		return err
	})
	g.Go(func() error {
		var err error
		data.NewArrivals, err = s.products.NewArrivals(gctx, catalog.DefaultGroupLimit)
		return err
	})
	g.Go(func() error {
		var err error
		data.BestSellers, err = s.products.BestSellers(gctx, catalog.DefaultGroupLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(CacheKeyHomepageData, data)
	}
	return data, nil
}
