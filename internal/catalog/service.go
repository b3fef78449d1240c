package catalog

import (
	"context"

	"github.com/phonemart/phonemart/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultGroupLimit caps how many products a curated group returns.
const DefaultGroupLimit = 8

// ProductGroup is a curated slice of the catalog, split by product kind.
type ProductGroup struct {
	Phones      []domain.PhoneVariant `json:"phones"`
	Accessories []domain.Accessory    `json:"accessories"`
}

// PhoneDetail is a phone page: the phone, its purchasable variants and a
// short list of other phones from the same brand.
type PhoneDetail struct {
	Phone    domain.Phone          `json:"phone"`
	Variants []domain.PhoneVariant `json:"variants"`
	Related  []domain.PhoneVariant `json:"related"`
}

// AccessoryDetail is an accessory page with suggestions.
type AccessoryDetail struct {
	Accessory domain.Accessory   `json:"accessory"`
	Related   []domain.Accessory `json:"related"`
}

// ProductService answers storefront catalog queries.
type ProductService struct {
	store ProductStore
}

func NewProductService(store ProductStore) *ProductService {
	return &ProductService{store: store}
}

func (s *ProductService) Store() ProductStore {
	return s.store
}

// NewArrivals returns the flagged new-arrival products, both kinds limited
// independently. Empty groups are fine.
func (s *ProductService) NewArrivals(ctx context.Context, limit int) (*ProductGroup, error) {
	if limit <= 0 {
		limit = DefaultGroupLimit
	}
	group := &ProductGroup{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group.Phones, err = s.store.NewArrivalPhones(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		group.Accessories, err = s.store.NewArrivalAccessories(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return group, nil
}

// BestSellers returns the flagged best-seller products.
func (s *ProductService) BestSellers(ctx context.Context, limit int) (*ProductGroup, error) {
	if limit <= 0 {
		limit = DefaultGroupLimit
	}
	group := &ProductGroup{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group.Phones, err = s.store.BestSellerPhones(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		group.Accessories, err = s.store.BestSellerAccessories(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return group, nil
}

// PhoneBySlug loads a phone page. Returns (nil, nil) when the slug does
// not match an active phone.
func (s *ProductService) PhoneBySlug(ctx context.Context, slug string) (*PhoneDetail, error) {
	phone, err := s.store.PhoneBySlug(ctx, slug)
	if err != nil || phone == nil {
		return nil, err
	}
	variants, err := s.store.VariantsByPhone(ctx, phone.ID)
	if err != nil {
		return nil, err
	}
	related, err := s.store.RelatedPhoneVariants(ctx, phone.Brand, phone.ID, 4)
	if err != nil {
		return nil, err
	}
	return &PhoneDetail{Phone: *phone, Variants: variants, Related: related}, nil
}

// AccessoryBySlug loads an accessory page. Returns (nil, nil) on miss.
func (s *ProductService) AccessoryBySlug(ctx context.Context, slug string) (*AccessoryDetail, error) {
	acc, err := s.store.AccessoryBySlug(ctx, slug)
	if err != nil || acc == nil {
		return nil, err
	}
	related, err := s.store.RelatedAccessories(ctx, acc.ID, 4)
	if err != nil {
		return nil, err
	}
	return &AccessoryDetail{Accessory: *acc, Related: related}, nil
}

// VariantByID and AccessoryByID expose single-row lookups for the deal
// creation flow, which copies product fields into a new deal.
func (s *ProductService) VariantByID(ctx context.Context, id int64) (*domain.PhoneVariant, error) {
	return s.store.VariantByID(ctx, id)
}

func (s *ProductService) AccessoryByID(ctx context.Context, id int64) (*domain.Accessory, error) {
	return s.store.AccessoryByID(ctx, id)
}

// DeleteVariant and DeleteAccessory remove products and detach any deals
// that still point back at them.
func (s *ProductService) DeleteVariant(ctx context.Context, id int64) error {
	return s.store.DeleteVariant(ctx, id)
}

func (s *ProductService) DeleteAccessory(ctx context.Context, id int64) error {
	return s.store.DeleteAccessory(ctx, id)
}
