package promotions

import (
	"context"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/pkg/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrUnsupportedProductType indicates a deal source that is neither a
// phone variant nor an accessory.
var ErrUnsupportedProductType = errors.New("unsupported product type")

// TopicDealChanged is published after any successful deal write so cache
// layers can invalidate.
const TopicDealChanged = "promotions:deal.changed"

// DealSource is the capability both sellable product kinds implement so a
// flash deal can be copied from them without runtime type inspection.
type DealSource interface {
	DealName() string
	DealDescription() string
	DealPrice() decimal.Decimal
	DealStock() int
	DealImage() string
	DealProductType() string
	ProductID() int64
}

// FlashDealService owns the validate-then-derive-then-persist pipeline and
// the lifecycle queries. Nothing else writes flash deals.
type FlashDealService struct {
	store DealStore
	bus   evbus.Bus
}

// NewFlashDealService creates the service. bus may be nil.
func NewFlashDealService(store DealStore, bus evbus.Bus) *FlashDealService {
	return &FlashDealService{store: store, bus: bus}
}

// Derive returns a copy of deal with any missing derived price field
// filled in via the pricing calculator. Pure: the input is not mutated and
// no storage is touched, so it is testable in isolation.
func Derive(deal domain.FlashDeal) domain.FlashDeal {
	switch {
	case deal.SalePrice == nil && deal.DiscountPercentage != nil:
		if sale, ok := SalePriceFromDiscount(&deal.OriginalPrice, deal.DiscountPercentage); ok {
			deal.SalePrice = &sale
		}
	case deal.DiscountPercentage == nil && deal.SalePrice != nil:
		if pct, ok := DiscountFromSale(&deal.OriginalPrice, deal.SalePrice); ok {
			deal.DiscountPercentage = &pct
		}
	}
	return deal
}

// SaveDeal runs the full persistence pipeline: validate, derive missing
// price field, assign a slug when blank, then create or update inside one
// transaction. On a concurrent duplicate-slug rejection the insert is
// retried with the next suffix. The caller's deal is updated with the
// persisted state on success.
func (s *FlashDealService) SaveDeal(ctx context.Context, deal *domain.FlashDeal) error {
	if err := deal.Validate(); err != nil {
		return err
	}

	derived := Derive(*deal)

	base := derived.Slug
	if derived.Slug == "" {
		slug, err := UniqueSlug(ctx, derived.Name, s.store.SlugExists)
		if err != nil {
			return err
		}
		derived.Slug = slug
		if base = common.Slugify(derived.Name); base == "" {
			base = "deal"
		}
	}

	err := s.store.Transaction(ctx, func(tx DealStore) error {
		if derived.ID == 0 {
			return tx.Create(ctx, &derived)
		}
		return tx.Update(ctx, &derived)
	})

	// The probe loop is best effort only; the unique index decides. Walk
	// the suffix sequence until the insert is accepted.
	for attempt := 0; derived.ID == 0 && IsDuplicateSlug(err) && attempt < maxSlugAttempts; attempt++ {
		derived.Slug = NextSlug(base, derived.Slug)
		err = s.store.Transaction(ctx, func(tx DealStore) error {
			return tx.Create(ctx, &derived)
		})
	}
	if err != nil {
		return errors.Wrap(err, "save flash deal")
	}

	*deal = derived
	s.notifyChanged()
	return nil
}

// DeleteDeal removes a deal by ID.
func (s *FlashDealService) DeleteDeal(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

// ActiveDeals returns deals that are live right now: enabled and inside
// their time window.
func (s *FlashDealService) ActiveDeals(ctx context.Context, limit int) ([]domain.FlashDeal, error) {
	return s.store.ActiveDeals(ctx, limit)
}

// DealBySlug returns the active deal with the given slug, or (nil, nil)
// when absent or disabled.
func (s *FlashDealService) DealBySlug(ctx context.Context, slug string) (*domain.FlashDeal, error) {
	return s.store.GetBySlug(ctx, slug)
}

// UpcomingDeals returns enabled deals that have not started yet, ordered
// by start date ascending.
func (s *FlashDealService) UpcomingDeals(ctx context.Context, limit int) ([]domain.FlashDeal, error) {
	return s.store.UpcomingDeals(ctx, limit)
}

// DealByID returns a deal regardless of state, for the admin API.
func (s *FlashDealService) DealByID(ctx context.Context, id int64) (*domain.FlashDeal, error) {
	return s.store.GetByID(ctx, id)
}

// ListDeals pages through all deals for the admin API.
func (s *FlashDealService) ListDeals(ctx context.Context, filter map[string]interface{}, page, pageSize int) ([]domain.FlashDeal, int64, error) {
	return s.store.List(ctx, filter, page, pageSize)
}

// CreateFromDiscount builds a deal from a catalog product and a discount
// percentage; the sale price is derived. One transaction per deal.
func (s *FlashDealService) CreateFromDiscount(ctx context.Context, src DealSource, discountPct decimal.Decimal,
	start, end time.Time, name, description string) (*domain.FlashDeal, error) {
	deal, err := s.dealFromSource(src, start, end, name, description)
	if err != nil {
		return nil, err
	}
	deal.DiscountPercentage = &discountPct
	if err := s.SaveDeal(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// CreateFromSalePrice builds a deal from a catalog product and an explicit
// sale price; the discount percentage is derived.
func (s *FlashDealService) CreateFromSalePrice(ctx context.Context, src DealSource, salePrice decimal.Decimal,
	start, end time.Time, name, description string) (*domain.FlashDeal, error) {
	deal, err := s.dealFromSource(src, start, end, name, description)
	if err != nil {
		return nil, err
	}
	deal.SalePrice = &salePrice
	if err := s.SaveDeal(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// BatchCreate applies CreateFromDiscount to each product independently.
// Deals are independent entities, so a failure on one product does not
// roll back the ones already created; callers compare result length to
// input length to detect partial failure.
func (s *FlashDealService) BatchCreate(ctx context.Context, srcs []DealSource, discountPct decimal.Decimal,
	start, end time.Time) []*domain.FlashDeal {
	deals := make([]*domain.FlashDeal, 0, len(srcs))
	for _, src := range srcs {
		deal, err := s.CreateFromDiscount(ctx, src, discountPct, start, end, "", "")
		if err != nil {
			zap.L().Warn("batch deal creation skipped product",
				zap.String("error", err.Error()))
			continue
		}
		deals = append(deals, deal)
	}
	return deals
}

func (s *FlashDealService) dealFromSource(src DealSource, start, end time.Time, name, description string) (*domain.FlashDeal, error) {
	deal := &domain.FlashDeal{
		OriginalPrice: src.DealPrice(),
		Stock:         src.DealStock(),
		Image:         src.DealImage(),
		StartDate:     start,
		EndDate:       end,
		IsActive:      true,
	}

	id := src.ProductID()
	switch src.DealProductType() {
	case domain.ProductTypePhone:
		deal.ProductType = domain.ProductTypePhone
		deal.ReferencePhoneID = &id
	case domain.ProductTypeAccessory:
		deal.ProductType = domain.ProductTypeAccessory
		deal.ReferenceAccessoryID = &id
	default:
		return nil, errors.Wrapf(ErrUnsupportedProductType, "%q", src.DealProductType())
	}

	deal.Name = name
	if deal.Name == "" {
		deal.Name = src.DealName() + " Flash Deal"
	}
	deal.Description = description
	if deal.Description == "" {
		deal.Description = src.DealDescription()
	}
	return deal, nil
}

func (s *FlashDealService) notifyChanged() {
	if s.bus != nil {
		s.bus.Publish(TopicDealChanged)
	}
}
