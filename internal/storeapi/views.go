package storeapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/promotions"
)

// dealView is the public shape of a flash deal. Prices travel as fixed
// two-decimal strings so clients never do float math on money.
type dealView struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	ProductType        string `json:"product_type"`
	OriginalPrice      string `json:"original_price"`
	DiscountPercentage string `json:"discount_percentage,omitempty"`
	SalePrice          string `json:"sale_price,omitempty"`
	Savings            string `json:"savings,omitempty"`
	Image              string `json:"image"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	State              string `json:"state"`
	Stock              int    `json:"stock"`
	Slug               string `json:"slug"`
}

type productView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`
	Storage  string `json:"storage,omitempty"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Slug     string `json:"slug,omitempty"`
	SKU      string `json:"sku,omitempty"`
	Stock    int    `json:"stock"`
}

type groupView struct {
	Phones      []productView `json:"phones"`
	Accessories []productView `json:"accessories"`
}

type homepageView struct {
	FlashDeals  []dealView `json:"flash_deals"`
	NewArrivals groupView  `json:"new_arrivals"`
	BestSellers groupView  `json:"best_sellers"`
}

type phoneDetailView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Brand       string        `json:"brand"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	Slug        string        `json:"slug"`
	Variants    []productView `json:"variants"`
	Related     []productView `json:"related"`
}

type accessoryDetailView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Price       string        `json:"price"`
	Image       string        `json:"image"`
	Slug        string        `json:"slug"`
	Stock       int           `json:"stock"`
	Related     []productView `json:"related"`
}

// absoluteURL turns a stored media path into a client-usable URL.
// Already-absolute URLs pass through untouched.
func absoluteURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func newDealView(d *domain.FlashDeal, mediaBase string) dealView {
	view := dealView{
		ID:            strconv.FormatInt(d.ID, 10),
		Name:          d.Name,
		Description:   d.Description,
		ProductType:   d.ProductType,
		OriginalPrice: d.OriginalPrice.StringFixed(2),
		Image:         absoluteURL(mediaBase, d.Image),
		StartDate:     d.StartDate.Format(time.RFC3339),
		EndDate:       d.EndDate.Format(time.RFC3339),
		State:         d.TimeState(time.Now()),
		Stock:         d.Stock,
		Slug:          d.Slug,
	}
	if d.DiscountPercentage != nil {
		view.DiscountPercentage = d.DiscountPercentage.StringFixed(2)
	}
	if d.SalePrice != nil {
		view.SalePrice = d.SalePrice.StringFixed(2)
	}
	if _, savings, ok := promotions.ApplyDiscount(&d.OriginalPrice, d.DiscountPercentage); ok {
		view.Savings = savings.StringFixed(2)
	}
	return view
}

func newDealViews(deals []domain.FlashDeal, mediaBase string) []dealView {
	views := make([]dealView, 0, len(deals))
	for i := range deals {
		views = append(views, newDealView(&deals[i], mediaBase))
	}
	return views
}

func newVariantView(v *domain.PhoneVariant, mediaBase string) productView {
	return productView{
		ID:      strconv.FormatInt(v.ID, 10),
		Name:    v.DealName(),
		Brand:   v.Phone.Brand,
		Color:   v.Color,
		Storage: v.Storage,
		Price:   v.Price.StringFixed(2),
		Image:   absoluteURL(mediaBase, v.Image),
		Slug:    v.Phone.Slug,
		SKU:     v.SKU,
		Stock:   v.Stock,
	}
}

func newAccessoryView(a *domain.Accessory, mediaBase string) productView {
	return productView{
		ID:       strconv.FormatInt(a.ID, 10),
		Name:     a.Name,
		Category: a.Category,
		Price:    a.Price.StringFixed(2),
		Image:    absoluteURL(mediaBase, a.Image),
		Slug:     a.Slug,
		Stock:    a.Stock,
	}
}

func newGroupView(group *catalog.ProductGroup, mediaBase string) groupView {
	view := groupView{
		Phones:      make([]productView, 0, len(group.Phones)),
		Accessories: make([]productView, 0, len(group.Accessories)),
	}
	for i := range group.Phones {
		view.Phones = append(view.Phones, newVariantView(&group.Phones[i], mediaBase))
	}
	for i := range group.Accessories {
		view.Accessories = append(view.Accessories, newAccessoryView(&group.Accessories[i], mediaBase))
	}
	return view
}

func newHomepageView(data *promotions.HomepageData, mediaBase string) homepageView {
	view := homepageView{
		FlashDeals: newDealViews(data.FlashDeals, mediaBase),
	}
	if data.NewArrivals != nil {
		view.NewArrivals = newGroupView(data.NewArrivals, mediaBase)
	}
	if data.BestSellers != nil {
		view.BestSellers = newGroupView(data.BestSellers, mediaBase)
	}
	return view
}

func newPhoneDetailView(detail *catalog.PhoneDetail, mediaBase string) phoneDetailView {
	view := phoneDetailView{
		ID:          strconv.FormatInt(detail.Phone.ID, 10),
		Name:        detail.Phone.Name,
		Brand:       detail.Phone.Brand,
		Description: detail.Phone.Description,
		Image:       absoluteURL(mediaBase, detail.Phone.Image),
		Slug:        detail.Phone.Slug,
		Variants:    make([]productView, 0, len(detail.Variants)),
		Related:     make([]productView, 0, len(detail.Related)),
	}
	for i := range detail.Variants {
		view.Variants = append(view.Variants, newVariantView(&detail.Variants[i], mediaBase))
	}
	for i := range detail.Related {
		view.Related = append(view.Related, newVariantView(&detail.Related[i], mediaBase))
	}
	return view
}

func newAccessoryDetailView(detail *catalog.AccessoryDetail, mediaBase string) accessoryDetailView {
	view := accessoryDetailView{
		ID:          strconv.FormatInt(detail.Accessory.ID, 10),
		Name:        detail.Accessory.Name,
		Category:    detail.Accessory.Category,
		Description: detail.Accessory.Description,
		Price:       detail.Accessory.Price.StringFixed(2),
		Image:       absoluteURL(mediaBase, detail.Accessory.Image),
		Slug:        detail.Accessory.Slug,
		Stock:       detail.Accessory.Stock,
		Related:     make([]productView, 0, len(detail.Related)),
	}
	for i := range detail.Related {
		view.Related = append(view.Related, newAccessoryView(&detail.Related[i], mediaBase))
	}
	return view
}
