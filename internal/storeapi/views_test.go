package storeapi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phonemart/phonemart/internal/domain"
)

func TestAbsoluteURL(t *testing.T) {
	cases := []struct {
		base string
		path string
		want string
	}{
		{"http://cdn.local/media", "phones/x.jpg", "http://cdn.local/media/phones/x.jpg"},
		{"http://cdn.local/media/", "/phones/x.jpg", "http://cdn.local/media/phones/x.jpg"},
		{"http://cdn.local/media", "https://elsewhere/x.jpg", "https://elsewhere/x.jpg"},
		{"http://cdn.local/media", "", ""},
	}
	for _, c := range cases {
		if got := absoluteURL(c.base, c.path); got != c.want {
			t.Fatalf("absoluteURL(%q, %q) = %q, want %q", c.base, c.path, got, c.want)
		}
	}
}

func TestNewDealView(t *testing.T) {
	pct := decimal.NewFromInt(20)
	sale := decimal.NewFromInt(80)
	deal := domain.FlashDeal{
		ID:                 12345,
		Name:               "View Deal",
		ProductType:        domain.ProductTypePhone,
		OriginalPrice:      decimal.NewFromInt(100),
		DiscountPercentage: &pct,
		SalePrice:          &sale,
		Image:              "deals/v.jpg",
		StartDate:          time.Now().Add(-time.Hour),
		EndDate:            time.Now().Add(time.Hour),
		IsActive:           true,
		Slug:               "view-deal",
	}

	view := newDealView(&deal, "http://cdn.local/media")
	if view.ID != "12345" {
		t.Fatalf("id = %q", view.ID)
	}
	if view.SalePrice != "80.00" || view.OriginalPrice != "100.00" {
		t.Fatalf("prices = %q / %q", view.OriginalPrice, view.SalePrice)
	}
	if view.Savings != "20.00" {
		t.Fatalf("savings = %q, want 20.00", view.Savings)
	}
	if view.State != domain.DealRunning {
		t.Fatalf("state = %q, want running", view.State)
	}
	if view.Image != "http://cdn.local/media/deals/v.jpg" {
		t.Fatalf("image = %q", view.Image)
	}
}
