package promotions

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestSalePriceFromDiscount(t *testing.T) {
	cases := []struct {
		original string
		discount string
		want     string
	}{
		{"799.99", "25", "599.99"},
		{"100.00", "0", "100.00"},
		{"100.00", "100", "0.00"},
		{"10.00", "12.345", "8.77"},  // 8.7655 rounds up
		{"999.99", "33.33", "666.69"},
	}
	for _, c := range cases {
		original := dec(t, c.original)
		discount := dec(t, c.discount)
		got, ok := SalePriceFromDiscount(&original, &discount)
		if !ok {
			t.Fatalf("SalePriceFromDiscount(%s, %s) not ok", c.original, c.discount)
		}
		if got.StringFixed(2) != c.want {
			t.Fatalf("SalePriceFromDiscount(%s, %s) = %s, want %s",
				c.original, c.discount, got.StringFixed(2), c.want)
		}
	}
}

func TestSalePriceFromDiscountNil(t *testing.T) {
	original := dec(t, "100")
	if _, ok := SalePriceFromDiscount(&original, nil); ok {
		t.Fatal("expected not ok for nil discount")
	}
	discount := dec(t, "25")
	if _, ok := SalePriceFromDiscount(nil, &discount); ok {
		t.Fatal("expected not ok for nil original")
	}
}

func TestDiscountFromSale(t *testing.T) {
	cases := []struct {
		original string
		sale     string
		want     string
	}{
		{"100.00", "75.00", "25.00"},
		{"799.99", "599.99", "25.00"},
		{"100.00", "100.00", "0.00"},
	}
	for _, c := range cases {
		original := dec(t, c.original)
		sale := dec(t, c.sale)
		got, ok := DiscountFromSale(&original, &sale)
		if !ok {
			t.Fatalf("DiscountFromSale(%s, %s) not ok", c.original, c.sale)
		}
		if got.StringFixed(2) != c.want {
			t.Fatalf("DiscountFromSale(%s, %s) = %s, want %s",
				c.original, c.sale, got.StringFixed(2), c.want)
		}
	}
}

// A zero original price would divide by zero; the guard must refuse
// instead of panicking.
func TestDiscountFromSaleZeroOriginal(t *testing.T) {
	original := decimal.Zero
	sale := dec(t, "10")
	if _, ok := DiscountFromSale(&original, &sale); ok {
		t.Fatal("expected not ok for zero original price")
	}
}

func TestApplyDiscountSavings(t *testing.T) {
	original := dec(t, "500.00")
	discount := dec(t, "20")
	sale, savings, ok := ApplyDiscount(&original, &discount)
	if !ok {
		t.Fatal("ApplyDiscount not ok")
	}
	if sale.StringFixed(2) != "400.00" {
		t.Fatalf("sale = %s, want 400.00", sale.StringFixed(2))
	}
	if savings.StringFixed(2) != "100.00" {
		t.Fatalf("savings = %s, want 100.00", savings.StringFixed(2))
	}
}

// Deriving a sale price and converting it back should recover the
// discount within a cent's worth of rounding.
func TestPricingRoundTrip(t *testing.T) {
	original := dec(t, "649.00")
	discount := dec(t, "15")
	sale, ok := SalePriceFromDiscount(&original, &discount)
	if !ok {
		t.Fatal("forward derivation failed")
	}
	back, ok := DiscountFromSale(&original, &sale)
	if !ok {
		t.Fatal("reverse derivation failed")
	}
	diff := back.Sub(discount).Abs()
	if diff.GreaterThan(dec(t, "0.01")) {
		t.Fatalf("round trip drifted: started %s, got back %s", discount, back)
	}
}
