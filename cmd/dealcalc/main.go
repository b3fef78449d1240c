// dealcalc computes flash deal pricing for a catalog product and can
// optionally create the deal, mirroring what the admin API does but
// usable from cron or a shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/phonemart/phonemart/config"
	"github.com/phonemart/phonemart/internal/app"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/promotions"
)

var (
	conffile    = flag.String("c", "", "config yaml file")
	productType = flag.String("product-type", "", "phone or accessory")
	productID   = flag.Int64("product-id", 0, "catalog product id")
	discount    = flag.String("discount", "", "discount percentage, e.g. 25")
	salePrice   = flag.String("sale-price", "", "explicit sale price, e.g. 599.99")
	createDeal  = flag.Bool("create-deal", false, "persist the deal instead of just printing")
	daysActive  = flag.Int("days-active", 7, "deal duration in days when creating")
	startDate   = flag.String("start", "", "deal start (default now)")
	name        = flag.String("name", "", "deal name override")
)

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	if *productType != domain.ProductTypePhone && *productType != domain.ProductTypeAccessory {
		fatalf("product-type must be phone or accessory")
	}
	if *productID == 0 {
		fatalf("product-id is required")
	}
	if (*discount == "") == (*salePrice == "") {
		fatalf("provide exactly one of -discount or -sale-price")
	}

	cfg := config.LoadConfig(*conffile)
	cfg.Logger.FileEnable = false
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	ctx := context.Background()
	deals := application.GetDealService().(*promotions.FlashDealService)

	src, err := loadSource(ctx, application, *productType, *productID)
	if err != nil {
		fatalf("failed to load product: %v", err)
	}

	original := src.DealPrice()
	var pct, sale decimal.Decimal
	if *discount != "" {
		pct, err = decimal.NewFromString(*discount)
		if err != nil {
			fatalf("invalid discount: %v", err)
		}
		var ok bool
		sale, ok = promotions.SalePriceFromDiscount(&original, &pct)
		if !ok {
			fatalf("could not derive sale price")
		}
	} else {
		sale, err = decimal.NewFromString(*salePrice)
		if err != nil {
			fatalf("invalid sale price: %v", err)
		}
		var ok bool
		pct, ok = promotions.DiscountFromSale(&original, &sale)
		if !ok {
			fatalf("could not derive discount (original price is zero?)")
		}
	}

	fmt.Printf("product:   %s\n", src.DealName())
	fmt.Printf("original:  %s\n", original.StringFixed(2))
	fmt.Printf("discount:  %s%%\n", pct.StringFixed(2))
	fmt.Printf("sale:      %s\n", sale.StringFixed(2))
	fmt.Printf("savings:   %s\n", original.Sub(sale).StringFixed(2))

	if !*createDeal {
		return
	}

	start := time.Now()
	if *startDate != "" {
		start, err = dateparse.ParseAny(*startDate)
		if err != nil {
			fatalf("invalid start date: %v", err)
		}
	}
	end := start.AddDate(0, 0, *daysActive)

	var deal *domain.FlashDeal
	if *discount != "" {
		deal, err = deals.CreateFromDiscount(ctx, src, pct, start, end, *name, "")
	} else {
		deal, err = deals.CreateFromSalePrice(ctx, src, sale, start, end, *name, "")
	}
	if err != nil {
		fatalf("failed to create deal: %v", err)
	}
	fmt.Printf("created deal %d slug=%s window=[%s, %s)\n",
		deal.ID, deal.Slug, deal.StartDate.Format(time.RFC3339), deal.EndDate.Format(time.RFC3339))
}

func loadSource(ctx context.Context, application *app.Application, productType string, id int64) (promotions.DealSource, error) {
	db := application.DB()
	switch productType {
	case domain.ProductTypePhone:
		var v domain.PhoneVariant
		if err := db.WithContext(ctx).Preload("Phone").First(&v, id).Error; err != nil {
			return nil, err
		}
		return &v, nil
	default:
		var a domain.Accessory
		if err := db.WithContext(ctx).First(&a, id).Error; err != nil {
			return nil, err
		}
		return &a, nil
	}
}
