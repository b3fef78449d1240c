package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phonemart/phonemart/config"
	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/promotions"
	"github.com/phonemart/phonemart/internal/webserver"
)

type testApp struct {
	db       *gorm.DB
	deals    *promotions.FlashDealService
	products *catalog.ProductService
}

func (a *testApp) DB() *gorm.DB { return a.db }

func (a *testApp) Config() *config.AppConfig { return config.DefaultAppConfig }

func (a *testApp) GetDealService() interface{} { return a.deals }

func (a *testApp) GetHomepageService() interface{} { return nil }

func (a *testApp) GetProductService() interface{} { return a.products }

func (a *testApp) GetSettings() interface{} { return nil }

func newTestApp(t *testing.T) *testApp {
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
	deals := promotions.NewFlashDealService(promotions.NewGormDealStore(db), nil)
	products := catalog.NewProductService(catalog.NewGormProductStore(db))
	return &testApp{db: db, deals: deals, products: products}
}

func testRequest(t *testing.T, app *testApp, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = webserver.NewCustomValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(webserver.ContextDBKey, app.db)
	c.Set(webserver.ContextAppKey, app)
	return c, rec
}

func seedVariant(t *testing.T, app *testApp, id int64) {
	t.Helper()
	phone := &domain.Phone{ID: id, Name: "Galaxy S24", Slug: "galaxy-s24", Brand: "Samsung", IsActive: true}
	if err := app.db.Create(phone).Error; err != nil {
		t.Fatalf("seed phone: %v", err)
	}
	variant := &domain.PhoneVariant{
		ID:       id,
		PhoneID:  id,
		SKU:      "S24-BLK-256",
		Color:    "Black",
		Storage:  "256GB",
		Price:    decimal.NewFromInt(800),
		Stock:    5,
		IsActive: true,
	}
	if err := app.db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
}

func TestCreateDealFromProductMissing(t *testing.T) {
	app := newTestApp(t)
	body := `{"product_type":"phone","product_id":"12345","discount_percentage":"10"}`
	c, rec := testRequest(t, app, http.MethodPost, "/api/v1/promotions/deals/from-product", body)

	if err := createDealFromProduct(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBatchCreateDealsSkipsMissingProducts(t *testing.T) {
	app := newTestApp(t)
	seedVariant(t, app, 42)

	body := `{"product_type":"phone","product_ids":[42,12345],"discount_percentage":"10"}`
	c, rec := testRequest(t, app, http.MethodPost, "/api/v1/promotions/deals/batch", body)

	if err := batchCreateDeals(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var rsp struct {
		Code int `json:"code"`
		Data struct {
			Requested int `json:"requested"`
			Skipped   int `json:"skipped"`
			Created   int `json:"created"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rsp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rsp.Data.Requested != 2 || rsp.Data.Skipped != 1 || rsp.Data.Created != 1 {
		t.Fatalf("requested/skipped/created = %d/%d/%d, want 2/1/1",
			rsp.Data.Requested, rsp.Data.Skipped, rsp.Data.Created)
	}

	var count int64
	app.db.Model(&domain.FlashDeal{}).Count(&count)
	if count != 1 {
		t.Fatalf("deal rows = %d, want 1", count)
	}
}

func testDeal(name string) *domain.FlashDeal {
	pct := decimal.NewFromInt(20)
	return &domain.FlashDeal{
		Name:               name,
		ProductType:        domain.ProductTypePhone,
		OriginalPrice:      decimal.NewFromInt(100),
		DiscountPercentage: &pct,
		StartDate:          time.Now().Add(-time.Hour),
		EndDate:            time.Now().Add(24 * time.Hour),
		IsActive:           true,
	}
}

func TestUpdateDealDuplicateSlugConflict(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	first := testDeal("Spring Sale")
	if err := app.deals.SaveDeal(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := testDeal("Autumn Sale")
	if err := app.deals.SaveDeal(ctx, second); err != nil {
		t.Fatal(err)
	}

	// Renaming the second deal's slug onto the first one must surface as
	// a conflict, not a generic server error.
	body := `{"name":"Autumn Sale","product_type":"phone","original_price":"100",` +
		`"discount_percentage":"20","start_date":"2026-01-01","end_date":"2026-12-31",` +
		`"slug":"spring-sale"}`
	c, rec := testRequest(t, app, http.MethodPut, "/api/v1/promotions/deals/:id", body)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(second.ID, 10))

	if err := updateDeal(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", rec.Code, rec.Body.String())
	}
}
