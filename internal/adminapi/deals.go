package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/promotions"
	"github.com/phonemart/phonemart/internal/webserver"
)

type dealPayload struct {
	Name               string  `json:"name" validate:"omitempty,max=200"`
	Description        string  `json:"description" validate:"omitempty,max=5000"`
	ProductType        string  `json:"product_type" validate:"required,oneof=phone accessory"`
	OriginalPrice      string  `json:"original_price" validate:"required"`
	DiscountPercentage *string `json:"discount_percentage"`
	SalePrice          *string `json:"sale_price"`
	Image              string  `json:"image" validate:"omitempty,max=1024"`
	StartDate          string  `json:"start_date" validate:"required"`
	EndDate            string  `json:"end_date" validate:"required"`
	IsActive           *bool   `json:"is_active"`
	Stock              int     `json:"stock" validate:"omitempty,min=0"`
	Slug               string  `json:"slug" validate:"omitempty,max=255"`
	ReferencePhoneID   *int64  `json:"reference_phone,string"`
	ReferenceAccessory *int64  `json:"reference_accessory,string"`
}

type dealFromProductPayload struct {
	ProductType        string  `json:"product_type" validate:"required,oneof=phone accessory"`
	ProductID          int64   `json:"product_id,string" validate:"required"`
	DiscountPercentage *string `json:"discount_percentage"`
	SalePrice          *string `json:"sale_price"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	DaysActive         int     `json:"days_active" validate:"omitempty,min=1,max=365"`
	Name               string  `json:"name" validate:"omitempty,max=200"`
	Description        string  `json:"description" validate:"omitempty,max=5000"`
}

type dealBatchPayload struct {
	ProductType        string  `json:"product_type" validate:"required,oneof=phone accessory"`
	ProductIDs         []int64 `json:"product_ids" validate:"required,min=1,max=100"`
	DiscountPercentage string  `json:"discount_percentage" validate:"required"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	DaysActive         int     `json:"days_active" validate:"omitempty,min=1,max=365"`
}

// registerDealRoutes registers flash deal admin routes
func registerDealRoutes() {
	webserver.ApiGET("/promotions/deals", listDeals)
	webserver.ApiGET("/promotions/deals/export", exportDeals)
	webserver.ApiGET("/promotions/deals/:id", getDeal)
	webserver.ApiPOST("/promotions/deals", createDeal)
	webserver.ApiPOST("/promotions/deals/from-product", createDealFromProduct)
	webserver.ApiPOST("/promotions/deals/batch", batchCreateDeals)
	webserver.ApiPUT("/promotions/deals/:id", updateDeal)
	webserver.ApiDELETE("/promotions/deals/:id", deleteDeal)
}

func dealService(c echo.Context) *promotions.FlashDealService {
	return GetAppContext(c).GetDealService().(*promotions.FlashDealService)
}

func listDeals(c echo.Context) error {
	page, pageSize := parsePagination(c)

	filter := map[string]interface{}{}
	if pt := strings.TrimSpace(c.QueryParam("product_type")); pt != "" {
		filter["product_type"] = pt
	}
	if active := strings.TrimSpace(c.QueryParam("is_active")); active != "" {
		filter["is_active"] = active == "true" || active == "1"
	}

	deals, total, err := dealService(c).ListDeals(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query deals", err.Error())
	}
	return paged(c, deals, total, page, pageSize)
}

func getDeal(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal ID", nil)
	}

	deal, err := dealService(c).DealByID(c.Request().Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "DEAL_NOT_FOUND", "Deal not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query deal", err.Error())
	}
	return ok(c, deal)
}

func createDeal(c echo.Context) error {
	var payload dealPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse deal parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	deal, errMsg := dealFromPayload(&payload)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", errMsg, nil)
	}

	if err := dealService(c).SaveDeal(c.Request().Context(), deal); err != nil {
		return dealSaveError(c, err)
	}
	return ok(c, deal)
}

func updateDeal(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal ID", nil)
	}

	svc := dealService(c)
	existing, err := svc.DealByID(c.Request().Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "DEAL_NOT_FOUND", "Deal not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query deal", err.Error())
	}

	var payload dealPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse deal parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	deal, errMsg := dealFromPayload(&payload)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", errMsg, nil)
	}
	deal.ID = existing.ID
	deal.Slug = existing.Slug
	if payload.Slug != "" {
		deal.Slug = payload.Slug
	}
	deal.CreatedAt = existing.CreatedAt

	if err := svc.SaveDeal(c.Request().Context(), deal); err != nil {
		return dealSaveError(c, err)
	}
	return ok(c, deal)
}

func deleteDeal(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid deal ID", nil)
	}
	if err := dealService(c).DeleteDeal(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete deal", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func createDealFromProduct(c echo.Context) error {
	var payload dealFromProductPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse deal parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if (payload.DiscountPercentage == nil) == (payload.SalePrice == nil) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST",
			"Provide exactly one of discount_percentage or sale_price", nil)
	}

	src, err := loadDealSource(c, payload.ProductType, payload.ProductID)
	if err != nil {
		return dealSourceError(c, err)
	}

	start, end, errMsg := dealWindow(payload.StartDate, payload.EndDate, payload.DaysActive)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", errMsg, nil)
	}

	svc := dealService(c)
	var deal *domain.FlashDeal
	if payload.DiscountPercentage != nil {
		pct, perr := decimal.NewFromString(*payload.DiscountPercentage)
		if perr != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid discount percentage", nil)
		}
		deal, err = svc.CreateFromDiscount(c.Request().Context(), src, pct, start, end, payload.Name, payload.Description)
	} else {
		sale, perr := decimal.NewFromString(*payload.SalePrice)
		if perr != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid sale price", nil)
		}
		deal, err = svc.CreateFromSalePrice(c.Request().Context(), src, sale, start, end, payload.Name, payload.Description)
	}
	if err != nil {
		return dealSaveError(c, err)
	}
	return ok(c, deal)
}

func batchCreateDeals(c echo.Context) error {
	var payload dealBatchPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse batch parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	pct, err := decimal.NewFromString(payload.DiscountPercentage)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid discount percentage", nil)
	}
	start, end, errMsg := dealWindow(payload.StartDate, payload.EndDate, payload.DaysActive)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", errMsg, nil)
	}

	// Per-item isolation: products that cannot be resolved are skipped
	// and counted, never aborting the rest of the batch.
	srcs := make([]promotions.DealSource, 0, len(payload.ProductIDs))
	skipped := 0
	for _, pid := range payload.ProductIDs {
		src, serr := loadDealSource(c, payload.ProductType, pid)
		if serr != nil {
			zap.L().Warn("batch deal source skipped",
				zap.Int64("product_id", pid), zap.Error(serr))
			skipped++
			continue
		}
		srcs = append(srcs, src)
	}

	deals := dealService(c).BatchCreate(c.Request().Context(), srcs, pct, start, end)
	return ok(c, map[string]interface{}{
		"requested": len(payload.ProductIDs),
		"skipped":   skipped,
		"created":   len(deals),
		"deals":     deals,
	})
}

const dealExportSheet = "FlashDeals"

func exportDeals(c echo.Context) error {
	deals, _, err := dealService(c).ListDeals(c.Request().Context(), nil, 1, maxPageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query deals", err.Error())
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", dealExportSheet)
	headers := []string{"ID", "Name", "Type", "Original", "Discount %", "Sale", "Start", "End", "Active", "Stock", "Slug"}
	for i, h := range headers {
		f.SetCellValue(dealExportSheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	now := time.Now()
	for row, d := range deals {
		r := strconv.Itoa(row + 2)
		f.SetCellValue(dealExportSheet, "A"+r, strconv.FormatInt(d.ID, 10))
		f.SetCellValue(dealExportSheet, "B"+r, d.Name)
		f.SetCellValue(dealExportSheet, "C"+r, d.ProductType)
		f.SetCellValue(dealExportSheet, "D"+r, d.OriginalPrice.StringFixed(2))
		if d.DiscountPercentage != nil {
			f.SetCellValue(dealExportSheet, "E"+r, d.DiscountPercentage.StringFixed(2))
		}
		if d.SalePrice != nil {
			f.SetCellValue(dealExportSheet, "F"+r, d.SalePrice.StringFixed(2))
		}
		f.SetCellValue(dealExportSheet, "G"+r, d.StartDate.Format(time.RFC3339))
		f.SetCellValue(dealExportSheet, "H"+r, d.EndDate.Format(time.RFC3339))
		f.SetCellValue(dealExportSheet, "I"+r, strconv.FormatBool(d.IsLive(now)))
		f.SetCellValue(dealExportSheet, "J"+r, strconv.Itoa(d.Stock))
		f.SetCellValue(dealExportSheet, "K"+r, d.Slug)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="flash_deals.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}

// dealFromPayload maps the request body onto a FlashDeal, parsing money
// and dates. Returns a message instead of an error for bad input.
func dealFromPayload(payload *dealPayload) (*domain.FlashDeal, string) {
	original, err := decimal.NewFromString(payload.OriginalPrice)
	if err != nil {
		return nil, "Invalid original price"
	}
	start, err := dateparse.ParseAny(payload.StartDate)
	if err != nil {
		return nil, "Invalid start date"
	}
	end, err := dateparse.ParseAny(payload.EndDate)
	if err != nil {
		return nil, "Invalid end date"
	}

	deal := &domain.FlashDeal{
		Name:          strings.TrimSpace(payload.Name),
		Description:   payload.Description,
		ProductType:   payload.ProductType,
		OriginalPrice: original,
		Image:         payload.Image,
		StartDate:     start,
		EndDate:       end,
		IsActive:      true,
		Stock:         payload.Stock,
		Slug:          strings.TrimSpace(payload.Slug),
	}
	if payload.IsActive != nil {
		deal.IsActive = *payload.IsActive
	}
	if payload.DiscountPercentage != nil {
		pct, err := decimal.NewFromString(*payload.DiscountPercentage)
		if err != nil {
			return nil, "Invalid discount percentage"
		}
		deal.DiscountPercentage = &pct
	}
	if payload.SalePrice != nil {
		sale, err := decimal.NewFromString(*payload.SalePrice)
		if err != nil {
			return nil, "Invalid sale price"
		}
		deal.SalePrice = &sale
	}
	deal.ReferencePhoneID = payload.ReferencePhoneID
	deal.ReferenceAccessoryID = payload.ReferenceAccessory
	return deal, ""
}

// dealWindow resolves start/end inputs; missing start means now, missing
// end falls back to days_active (default 7).
func dealWindow(startStr, endStr string, daysActive int) (start, end time.Time, errMsg string) {
	start = time.Now()
	if s := strings.TrimSpace(startStr); s != "" {
		var err error
		if start, err = dateparse.ParseAny(s); err != nil {
			return start, end, "Invalid start date"
		}
	}
	if s := strings.TrimSpace(endStr); s != "" {
		var err error
		if end, err = dateparse.ParseAny(s); err != nil {
			return start, end, "Invalid end date"
		}
	} else {
		if daysActive <= 0 {
			daysActive = 7
		}
		end = start.AddDate(0, 0, daysActive)
	}
	return start, end, ""
}

// loadDealSource resolves a catalog product into a deal source. It never
// writes to the response; callers map the error with dealSourceError.
func loadDealSource(c echo.Context, productType string, id int64) (promotions.DealSource, error) {
	products := GetAppContext(c).GetProductService().(*catalog.ProductService)
	ctx := c.Request().Context()

	switch productType {
	case domain.ProductTypePhone:
		variant, err := products.VariantByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return variant, nil
	case domain.ProductTypeAccessory:
		acc, err := products.AccessoryByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return acc, nil
	default:
		return nil, promotions.ErrUnsupportedProductType
	}
}

func dealSourceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	case errors.Is(err, promotions.ErrUnsupportedProductType):
		return fail(c, http.StatusBadRequest, "UNSUPPORTED_PRODUCT_TYPE", "Unknown product type", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
}

func dealSaveError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidWindow):
		return fail(c, http.StatusBadRequest, "INVALID_WINDOW", "End date must be after start date", nil)
	case errors.Is(err, domain.ErrAmbiguousReference):
		return fail(c, http.StatusBadRequest, "AMBIGUOUS_REFERENCE", "A deal may reference a phone or an accessory, not both", nil)
	case errors.Is(err, promotions.ErrUnsupportedProductType):
		return fail(c, http.StatusBadRequest, "UNSUPPORTED_PRODUCT_TYPE", "Unknown product type", nil)
	case promotions.IsDuplicateSlug(err):
		return fail(c, http.StatusConflict, "DUPLICATE_SLUG", "Slug already in use", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save deal", err.Error())
	}
}
