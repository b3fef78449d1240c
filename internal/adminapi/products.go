package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/domain"
	"github.com/phonemart/phonemart/internal/webserver"
	"github.com/phonemart/phonemart/pkg/common"
)

type phonePayload struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Brand        string `json:"brand" validate:"required,min=1,max=100"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Image        string `json:"image" validate:"omitempty,max=1024"`
	Slug         string `json:"slug" validate:"omitempty,max=255"`
	IsNewArrival *bool  `json:"is_new_arrival"`
	IsBestSeller *bool  `json:"is_best_seller"`
	IsActive     *bool  `json:"is_active"`
}

type variantPayload struct {
	PhoneID      int64  `json:"phone_id,string" validate:"required"`
	SKU          string `json:"sku" validate:"required,min=1,max=100"`
	Color        string `json:"color" validate:"omitempty,max=50"`
	Storage      string `json:"storage" validate:"omitempty,max=50"`
	Price        string `json:"price" validate:"required"`
	Stock        int    `json:"stock" validate:"omitempty,min=0"`
	Image        string `json:"image" validate:"omitempty,max=1024"`
	IsNewArrival *bool  `json:"is_new_arrival"`
	IsBestSeller *bool  `json:"is_best_seller"`
	IsActive     *bool  `json:"is_active"`
}

type accessoryPayload struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Category     string `json:"category" validate:"omitempty,max=100"`
	Price        string `json:"price" validate:"required"`
	Stock        int    `json:"stock" validate:"omitempty,min=0"`
	Image        string `json:"image" validate:"omitempty,max=1024"`
	Slug         string `json:"slug" validate:"omitempty,max=255"`
	IsNewArrival *bool  `json:"is_new_arrival"`
	IsBestSeller *bool  `json:"is_best_seller"`
	IsActive     *bool  `json:"is_active"`
}

// registerProductRoutes registers catalog admin routes
func registerProductRoutes() {
	webserver.ApiGET("/store/phones", listPhones)
	webserver.ApiGET("/store/phones/:id", getPhone)
	webserver.ApiPOST("/store/phones", createPhone)
	webserver.ApiPUT("/store/phones/:id", updatePhone)
	webserver.ApiDELETE("/store/phones/:id", deletePhone)

	webserver.ApiGET("/store/variants", listVariants)
	webserver.ApiPOST("/store/variants", createVariant)
	webserver.ApiPUT("/store/variants/:id", updateVariant)
	webserver.ApiDELETE("/store/variants/:id", deleteVariant)

	webserver.ApiGET("/store/accessories", listAccessories)
	webserver.ApiGET("/store/accessories/:id", getAccessory)
	webserver.ApiPOST("/store/accessories", createAccessory)
	webserver.ApiPUT("/store/accessories/:id", updateAccessory)
	webserver.ApiDELETE("/store/accessories/:id", deleteAccessory)
}

func productService(c echo.Context) *catalog.ProductService {
	return GetAppContext(c).GetProductService().(*catalog.ProductService)
}

func listPhones(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Phone{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
	}
	if brand := strings.TrimSpace(c.QueryParam("brand")); brand != "" {
		db = db.Where("brand = ?", brand)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query phones", err.Error())
	}

	var phones []domain.Phone
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&phones).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query phones", err.Error())
	}
	return paged(c, phones, total, page, pageSize)
}

func getPhone(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid phone ID", nil)
	}

	var phone domain.Phone
	if err := GetDB(c).First(&phone, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PHONE_NOT_FOUND", "Phone not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query phone", err.Error())
	}

	var variants []domain.PhoneVariant
	GetDB(c).Where("phone_id = ?", id).Find(&variants)

	return ok(c, map[string]interface{}{"phone": phone, "variants": variants})
}

func createPhone(c echo.Context) error {
	var payload phonePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse phone parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		slug = common.Slugify(payload.Brand + " " + payload.Name)
	}

	phone := domain.Phone{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Brand:       strings.TrimSpace(payload.Brand),
		Description: payload.Description,
		Image:       payload.Image,
		Slug:        slug,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if payload.IsActive != nil {
		phone.IsActive = *payload.IsActive
	}

	if err := GetDB(c).Create(&phone).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create phone", err.Error())
	}
	return ok(c, phone)
}

func updatePhone(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid phone ID", nil)
	}

	var phone domain.Phone
	if err := GetDB(c).First(&phone, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PHONE_NOT_FOUND", "Phone not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query phone", err.Error())
	}

	var payload phonePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse phone parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	phone.Name = strings.TrimSpace(payload.Name)
	phone.Brand = strings.TrimSpace(payload.Brand)
	phone.Description = payload.Description
	phone.Image = payload.Image
	if s := strings.TrimSpace(payload.Slug); s != "" {
		phone.Slug = s
	}
	if payload.IsActive != nil {
		phone.IsActive = *payload.IsActive
	}
	phone.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&phone).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update phone", err.Error())
	}
	return ok(c, phone)
}

func deletePhone(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid phone ID", nil)
	}

	// Variants go first, each clearing any deal back-references.
	var variants []domain.PhoneVariant
	if err := GetDB(c).Where("phone_id = ?", id).Find(&variants).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query variants", err.Error())
	}
	svc := productService(c)
	for _, v := range variants {
		if err := svc.DeleteVariant(c.Request().Context(), v.ID); err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete variant", err.Error())
		}
	}

	if err := GetDB(c).Delete(&domain.Phone{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete phone", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func listVariants(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.PhoneVariant{}).Preload("Phone")
	if pid := strings.TrimSpace(c.QueryParam("phone_id")); pid != "" {
		db = db.Where("phone_id = ?", pid)
	}
	if sku := strings.TrimSpace(c.QueryParam("sku")); sku != "" {
		db = db.Where("sku = ?", sku)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query variants", err.Error())
	}

	var variants []domain.PhoneVariant
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&variants).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query variants", err.Error())
	}
	return paged(c, variants, total, page, pageSize)
}

func createVariant(c echo.Context) error {
	var payload variantPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse variant parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid price", nil)
	}

	var phone domain.Phone
	if err := GetDB(c).First(&phone, payload.PhoneID).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PHONE_NOT_FOUND", "Phone not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query phone", err.Error())
	}

	var exists int64
	GetDB(c).Model(&domain.PhoneVariant{}).Where("sku = ?", payload.SKU).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusConflict, "SKU_EXISTS", "Variant SKU already exists", nil)
	}

	variant := domain.PhoneVariant{
		ID:        common.UUIDint64(),
		PhoneID:   payload.PhoneID,
		SKU:       strings.TrimSpace(payload.SKU),
		Color:     payload.Color,
		Storage:   payload.Storage,
		Price:     price,
		Stock:     payload.Stock,
		Image:     payload.Image,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	applyVariantFlags(&variant, &payload)

	if err := GetDB(c).Create(&variant).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create variant", err.Error())
	}
	return ok(c, variant)
}

func updateVariant(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid variant ID", nil)
	}

	var variant domain.PhoneVariant
	if err := GetDB(c).First(&variant, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "VARIANT_NOT_FOUND", "Variant not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query variant", err.Error())
	}

	var payload variantPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse variant parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid price", nil)
	}

	variant.SKU = strings.TrimSpace(payload.SKU)
	variant.Color = payload.Color
	variant.Storage = payload.Storage
	variant.Price = price
	variant.Stock = payload.Stock
	variant.Image = payload.Image
	applyVariantFlags(&variant, &payload)
	variant.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&variant).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update variant", err.Error())
	}
	return ok(c, variant)
}

func applyVariantFlags(v *domain.PhoneVariant, payload *variantPayload) {
	if payload.IsNewArrival != nil {
		v.IsNewArrival = *payload.IsNewArrival
	}
	if payload.IsBestSeller != nil {
		v.IsBestSeller = *payload.IsBestSeller
	}
	if payload.IsActive != nil {
		v.IsActive = *payload.IsActive
	}
}

func deleteVariant(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid variant ID", nil)
	}
	if err := productService(c).DeleteVariant(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete variant", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func listAccessories(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Accessory{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ?", like)
	}
	if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
		db = db.Where("category = ?", cat)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query accessories", err.Error())
	}

	var accessories []domain.Accessory
	if err := db.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&accessories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query accessories", err.Error())
	}
	return paged(c, accessories, total, page, pageSize)
}

func getAccessory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid accessory ID", nil)
	}

	var acc domain.Accessory
	if err := GetDB(c).First(&acc, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ACCESSORY_NOT_FOUND", "Accessory not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query accessory", err.Error())
	}
	return ok(c, acc)
}

func createAccessory(c echo.Context) error {
	var payload accessoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse accessory parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid price", nil)
	}

	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		slug = common.Slugify(payload.Name)
	}

	acc := domain.Accessory{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Category:    payload.Category,
		Price:       price,
		Stock:       payload.Stock,
		Image:       payload.Image,
		Slug:        slug,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if payload.IsNewArrival != nil {
		acc.IsNewArrival = *payload.IsNewArrival
	}
	if payload.IsBestSeller != nil {
		acc.IsBestSeller = *payload.IsBestSeller
	}
	if payload.IsActive != nil {
		acc.IsActive = *payload.IsActive
	}

	if err := GetDB(c).Create(&acc).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create accessory", err.Error())
	}
	return ok(c, acc)
}

func updateAccessory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid accessory ID", nil)
	}

	var acc domain.Accessory
	if err := GetDB(c).First(&acc, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ACCESSORY_NOT_FOUND", "Accessory not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query accessory", err.Error())
	}

	var payload accessoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse accessory parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid price", nil)
	}

	acc.Name = strings.TrimSpace(payload.Name)
	acc.Description = payload.Description
	acc.Category = payload.Category
	acc.Price = price
	acc.Stock = payload.Stock
	acc.Image = payload.Image
	if s := strings.TrimSpace(payload.Slug); s != "" {
		acc.Slug = s
	}
	if payload.IsNewArrival != nil {
		acc.IsNewArrival = *payload.IsNewArrival
	}
	if payload.IsBestSeller != nil {
		acc.IsBestSeller = *payload.IsBestSeller
	}
	if payload.IsActive != nil {
		acc.IsActive = *payload.IsActive
	}
	acc.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&acc).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update accessory", err.Error())
	}
	return ok(c, acc)
}

func deleteAccessory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid accessory ID", nil)
	}
	if err := productService(c).DeleteAccessory(c.Request().Context(), id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete accessory", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
