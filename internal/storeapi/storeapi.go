package storeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phonemart/phonemart/internal/catalog"
	"github.com/phonemart/phonemart/internal/promotions"
	"github.com/phonemart/phonemart/internal/webserver"
)

// InitRouter registers the public storefront routes. No authentication;
// everything here is read-only.
func InitRouter() {
	webserver.PubGET("/api/homepage", getHomepage)
	webserver.PubGET("/api/flash-deals", listFlashDeals)
	webserver.PubGET("/api/flash-deals/upcoming", listUpcomingDeals)
	webserver.PubGET("/api/flash-deals/:slug", getFlashDeal)
	webserver.PubGET("/api/new-arrivals", listNewArrivals)
	webserver.PubGET("/api/best-sellers", listBestSellers)
	webserver.PubGET("/api/phones/:slug", getPhoneDetail)
	webserver.PubGET("/api/accessories/:slug", getAccessoryDetail)
}

func appCtx(c echo.Context) webserver.WebApp {
	return c.Get(webserver.ContextAppKey).(webserver.WebApp)
}

func homepageService(c echo.Context) *promotions.HomepageService {
	return appCtx(c).GetHomepageService().(*promotions.HomepageService)
}

func dealService(c echo.Context) *promotions.FlashDealService {
	return appCtx(c).GetDealService().(*promotions.FlashDealService)
}

func productService(c echo.Context) *catalog.ProductService {
	return appCtx(c).GetProductService().(*catalog.ProductService)
}

func mediaBase(c echo.Context) string {
	return appCtx(c).Config().Web.MediaURL
}

func getHomepage(c echo.Context) error {
	data, err := homepageService(c).Homepage(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load homepage")
	}
	return c.JSON(http.StatusOK, newHomepageView(data, mediaBase(c)))
}

func listFlashDeals(c echo.Context) error {
	deals, err := homepageService(c).ActiveDeals(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load deals")
	}
	return c.JSON(http.StatusOK, newDealViews(deals, mediaBase(c)))
}

func listUpcomingDeals(c echo.Context) error {
	deals, err := dealService(c).UpcomingDeals(c.Request().Context(), 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load deals")
	}
	return c.JSON(http.StatusOK, newDealViews(deals, mediaBase(c)))
}

func getFlashDeal(c echo.Context) error {
	deal, err := dealService(c).DealBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load deal")
	}
	if deal == nil {
		return echo.NewHTTPError(http.StatusNotFound, "deal not found")
	}
	view := newDealView(deal, mediaBase(c))
	return c.JSON(http.StatusOK, view)
}

func listNewArrivals(c echo.Context) error {
	group, err := productService(c).NewArrivals(c.Request().Context(), catalog.DefaultGroupLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load new arrivals")
	}
	return c.JSON(http.StatusOK, newGroupView(group, mediaBase(c)))
}

func listBestSellers(c echo.Context) error {
	group, err := productService(c).BestSellers(c.Request().Context(), catalog.DefaultGroupLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load best sellers")
	}
	return c.JSON(http.StatusOK, newGroupView(group, mediaBase(c)))
}

func getPhoneDetail(c echo.Context) error {
	detail, err := productService(c).PhoneBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load phone")
	}
	if detail == nil {
		return echo.NewHTTPError(http.StatusNotFound, "phone not found")
	}
	return c.JSON(http.StatusOK, newPhoneDetailView(detail, mediaBase(c)))
}

func getAccessoryDetail(c echo.Context) error {
	detail, err := productService(c).AccessoryBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load accessory")
	}
	if detail == nil {
		return echo.NewHTTPError(http.StatusNotFound, "accessory not found")
	}
	return c.JSON(http.StatusOK, newAccessoryDetailView(detail, mediaBase(c)))
}
