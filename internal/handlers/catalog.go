package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/brewhollow/shop-backend/internal/cache"
	"github.com/brewhollow/shop-backend/internal/logging"
	"github.com/brewhollow/shop-backend/internal/search"
	"github.com/brewhollow/shop-backend/internal/square"
	"github.com/brewhollow/shop-backend/internal/util"
)

type CatalogHandler struct {
	Square *square.Client
	Cache  *cache.CatalogCache
	ES     *elasticsearch.Client
	Index  string
}

func (h *CatalogHandler) FullCatalog(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_full")

	if items, ok := h.Cache.Get(ctx); ok {
		return c.JSON(http.StatusOK, echo.Map{"msg": "Items retrieved", "items": items})
	}

	items, err := h.Square.FullCatalog(ctx)
	if err != nil {
		l.Error("catalog_fetch_failed", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "catalog unavailable")
	}

	if err := h.Cache.Set(ctx, items); err != nil {
		l.Warn("catalog_cache_failed", "error", err)
	}
	if h.ES != nil {
		if err := search.IndexItems(ctx, h.ES, h.Index, items); err != nil {
			l.Warn("catalog_index_failed", "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Items retrieved", "items": items})
}

func (h *CatalogHandler) GenerateCheckoutURL(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_checkout")

	var cart square.Cart
	if err := c.Bind(&cart); err != nil {
		l.Warn("checkout_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	url, err := h.Square.CreateCheckout(ctx, cart)
	if err != nil {
		l.Error("checkout_failed", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "checkout unavailable")
	}

	l.Info("checkout_created", "status", 200)
	return c.JSON(http.StatusOK, echo.Map{"msg": "Checkout page created", "url": url})
}

func (h *CatalogHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	ctx := c.Request().Context()
	total, items, err := search.Search(ctx, h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search error")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "items": items})
}
