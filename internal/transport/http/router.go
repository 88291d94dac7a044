package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brewhollow/shop-backend/internal/handlers"
	authmw "github.com/brewhollow/shop-backend/internal/middleware/auth"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	Feedback *handlers.FeedbackHandler
	Catalog  *handlers.CatalogHandler
	Tokens   *authmw.TokenMiddleware
}

// errorHandler renders every error as {"msg": ...} with its status code, so
// clients can tell an expired token apart from a revoked one by message.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"msg": msg})
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = errorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(204) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(204) })

	api := e.Group("/api")

	api.POST("/registration", d.Auth.Register)
	api.POST("/login", d.Auth.Login)
	api.GET("/account", d.Auth.Account, d.Tokens.RequireAccess)
	api.PUT("/refresh", d.Auth.Refresh, d.Tokens.RequireRefresh)
	api.DELETE("/logout1", d.Auth.LogoutAccess, d.Tokens.RequireAccess)
	api.DELETE("/logout2", d.Auth.LogoutRefresh, d.Tokens.RequireRefresh)

	api.POST("/feedback", d.Feedback.Submit)
	api.GET("/feedback", d.Feedback.List, d.Tokens.RequireAccess, d.Tokens.RequireAdmin)

	api.GET("/fullcatalog", d.Catalog.FullCatalog)
	api.GET("/catalog/search", d.Catalog.Search)
	api.POST("/generate_checkout_url", d.Catalog.GenerateCheckoutURL)
}
