package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayurwell/ayurcms/internal/domain"
	"github.com/ayurwell/ayurcms/internal/webserver"
)

func registerBrandRoutes() {
	webserver.PubGET("/api/brand", getBrand)
	webserver.ApiPUT("/api/brand", updateBrand)
}

// getBrand returns the brand settings, creating the default instance
// on first read.
func getBrand(c echo.Context) error {
	b, err := GetStore(c).Brand()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query brand settings", err.Error())
	}
	return ok(c, b)
}

func updateBrand(c echo.Context) error {
	logo := ""
	if fh := formFile(c, "logo"); fh != nil {
		url, err := GetApp(c).Pipeline().Run(c.Request().Context(), fh, "brand")
		if err != nil {
			return uploadFail(c, err)
		}
		logo = url
	}

	b, err := GetStore(c).FindBrand()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query brand settings", err.Error())
	}
	if b == nil {
		b = &domain.BrandSettings{}
	}

	b.Name = c.FormValue("name")
	b.Tagline = c.FormValue("tagline")
	if logo != "" {
		b.Logo = logo
	}

	if err := GetStore(c).SaveBrand(b); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save brand settings", err.Error())
	}
	return ok(c, b)
}
