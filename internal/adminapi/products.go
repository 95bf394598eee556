package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ayurwell/ayurcms/internal/domain"
	"github.com/ayurwell/ayurcms/internal/webserver"
)

// registerProductRoutes registers the catalog CRUD endpoints. Reads
// are public, mutations sit behind the session gate.
func registerProductRoutes() {
	webserver.PubGET("/api/products", listProducts)
	webserver.PubGET("/api/products/:id", getProduct)
	webserver.ApiPOST("/api/products", createProduct)
	webserver.ApiPUT("/api/products/:id", updateProduct)
	webserver.ApiDELETE("/api/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	products, err := GetStore(c).ListProducts()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, products)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetStore(c).GetProduct(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))
	if name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Product name is required", nil)
	}
	if description == "" {
		return fail(c, http.StatusBadRequest, "MISSING_DESCRIPTION", "Product description is required", nil)
	}

	image := ""
	if fh := formFile(c, "image"); fh != nil {
		url, err := GetApp(c).Pipeline().Run(c.Request().Context(), fh, "products")
		if err != nil {
			return uploadFail(c, err)
		}
		image = url
	}

	p := domain.Product{
		Name:        name,
		Description: description,
		Ingredients: c.FormValue("ingredients"),
		Benefits:    c.FormValue("benefits"),
		Usage:       c.FormValue("usage"),
		Price:       c.FormValue("price"),
		Image:       image,
	}
	if err := GetStore(c).CreateProduct(&p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	updates := map[string]interface{}{
		"name":        c.FormValue("name"),
		"description": c.FormValue("description"),
		"ingredients": c.FormValue("ingredients"),
		"benefits":    c.FormValue("benefits"),
		"usage":       c.FormValue("usage"),
		"price":       c.FormValue("price"),
	}

	// With no attached file the image field stays untouched; it is
	// replaced only by a completed upload.
	if fh := formFile(c, "image"); fh != nil {
		url, err := GetApp(c).Pipeline().Run(c.Request().Context(), fh, "products")
		if err != nil {
			return uploadFail(c, err)
		}
		updates["image"] = url
	}

	p, err := GetStore(c).UpdateProduct(id, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	err = GetStore(c).DeleteProduct(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return message(c, "Product deleted successfully")
}
