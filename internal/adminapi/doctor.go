package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayurwell/ayurcms/internal/domain"
	"github.com/ayurwell/ayurcms/internal/webserver"
)

func registerDoctorRoutes() {
	webserver.PubGET("/api/doctor", getDoctor)
	webserver.ApiPUT("/api/doctor", updateDoctor)
}

// getDoctor returns the practitioner profile, creating the default
// instance on first read.
func getDoctor(c echo.Context) error {
	d, err := GetStore(c).Doctor()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query doctor profile", err.Error())
	}
	return ok(c, d)
}

func updateDoctor(c echo.Context) error {
	photo := ""
	if fh := formFile(c, "photo"); fh != nil {
		url, err := GetApp(c).Pipeline().Run(c.Request().Context(), fh, "doctor")
		if err != nil {
			return uploadFail(c, err)
		}
		photo = url
	}

	d, err := GetStore(c).FindDoctor()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query doctor profile", err.Error())
	}
	if d == nil {
		d = &domain.DoctorProfile{}
	}

	d.Name = c.FormValue("name")
	d.Contact = c.FormValue("contact")
	d.Email = c.FormValue("email")
	d.Address = c.FormValue("address")
	d.Bio = c.FormValue("bio")
	if photo != "" {
		d.Photo = photo
	}

	if err := GetStore(c).SaveDoctor(d); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save doctor profile", err.Error())
	}
	return ok(c, d)
}
