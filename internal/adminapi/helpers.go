package adminapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayurwell/ayurcms/internal/app"
	"github.com/ayurwell/ayurcms/internal/blobstore"
	"github.com/ayurwell/ayurcms/internal/stage"
	"github.com/ayurwell/ayurcms/internal/store"
	"github.com/ayurwell/ayurcms/internal/webserver"
)

// GetApp returns the application context injected by the webserver.
func GetApp(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetStore(c echo.Context) *store.Store {
	return GetApp(c).Store()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"message": msg})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	body := map[string]interface{}{
		"code":  code,
		"error": msg,
	}
	if detail != nil {
		body["detail"] = detail
	}
	return c.JSON(status, body)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// formFile returns the uploaded file for field, or nil when the request
// carries no file. Plain field edits without an attached file bypass
// the upload pipeline entirely.
func formFile(c echo.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

// uploadFail maps pipeline errors onto the response taxonomy: rejected
// files are client errors, remote storage failures are server errors.
func uploadFail(c echo.Context, err error) error {
	var verr *stage.ValidationError
	if errors.As(err, &verr) {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", verr.Message, nil)
	}
	var uerr *blobstore.UploadError
	if errors.As(err, &uerr) {
		return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", uerr.Error(), nil)
	}
	return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error(), nil)
}
