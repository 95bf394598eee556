package adminapi_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ayurwell/ayurcms/config"
	"github.com/ayurwell/ayurcms/internal/adminapi"
	"github.com/ayurwell/ayurcms/internal/app"
	"github.com/ayurwell/ayurcms/internal/blobstore"
	"github.com/ayurwell/ayurcms/internal/domain"
	"github.com/ayurwell/ayurcms/internal/pipeline"
	"github.com/ayurwell/ayurcms/internal/stage"
	"github.com/ayurwell/ayurcms/internal/webserver"
)

type fakeBlob struct {
	fail    bool
	uploads []string
	deletes []string
}

func (f *fakeBlob) Upload(_ context.Context, _ []byte, originalName, folder string) (string, error) {
	if f.fail {
		return "", &blobstore.UploadError{Key: originalName, Err: errors.New("remote unavailable")}
	}
	u := fmt.Sprintf("https://cdn.example.com/images/%s/%d-%s", folder, len(f.uploads)+1, originalName)
	f.uploads = append(f.uploads, u)
	return u, nil
}

func (f *fakeBlob) Delete(_ context.Context, fileURL string) error {
	f.deletes = append(f.deletes, fileURL)
	return nil
}

type testEnv struct {
	ws       *webserver.WebServer
	app      *app.Application
	blob     *fakeBlob
	stageDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := *config.DefaultAppConfig
	cfg.Logger.FileEnable = false

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	application := app.NewApplication(&cfg)
	application.OverrideDB(db)

	stageDir := t.TempDir()
	st, err := stage.New(stageDir, stage.DefaultMaxSize, nil)
	require.NoError(t, err)

	blob := &fakeBlob{}
	application.OverridePipeline(pipeline.New(st, blob))

	ws := webserver.Init(application)
	adminapi.InitRouter()

	return &testEnv{ws: ws, app: application, blob: blob, stageDir: stageDir}
}

func (e *testEnv) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ws.Echo().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username, password string) ([]*http.Cookie, *httptest.ResponseRecorder) {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := e.do(req, nil)
	return rec.Result().Cookies(), rec
}

func (e *testEnv) mustLogin(t *testing.T) []*http.Cookie {
	t.Helper()
	cookies, rec := e.login(t, "doctor", "ayurveda123")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	return cookies
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileField, filename, ctype string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, filename))
		h.Set("Content-Type", ctype)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func stageCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestBootstrapLoginCreatesSingleAdminRecord(t *testing.T) {
	env := newTestEnv(t)

	cookies := env.mustLogin(t)
	require.NotEmpty(t, cookies)

	count, err := env.app.Store().CountAdmins()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// the stored password is a hash, never the plaintext
	admin, err := env.app.Store().FindAdmin("doctor")
	require.NoError(t, err)
	assert.NotEqual(t, "ayurveda123", admin.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("ayurveda123")))

	// a second identical login does not create a duplicate
	env.mustLogin(t)
	count, err = env.app.Store().CountAdmins()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, rec := env.login(t, "doctor", "wrong-password")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login?error=1", rec.Header().Get("Location"))

	count, err := env.app.Store().CountAdmins()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMutatingRouteRefusedWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, http.MethodPost, "/api/products",
		map[string]string{"name": "Tulsi Drops", "description": "Drops"},
		"image", "tulsi.png", "image/png", []byte("png"))
	rec := env.do(req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// refused before any pipeline or store work
	assert.Empty(t, env.blob.uploads)
	products, err := env.app.Store().ListProducts()
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateProductWithoutFile(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	req := multipartRequest(t, http.MethodPost, "/api/products",
		map[string]string{
			"name":        "Tulsi Drops",
			"description": "Immunity drops",
			"price":       "199",
		}, "", "", "", nil)
	rec := env.do(req, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	products, err := env.app.Store().ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tulsi Drops", products[0].Name)
	assert.Empty(t, products[0].Image)
	assert.Empty(t, env.blob.uploads)
}

func TestCreateProductRequiresNameAndDescription(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	req := multipartRequest(t, http.MethodPost, "/api/products",
		map[string]string{"description": "no name"}, "", "", "", nil)
	rec := env.do(req, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = multipartRequest(t, http.MethodPost, "/api/products",
		map[string]string{"name": "no description"}, "", "", "", nil)
	rec = env.do(req, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductRejectsInvalidFileType(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	req := multipartRequest(t, http.MethodPost, "/api/products",
		map[string]string{"name": "Tulsi Drops", "description": "Drops"},
		"image", "notes.txt", "text/plain", []byte("not an image"))
	rec := env.do(req, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// rejected before staging: no blob, no entity, no staged file
	assert.Empty(t, env.blob.uploads)
	assert.Zero(t, stageCount(t, env.stageDir))
	products, err := env.app.Store().ListProducts()
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCreateProductWithUpload(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	req := multipartRequest(t, http.MethodPost, "/api/products",
		map[string]string{"name": "Tulsi Drops", "description": "Drops"},
		"image", "tulsi.png", "image/png", []byte("png bytes"))
	rec := env.do(req, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	products, err := env.app.Store().ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Len(t, env.blob.uploads, 1)
	assert.Equal(t, env.blob.uploads[0], products[0].Image)
	// staged copy removed on the success path
	assert.Zero(t, stageCount(t, env.stageDir))
}

func TestUpdateProductUploadFailureLeavesImageUntouched(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	p := &domain.Product{Name: "Neem Soap", Description: "Soap", Image: "https://cdn.example.com/images/products/0-old.png"}
	require.NoError(t, env.app.Store().CreateProduct(p))

	env.blob.fail = true
	req := multipartRequest(t, http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID),
		map[string]string{"name": "Neem Soap", "description": "Soap"},
		"image", "new.png", "image/png", []byte("png"))
	rec := env.do(req, cookies)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	got, err := env.app.Store().GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/products/0-old.png", got.Image)
	// the staged copy was cleaned up despite the failure
	assert.Zero(t, stageCount(t, env.stageDir))
}

func TestUpdateMissingProductKeepsUploadedBlob(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	// The upload completes before the persistence step can fail on the
	// unknown id, so the blob stays behind with nothing referencing it.
	req := multipartRequest(t, http.MethodPut, "/api/products/999999",
		map[string]string{"name": "Ghost", "description": "Gone"},
		"image", "ghost.png", "image/png", []byte("png"))
	rec := env.do(req, cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Len(t, env.blob.uploads, 1)
	assert.Empty(t, env.blob.deletes)
	// the staged copy is still cleaned up
	assert.Zero(t, stageCount(t, env.stageDir))

	products, err := env.app.Store().ListProducts()
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSequentialUploadsLastWriteWinsAndOrphanRemains(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	p := &domain.Product{Name: "Neem Soap", Description: "Soap"}
	require.NoError(t, env.app.Store().CreateProduct(p))

	for _, name := range []string{"first.png", "second.png"} {
		req := multipartRequest(t, http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID),
			map[string]string{"name": "Neem Soap", "description": "Soap"},
			"image", name, "image/png", []byte(name))
		rec := env.do(req, cookies)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	got, err := env.app.Store().GetProduct(p.ID)
	require.NoError(t, err)
	require.Len(t, env.blob.uploads, 2)
	assert.Equal(t, env.blob.uploads[1], got.Image)

	// the replaced blob stays in storage; nothing reconciles orphans
	assert.Empty(t, env.blob.deletes)
}

func TestTextOnlyUpdateBypassesPipeline(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	p := &domain.Product{Name: "Neem Soap", Description: "Soap", Image: "https://cdn.example.com/images/products/0-old.png"}
	require.NoError(t, env.app.Store().CreateProduct(p))

	req := multipartRequest(t, http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID),
		map[string]string{"name": "Neem Soap Bar", "description": "Better soap", "price": "149"},
		"", "", "", nil)
	rec := env.do(req, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := env.app.Store().GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Neem Soap Bar", got.Name)
	assert.Equal(t, "149", got.Price)
	assert.Equal(t, "https://cdn.example.com/images/products/0-old.png", got.Image)
	assert.Empty(t, env.blob.uploads)
}

func TestDoctorLazyDefaultIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/doctor", nil)
	rec := env.do(req, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()
	assert.Contains(t, first, "Dr. Priya Sharma")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/doctor", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, rec.Body.String())
}

func TestBrandUpdateWithLogoUpload(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	req := multipartRequest(t, http.MethodPut, "/api/brand",
		map[string]string{"name": "Dr. Ayurveda", "tagline": "Heal naturally"},
		"logo", "logo.png", "image/png", []byte("logo"))
	rec := env.do(req, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	b, err := env.app.Store().FindBrand()
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Len(t, env.blob.uploads, 1)
	assert.Equal(t, env.blob.uploads[0], b.Logo)
	assert.Equal(t, "Heal naturally", b.Tagline)
}

func TestChangePasswordTooShortRejected(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	before, err := env.app.Store().FindAdmin("doctor")
	require.NoError(t, err)

	body := strings.NewReader(`{"currentPassword":"ayurveda123","newPassword":"abc"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/password", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := env.do(req, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	after, err := env.app.Store().FindAdmin("doctor")
	require.NoError(t, err)
	assert.Equal(t, before.Password, after.Password)
}

func TestChangePasswordWrongCurrentRejected(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	body := strings.NewReader(`{"currentPassword":"not-it","newPassword":"newsecret"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/password", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := env.do(req, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePasswordThenLoginWithNew(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	body := strings.NewReader(`{"currentPassword":"ayurveda123","newPassword":"newsecret"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/password", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := env.do(req, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, rec2 := env.login(t, "doctor", "newsecret")
	assert.Equal(t, "/admin/dashboard", rec2.Header().Get("Location"))

	// the old password no longer works
	_, rec3 := env.login(t, "doctor", "ayurveda123")
	assert.Equal(t, "/admin/login?error=1", rec3.Header().Get("Location"))
}

func TestLogoutClosesSession(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.mustLogin(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	rec := env.do(req, cookies)
	assert.Equal(t, http.StatusFound, rec.Code)

	// the cleared cookie no longer opens the gate
	cleared := rec.Result().Cookies()
	req = multipartRequest(t, http.MethodPost, "/api/products",
		map[string]string{"name": "X", "description": "Y"}, "", "", "", nil)
	rec = env.do(req, cleared)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
