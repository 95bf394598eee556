package adminapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayurwell/ayurcms/internal/webserver"
)

func registerAuthRoutes() {
	webserver.PubPOST("/admin/login", login)
	webserver.PubPOST("/admin/logout", logout)
	webserver.ApiPUT("/api/admin/password", changePassword)
}

// login checks the submitted credentials against the stored admin
// record, falling back to the bootstrap pair from the configuration.
// The first successful bootstrap login creates the stored record. A
// failure never discloses which field was wrong.
func login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	st := GetStore(c)
	cfg := GetApp(c).Config()

	admin, err := st.FindAdmin(username)
	if err != nil {
		zap.L().Error("login lookup failed", zap.Error(err))
		return c.Redirect(http.StatusFound, "/admin/login?error=1")
	}

	if admin != nil && bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) == nil {
		if err := webserver.OpenSession(c, username); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/admin/dashboard")
	}

	// Bootstrap fallback applies only until a stored record exists;
	// the first successful fallback login upgrades the pair into one.
	if admin == nil && constantTimeEq(username, cfg.Admin.Username) && constantTimeEq(password, cfg.Admin.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return c.Redirect(http.StatusFound, "/admin/login?error=1")
		}
		if _, err := st.CreateAdmin(username, string(hash)); err != nil {
			zap.L().Error("failed to create admin record on bootstrap login", zap.Error(err))
			return c.Redirect(http.StatusFound, "/admin/login?error=1")
		}
		zap.L().Info("created admin record from bootstrap credentials", zap.String("username", username))
		if err := webserver.OpenSession(c, username); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/admin/dashboard")
	}

	return c.Redirect(http.StatusFound, "/admin/login?error=1")
}

func logout(c echo.Context) error {
	if err := webserver.CloseSession(c); err != nil {
		zap.L().Warn("failed to clear session", zap.Error(err))
	}
	return c.Redirect(http.StatusFound, "/")
}

type passwordPayload struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
}

func changePassword(c echo.Context) error {
	var payload passwordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	if payload.CurrentPassword == "" || payload.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "MISSING_PASSWORD", "Both current and new passwords are required", nil)
	}
	if len(payload.NewPassword) < 6 {
		return fail(c, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "New password must be at least 6 characters long", nil)
	}

	st := GetStore(c)
	cfg := GetApp(c).Config()

	username := webserver.CurrentUsername(c)
	if username == "" {
		username = cfg.Admin.Username
	}

	admin, err := st.FindAdmin(username)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update password", nil)
	}

	// The effective current password is the stored hash, or the
	// bootstrap pair while no record exists yet.
	if admin != nil {
		if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(payload.CurrentPassword)) != nil {
			return fail(c, http.StatusBadRequest, "WRONG_PASSWORD", "Current password is incorrect", nil)
		}
	} else if !constantTimeEq(payload.CurrentPassword, cfg.Admin.Password) {
		return fail(c, http.StatusBadRequest, "WRONG_PASSWORD", "Current password is incorrect", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update password", nil)
	}

	if admin != nil {
		err = st.UpdateAdminPassword(admin.ID, string(hash))
	} else {
		_, err = st.CreateAdmin(username, string(hash))
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update password", nil)
	}

	return message(c, "Password updated successfully")
}

func constantTimeEq(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
