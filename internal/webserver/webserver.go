// Package webserver hosts the echo HTTP server, the cookie-session
// admin gate and the route registration helpers used by adminapi.
package webserver

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"

	"github.com/ayurwell/ayurcms/internal/app"
)

const (
	// SessionName is the admin session cookie name.
	SessionName = "ayurcms_session"
	// SessionAuthKey marks the session as authenticated.
	SessionAuthKey = "is_authenticated"
	// SessionUserKey holds the logged-in admin username.
	SessionUserKey = "admin_username"
	// AppContextKey is the echo context key for the application context.
	AppContextKey = "ayurcms_app"
)

type WebServer struct {
	root   *echo.Echo
	appCtx app.AppContext
}

var server *WebServer

// Init builds the echo server with session, recovery and logging
// middleware and registers the page routes. Handlers are attached
// afterwards through the route helpers.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	secret := appCtx.Config().Web.Secret
	if secret == "" {
		// Sessions won't survive a restart without a configured secret.
		secret = random.String(32)
		zap.L().Warn("web.secret not set, using a generated session secret")
	}
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	pubdir := appCtx.Config().GetPublicDir()
	e.Static("/", pubdir)
	e.GET("/admin", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/admin/login")
	})
	e.GET("/admin/login", func(c echo.Context) error {
		return c.File(filepath.Join(pubdir, "admin-login.html"))
	})
	e.GET("/admin/dashboard", RequireAuth(func(c echo.Context) error {
		return c.File(filepath.Join(pubdir, "admin-dashboard.html"))
	}))

	server = &WebServer{root: e, appCtx: appCtx}
	return server
}

// Echo exposes the underlying router (used in tests).
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Listen starts the HTTP server and blocks.
func Listen() error {
	cfg := server.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("admin server listening on http://%s", addr)
	return server.root.Start(addr)
}

// Shutdown stops the HTTP server gracefully.
func Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.root.Shutdown(ctx)
}

// PubGET registers an unauthenticated GET route.
func PubGET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h)
}

// PubPOST registers an unauthenticated POST route.
func PubPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h)
}

// ApiPOST registers a POST route behind the session gate.
func ApiPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, RequireAuth(h))
}

// ApiPUT registers a PUT route behind the session gate.
func ApiPUT(path string, h echo.HandlerFunc) {
	server.root.PUT(path, RequireAuth(h))
}

// ApiDELETE registers a DELETE route behind the session gate.
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.root.DELETE(path, RequireAuth(h))
}

// RequireAuth refuses the request before any handler work when the
// session is not authenticated. API clients get a 401, page requests a
// redirect to the login form.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsAuthenticated(c) {
			return next(c)
		}
		if strings.HasPrefix(c.Request().URL.Path, "/api") {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":  "UNAUTHORIZED",
				"error": "Authentication required",
			})
		}
		return c.Redirect(http.StatusFound, "/admin/login")
	}
}

// IsAuthenticated reports whether the session gate is open.
func IsAuthenticated(c echo.Context) bool {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return false
	}
	v, ok := sess.Values[SessionAuthKey].(bool)
	return ok && v
}

// CurrentUsername returns the logged-in admin username, or "".
func CurrentUsername(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	v, _ := sess.Values[SessionUserKey].(string)
	return v
}

// OpenSession marks the client session as authenticated for username.
func OpenSession(c echo.Context, username string) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
	}
	sess.Values[SessionAuthKey] = true
	sess.Values[SessionUserKey] = username
	return sess.Save(c.Request(), c.Response())
}

// CloseSession destroys the client session.
func CloseSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	sess.Values = map[interface{}]interface{}{}
	return sess.Save(c.Request(), c.Response())
}
