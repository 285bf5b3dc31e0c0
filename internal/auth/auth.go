// Package auth gates the admin panel on a flag kept in the session cookie.
package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	// FlagKey is the session key that marks a logged-in admin.
	FlagKey   = "admin_logged"
	flagValue = "true"
)

// Decision is the outcome of an authentication check: either the request
// is authenticated, or it has to be redirected to RedirectTo.
type Decision struct {
	Authenticated bool
	RedirectTo    string
}

// Sessions installs the cookie-backed session middleware. The cookie is
// HTTP-only and has no explicit expiry.
func Sessions(name, secret string) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return sessions.Sessions(name, store)
}

type Gate struct {
	loginPath string
}

func NewGate(loginPath string) *Gate {
	return &Gate{loginPath: loginPath}
}

func (g *Gate) Check(c *gin.Context) Decision {
	if IsAdmin(c) {
		return Decision{Authenticated: true}
	}
	return Decision{RedirectTo: g.loginPath}
}

// Require is the middleware every admin route sits behind.
func (g *Gate) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Check(c)
		if !d.Authenticated {
			c.Redirect(http.StatusFound, d.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

func IsAdmin(c *gin.Context) bool {
	v, _ := sessions.Default(c).Get(FlagKey).(string)
	return v == flagValue
}

// Login marks the session as admin.
func Login(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Set(FlagKey, flagValue)
	return sess.Save()
}

// Logout drops the flag and tells the browser to forget the cookie.
func Logout(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Delete(FlagKey)
	sess.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: -1})
	return sess.Save()
}
