package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionName = "admin_session"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Sessions(sessionName, "test-secret-value"))

	gate := NewGate("/login")
	r.GET("/check", func(c *gin.Context) {
		d := gate.Check(c)
		if d.Authenticated {
			c.String(http.StatusOK, "authenticated")
			return
		}
		c.String(http.StatusOK, "redirect:"+d.RedirectTo)
	})
	r.GET("/do-login", func(c *gin.Context) {
		if err := Login(c); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/do-logout", func(c *gin.Context) {
		if err := Logout(c); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin", gate.Require(), func(c *gin.Context) {
		c.String(http.StatusOK, "admin area")
	})
	return r
}

func do(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", sessionName)
	return nil
}

func TestCheck_Unauthenticated(t *testing.T) {
	rec := do(newRouter(), "/check")
	assert.Equal(t, "redirect:/login", rec.Body.String())
}

func TestRequire_RedirectsWithoutSession(t *testing.T) {
	rec := do(newRouter(), "/admin")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "admin area")
}

func TestLoginThenLogout(t *testing.T) {
	r := newRouter()

	login := do(r, "/do-login")
	require.Equal(t, http.StatusNoContent, login.Code)
	cookie := sessionCookie(t, login)
	assert.True(t, cookie.HttpOnly)
	assert.Zero(t, cookie.MaxAge, "session cookie carries no explicit expiry")

	assert.Equal(t, "authenticated", do(r, "/check", cookie).Body.String())
	admin := do(r, "/admin", cookie)
	assert.Equal(t, http.StatusOK, admin.Code)
	assert.Equal(t, "admin area", admin.Body.String())

	logout := do(r, "/do-logout", cookie)
	require.Equal(t, http.StatusNoContent, logout.Code)
	cleared := sessionCookie(t, logout)
	assert.Less(t, cleared.MaxAge, 0, "cookie is expired on logout")

	// a browser drops the expired cookie, so the next request has none
	after := do(r, "/admin")
	assert.Equal(t, http.StatusFound, after.Code)
}

func TestForgedCookieIsRejected(t *testing.T) {
	r := newRouter()
	forged := &http.Cookie{Name: sessionName, Value: "true"}
	plain := &http.Cookie{Name: FlagKey, Value: "true"}

	assert.Equal(t, http.StatusFound, do(r, "/admin", forged).Code)
	assert.Equal(t, http.StatusFound, do(r, "/admin", plain).Code)
}
