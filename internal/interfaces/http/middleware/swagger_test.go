package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSwaggerRouter(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/swagger/index.html", SwaggerProtection(cfg, jwtMiddleware), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return r
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("serves docs when enabled without restrictions", func(t *testing.T) {
		r := newSwaggerRouter(SwaggerConfig{Enabled: true}, nil)

		w := doGet(r, "/swagger/index.html", "10.0.0.1:1234")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "docs", w.Body.String())
	})

	t.Run("hides docs entirely when disabled", func(t *testing.T) {
		r := newSwaggerRouter(SwaggerConfig{Enabled: false}, nil)

		w := doGet(r, "/swagger/index.html", "10.0.0.1:1234")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})

	t.Run("allows whitelisted IP", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}
		r := newSwaggerRouter(cfg, nil)

		w := doGet(r, "/swagger/index.html", "10.0.0.1:1234")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects IP outside the whitelist", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}
		r := newSwaggerRouter(cfg, nil)

		w := doGet(r, "/swagger/index.html", "192.168.1.50:1234")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "forbidden")
	})

	t.Run("supports CIDR ranges in the whitelist", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}
		r := newSwaggerRouter(cfg, nil)

		inside := doGet(r, "/swagger/index.html", "10.20.30.40:1234")
		outside := doGet(r, "/swagger/index.html", "172.16.0.1:1234")

		assert.Equal(t, http.StatusOK, inside.Code)
		assert.Equal(t, http.StatusForbidden, outside.Code)
	})

	t.Run("ignores malformed whitelist entries", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip", "10.0.0.1"}}
		r := newSwaggerRouter(cfg, nil)

		allowed := doGet(r, "/swagger/index.html", "10.0.0.1:1234")
		denied := doGet(r, "/swagger/index.html", "10.0.0.2:1234")

		assert.Equal(t, http.StatusOK, allowed.Code)
		assert.Equal(t, http.StatusForbidden, denied.Code)
	})

	t.Run("delegates to the auth middleware when required", func(t *testing.T) {
		deny := func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
		cfg := SwaggerConfig{Enabled: true, RequireAuth: true}
		r := newSwaggerRouter(cfg, deny)

		w := doGet(r, "/swagger/index.html", "10.0.0.1:1234")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("passes through when the auth middleware accepts", func(t *testing.T) {
		allow := func(c *gin.Context) {}
		cfg := SwaggerConfig{Enabled: true, RequireAuth: true}
		r := newSwaggerRouter(cfg, allow)

		w := doGet(r, "/swagger/index.html", "10.0.0.1:1234")

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
