package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/response"
)

const (
	// CtxWeddingIDKey carries the resolved tenant id for the request.
	CtxWeddingIDKey = "weddingID"
	// CtxWeddingKey carries the loaded wedding row.
	CtxWeddingKey = "wedding"

	// SubdomainHeader lets clients behind a shared host name a tenant explicitly.
	SubdomainHeader = "X-Wedding-Subdomain"
)

// Tenant resolves the wedding serving this request from the host subdomain
// (amy-and-sam.everafter.app) or the X-Wedding-Subdomain header, loads it and
// binds it to the request context. Every downstream query is scoped to it.
func Tenant(db *gorm.DB, baseDomain string) gin.HandlerFunc {
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))

	return func(c *gin.Context) {
		subdomain := strings.ToLower(strings.TrimSpace(c.GetHeader(SubdomainHeader)))
		if subdomain == "" {
			subdomain = subdomainFromHost(c.Request.Host, baseDomain)
		}

		if subdomain == "" {
			response.Error(c, appErrors.ErrNotFound.WithMessage("Unknown wedding site"))
			c.Abort()
			return
		}

		var wedding models.Wedding
		err := db.WithContext(c.Request.Context()).
			Where("subdomain = ?", subdomain).
			First(&wedding).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Error(c, appErrors.ErrNotFound.WithMessage("Unknown wedding site"))
			c.Abort()
			return
		case err != nil:
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
			c.Abort()
			return
		case wedding.Suspended:
			response.Error(c, appErrors.ErrForbidden.WithMessage("This wedding site is unavailable"))
			c.Abort()
			return
		}

		c.Set(CtxWeddingIDKey, wedding.ID)
		c.Set(CtxWeddingKey, &wedding)
		c.Next()
	}
}

// WeddingFromContext returns the wedding bound by the Tenant middleware.
func WeddingFromContext(c *gin.Context) (*models.Wedding, bool) {
	value, ok := c.Get(CtxWeddingKey)
	if !ok {
		return nil, false
	}
	wedding, ok := value.(*models.Wedding)
	return wedding, ok
}

func subdomainFromHost(host, baseDomain string) string {
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	if baseDomain == "" {
		return ""
	}

	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	sub := strings.TrimSuffix(host, suffix)
	// Nested subdomains are not tenants.
	if sub == "" || strings.Contains(sub, ".") || sub == "www" {
		return ""
	}
	return sub
}
