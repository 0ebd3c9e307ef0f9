package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
)

func newTenantRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.GET("/site", Tenant(db, "everafter.app"), func(c *gin.Context) {
		wedding, ok := WeddingFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, wedding.Subdomain)
	})
	return r
}

func createWedding(t *testing.T, db *gorm.DB, subdomain string, suspended bool) *models.Wedding {
	t.Helper()

	owner := &models.User{Email: subdomain + "@example.com", Role: models.RoleCouple}
	require.NoError(t, db.Create(owner).Error)

	wedding := &models.Wedding{
		OwnerID:     owner.ID,
		CoupleNames: "Amy & Sam",
		Subdomain:   subdomain,
		RSVPCode:    "CODE" + subdomain,
		Suspended:   suspended,
	}
	require.NoError(t, db.Create(wedding).Error)
	return wedding
}

func TestTenantResolvesFromHost(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	createWedding(t, db, "amy-and-sam", false)
	r := newTenantRouter(db)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/site", nil)
	req.Host = "amy-and-sam.everafter.app"
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "amy-and-sam", rec.Body.String())
}

func TestTenantResolvesFromHeader(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	createWedding(t, db, "june-wedding", false)
	r := newTenantRouter(db)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/site", nil)
	req.Host = "app.everafter.app"
	req.Header.Set(SubdomainHeader, "june-wedding")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantRejectsUnknownSubdomain(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	r := newTenantRouter(db)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/site", nil)
	req.Host = "ghost.everafter.app"
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantRejectsSuspendedWedding(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	createWedding(t, db, "paused", true)
	r := newTenantRouter(db)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/site", nil)
	req.Host = "paused.everafter.app"
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubdomainFromHost(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"amy.everafter.app", "amy"},
		{"amy.everafter.app:8080", "amy"},
		{"www.everafter.app", ""},
		{"a.b.everafter.app", ""},
		{"everafter.app", ""},
		{"other.example.com", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, subdomainFromHost(tc.host, "everafter.app"), tc.host)
	}
}
