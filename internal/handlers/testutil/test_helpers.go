package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/api"
	"github.com/everafterhq/everafter/internal/app"
	iauth "github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/cache"
	sharedtestutil "github.com/everafterhq/everafter/internal/database/testutil"
	"github.com/everafterhq/everafter/internal/models"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/crypto"
	"github.com/everafterhq/everafter/pkg/mail"
	"github.com/everafterhq/everafter/pkg/response"
)

// Env is a fully wired API instance backed by an in-memory database.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Mailer *MailerStub
}

// MailerStub records outbound messages instead of delivering them.
type MailerStub struct {
	mu   sync.Mutex
	Sent []mail.Message
}

func (m *MailerStub) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// NewEnv provisions a handler test environment with migrations applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-suite-super-secret-key-32-bytes!!",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	mfaSvc, err := iauth.NewMFAService(db)
	require.NoError(t, err)

	cfg := &app.Config{
		Server: app.ServerConfig{
			BaseDomain: "weddings.test",
		},
		Monitoring: app.MonitoringConfig{
			Health: app.HealthConfig{Enabled: true},
		},
		RateLimit: app.RateLimitConfig{Enabled: false},
	}

	mailer := &MailerStub{}
	svcs := api.Services{
		Auth:       services.NewAuthService(db, jwtSvc, mfaSvc),
		Weddings:   services.NewWeddingService(db),
		Guests:     services.NewGuestService(db),
		Events:     services.NewEventService(db),
		RSVPs:      services.NewRSVPService(db),
		Seating:    services.NewSeatingService(db),
		Gifts:      services.NewGiftService(db),
		Broadcasts: services.NewBroadcastService(db, mailer),
		Photos:     services.NewPhotoService(db),
		Admin:      services.NewAdminService(db),
		MFA:        mfaSvc,
	}

	router, err := api.NewRouter(db, cfg, jwtSvc, cache.NewDatabaseStore(db), svcs)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
		Mailer: mailer,
	}
}

// LoginPayload mirrors the JSON response from POST /api/auth/login.
type LoginPayload struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// SignupCouple registers a couple account, creates its wedding and returns a
// token bound to the fresh tenant. The second login is deliberate: the wedding
// claim is stamped into the token at issue time.
func (e *Env) SignupCouple(email, password, subdomain string) (token, weddingID string) {
	e.T.Helper()

	registered := e.Request(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(e.T, http.StatusCreated, registered.Code, registered.Body.String())

	first := e.Login(email, password)

	created := e.Request(http.MethodPost, "/api/weddings", map[string]string{
		"couple_names": "Amy & Sam",
		"subdomain":    subdomain,
	}, first.Token)
	require.Equal(e.T, http.StatusCreated, created.Code, created.Body.String())

	var wedding models.Wedding
	DecodeInto(e.T, DecodeResponse(e.T, created).Data, &wedding)

	second := e.Login(email, password)
	return second.Token, wedding.ID
}

// CreateAdmin inserts an active admin account and returns its token.
func (e *Env) CreateAdmin(email, password string) string {
	e.T.Helper()

	hashed, err := crypto.HashPassword(password)
	require.NoError(e.T, err)

	user := &models.User{
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	require.NoError(e.T, e.DB.Create(user).Error)

	return e.Login(email, password).Token
}

// Login authenticates and returns the issued token and user payload.
func (e *Env) Login(email, password string) LoginPayload {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result LoginPayload
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.Token)
	return result
}

// APIResponse is the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router with JSON encoding
// and auth headers applied.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	return e.RequestWithHost(method, path, body, token, "")
}

// RequestWithHost additionally sets the Host header, which the tenant
// middleware resolves the wedding subdomain from.
func (e *Env) RequestWithHost(method, path string, body any, token, host string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if host != "" {
		req.Host = host
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
