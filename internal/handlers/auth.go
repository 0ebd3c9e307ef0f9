package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/crypto"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/response"
)

const oidcStateCookie = "everafter_oidc_state"

type AuthHandler struct {
	svc  *services.AuthService
	oidc *iauth.OIDCAuthenticator
	mfa  *iauth.MFAService
}

// NewAuthHandler wires the authentication endpoints. oidc may be nil when
// single sign-on is disabled.
func NewAuthHandler(svc *services.AuthService, oidc *iauth.OIDCAuthenticator, mfa *iauth.MFAService) *AuthHandler {
	return &AuthHandler{svc: svc, oidc: oidc, mfa: mfa}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"max=255"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.Register(requestContext(c), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	MFACode  string `json:"mfa_code"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.svc.Login(requestContext(c), req.Email, req.Password, req.MFACode)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// GET /api/auth/oidc
func (h *AuthHandler) OIDCStart(c *gin.Context) {
	if h.oidc == nil {
		response.Error(c, appErrors.ErrNotFound.WithMessage("single sign-on is not enabled"))
		return
	}

	state, err := crypto.GenerateToken(24)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	c.SetCookie(oidcStateCookie, state, 300, "/", "", true, true)
	c.Redirect(http.StatusFound, h.oidc.AuthCodeURL(state))
}

// GET /api/auth/oidc/callback
func (h *AuthHandler) OIDCCallback(c *gin.Context) {
	if h.oidc == nil {
		response.Error(c, appErrors.ErrNotFound.WithMessage("single sign-on is not enabled"))
		return
	}

	expected, err := c.Cookie(oidcStateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		response.Error(c, appErrors.ErrUnauthorized.WithMessage("invalid sign-on state"))
		return
	}
	c.SetCookie(oidcStateCookie, "", -1, "/", "", true, true)

	identity, err := h.oidc.Exchange(requestContext(c), c.Query("code"))
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized.WithInternal(err))
		return
	}

	result, err := h.svc.LoginWithOIDC(requestContext(c), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// POST /api/auth/mfa/enroll
func (h *AuthHandler) MFAEnroll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.mfa == nil {
		response.Error(c, appErrors.ErrNotFound.WithMessage("multi-factor authentication is not enabled"))
		return
	}

	enrollment, err := h.mfa.Enroll(requestContext(c), userID)
	if err != nil {
		response.Error(c, appErrors.FromError(err))
		return
	}

	response.Success(c, http.StatusOK, enrollment)
}

type mfaCodeRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// POST /api/auth/mfa/activate
func (h *AuthHandler) MFAActivate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.mfa == nil {
		response.Error(c, appErrors.ErrNotFound.WithMessage("multi-factor authentication is not enabled"))
		return
	}

	var req mfaCodeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.mfa.Activate(requestContext(c), userID, req.Code); err != nil {
		response.Error(c, appErrors.ErrInvalidCredentials.WithMessage("Invalid verification code").WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enabled": true})
}

// POST /api/auth/mfa/disable
func (h *AuthHandler) MFADisable(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.mfa == nil {
		response.Error(c, appErrors.ErrNotFound.WithMessage("multi-factor authentication is not enabled"))
		return
	}

	if err := h.mfa.Disable(requestContext(c), userID); err != nil {
		response.Error(c, appErrors.FromError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enabled": false})
}
