package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig configures the optional "sign in with" flow for couple accounts.
type OIDCConfig struct {
	Enabled      bool
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OIDCIdentity is the subset of ID-token claims the platform cares about.
type OIDCIdentity struct {
	Subject string
	Email   string
	Name    string
}

// OIDCOption customises the authenticator.
type OIDCOption func(*oidcOptions)

type oidcOptions struct {
	httpClient *http.Client
	timeout    time.Duration
}

// WithOIDCHTTPClient injects a custom HTTP client, primarily for testing.
func WithOIDCHTTPClient(client *http.Client) OIDCOption {
	return func(o *oidcOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithOIDCTimeout overrides the discovery and exchange timeout.
func WithOIDCTimeout(d time.Duration) OIDCOption {
	return func(o *oidcOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

type idTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// OIDCAuthenticator wraps provider discovery, the authorization-code redirect
// and the code-for-identity exchange.
type OIDCAuthenticator struct {
	oauthConfig *oauth2.Config
	verifier    idTokenVerifier
	timeout     time.Duration
}

// NewOIDCAuthenticator performs issuer discovery and builds the authenticator.
func NewOIDCAuthenticator(ctx context.Context, cfg OIDCConfig, opts ...OIDCOption) (*OIDCAuthenticator, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("oidc: issuer is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("oidc: client id is required")
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("oidc: client secret is required")
	}
	if strings.TrimSpace(cfg.RedirectURL) == "" {
		return nil, errors.New("oidc: redirect url is required")
	}

	options := oidcOptions{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&options)
	}

	if options.httpClient != nil {
		ctx = oidc.ClientContext(ctx, options.httpClient)
	}

	discoveryCtx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	provider, err := oidc.NewProvider(discoveryCtx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc: discovery failed: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCAuthenticator{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		timeout:  options.timeout,
	}, nil
}

// AuthCodeURL builds the redirect URL starting the authorization-code flow.
func (a *OIDCAuthenticator) AuthCodeURL(state string) string {
	return a.oauthConfig.AuthCodeURL(state)
}

// Exchange swaps the authorization code for a verified identity.
func (a *OIDCAuthenticator) Exchange(ctx context.Context, code string) (*OIDCIdentity, error) {
	exchangeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	token, err := a.oauthConfig.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, fmt.Errorf("oidc: code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("oidc: response is missing id_token")
	}

	idToken, err := a.verifier.Verify(exchangeCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("oidc: verify id token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc: decode claims: %w", err)
	}

	if strings.TrimSpace(claims.Email) == "" {
		return nil, errors.New("oidc: id token carries no email claim")
	}

	return &OIDCIdentity{
		Subject: idToken.Subject,
		Email:   strings.ToLower(claims.Email),
		Name:    claims.Name,
	}, nil
}
