package oidc

// Package oidc verifies console credentials against an OIDC provider using the
// OAuth2 resource-owner password grant.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
	"github.com/safemesh/mesh-console/internal/ports"
)

// Verifier implements ports.CredentialVerifier using OIDC/OAuth2.
type Verifier struct {
	config     *oauth2.Config
	httpClient *http.Client
	roles      ports.RoleMapper

	// go-oidc provider and verifier
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// VerifierConfig holds configuration for the OIDC verifier.
type VerifierConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	Roles        ports.RoleMapper
	HTTPClient   *http.Client // Optional, defaults to a 30s timeout client
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewVerifier creates a new OIDC credential verifier.
func NewVerifier(ctx context.Context, config VerifierConfig) (*Verifier, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if config.Roles == nil {
		return nil, errors.New("role mapper is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	v := &Verifier{
		httpClient: httpClient,
		roles:      config.Roles,
	}

	// Single discovery fetch at start-up
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	v.oidcProvider = op
	v.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	v.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return v, nil
}

// Verify exchanges the email/password pair for tokens and maps the resulting identity.
// A rejected grant is reported as invalid_credentials.
func (v *Verifier) Verify(ctx context.Context, email, password string) (domainauth.Principal, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return domainauth.Principal{}, apperrors.InvalidCredentials()
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	token, err := v.config.PasswordCredentialsToken(ctx, strings.TrimSpace(email), password)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode < http.StatusInternalServerError {
			return domainauth.Principal{}, apperrors.InvalidCredentials()
		}
		return domainauth.Principal{}, apperrors.Wrap(err, apperrors.ErrCodeStorageUnavailable, "identity provider unavailable")
	}

	fields, err := v.extractFromIDToken(ctx, token)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("extract id_token: %w", err)
	}

	if fields.email == "" || fields.userID == "" || len(fields.groups) == 0 {
		if fillErr := v.fillFromUserInfo(ctx, token.AccessToken, &fields); fillErr != nil {
			return domainauth.Principal{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}
	if fields.userID == "" {
		return domainauth.Principal{}, errors.New("identity provider returned no subject")
	}

	return domainauth.Principal{
		ID:    fields.userID,
		Name:  fields.displayName(),
		Email: firstNonEmpty(fields.email, strings.TrimSpace(email)),
		Role:  v.roles.Map(fields.groups),
	}, nil
}

// UserInfo represents the user information from the OIDC userinfo endpoint.
// Both standard and AD/ADFS claim shapes are accepted.
type UserInfo struct {
	Subject        string   `json:"sub"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Groups         []string `json:"groups"`
	SamAccountName string   `json:"samaccountname"`
	FirstName      string   `json:"firstname"`
	LastName       string   `json:"lastname"`
	Mail           string   `json:"mail"`
	MemberOf       []string `json:"memberof"`
}

func (v *Verifier) getUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	ui, err := v.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	var userInfo UserInfo
	if claimsErr := ui.Claims(&userInfo); claimsErr != nil {
		return nil, fmt.Errorf("decode user info: %w", claimsErr)
	}
	return &userInfo, nil
}

type idFields struct {
	userID     string
	name       string
	email      string
	givenName  string
	familyName string
	groups     []string
}

func (f idFields) displayName() string {
	if f.name != "" {
		return f.name
	}
	return strings.TrimSpace(f.givenName + " " + f.familyName)
}

func (v *Verifier) extractFromIDToken(ctx context.Context, tok *oauth2.Token) (idFields, error) {
	var f idFields
	if !v.hasOpenIDScope() {
		return f, nil
	}
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return f, err
	}
	idTok, err := v.verifier.Verify(ctx, rawID)
	if err != nil {
		return f, fmt.Errorf("verify id_token: %w", err)
	}
	var claims idTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return f, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	return mapIDTokenClaims(claims), nil
}

func (v *Verifier) fillFromUserInfo(ctx context.Context, accessToken string, f *idFields) error {
	ui, err := v.getUserInfo(ctx, accessToken)
	if err != nil {
		return err
	}
	fillFromUserInfoClaims(f, *ui)
	return nil
}

// idTokenClaims represents a superset of OIDC and AD/ADFS claim shapes.
type idTokenClaims struct {
	Sub            string   `json:"sub"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Groups         []string `json:"groups"`
	SamAccountName string   `json:"samaccountname"`
	FirstName      string   `json:"firstname"`
	LastName       string   `json:"lastname"`
	Mail           string   `json:"mail"`
	MemberOf       []string `json:"memberof"`
}

// mapIDTokenClaims maps raw id token claims into idFields using precedence rules.
func mapIDTokenClaims(c idTokenClaims) idFields {
	return idFields{
		userID:     firstNonEmpty(c.SamAccountName, c.Sub),
		name:       c.Name,
		email:      firstNonEmpty(c.Email, c.Mail),
		givenName:  c.FirstName,
		familyName: c.LastName,
		groups:     firstNonEmptySlice(c.Groups, c.MemberOf),
	}
}

// fillFromUserInfoClaims fills missing fields from a UserInfo payload using precedence rules.
func fillFromUserInfoClaims(f *idFields, ui UserInfo) {
	if f.userID == "" {
		f.userID = firstNonEmpty(ui.SamAccountName, ui.Subject)
	}
	if f.name == "" {
		f.name = ui.Name
	}
	if f.email == "" {
		f.email = firstNonEmpty(ui.Email, ui.Mail)
	}
	if f.givenName == "" {
		f.givenName = ui.FirstName
	}
	if f.familyName == "" {
		f.familyName = ui.LastName
	}
	if len(f.groups) == 0 {
		f.groups = firstNonEmptySlice(ui.Groups, ui.MemberOf)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptySlice(vals ...[]string) []string {
	for _, v := range vals {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (v *Verifier) hasOpenIDScope() bool {
	for _, sc := range v.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
