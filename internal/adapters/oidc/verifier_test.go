package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/safemesh/mesh-console/internal/adapters/authroles"
	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

var testRoles = authroles.StaticRoleMapper{
	AdminGroup:     "mesh-admins",
	ResponderGroup: "mesh-responders",
	GuideGroup:     "mesh-guides",
}

// newTestIdP serves discovery, a password-grant token endpoint and userinfo.
func newTestIdP(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(DiscoveryDocument{
			Issuer:                srv.URL,
			AuthorizationEndpoint: srv.URL + "/auth",
			TokenEndpoint:         srv.URL + "/token",
			UserinfoEndpoint:      srv.URL + "/userinfo",
			JwksURI:               srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.Form.Get("grant_type") != "password" || r.Form.Get("password") != "correct-horse" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"u-7","name":"Dana Guide","email":"dana@example.com","groups":["mesh-guides"]}`))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestVerifier(t *testing.T, scope string) *Verifier {
	t.Helper()
	srv := newTestIdP(t)
	v, err := NewVerifier(context.Background(), VerifierConfig{
		ClientID:     "mesh-console",
		ClientSecret: "secret",
		Scope:        scope,
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
		Roles:        testRoles,
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	return v
}

func TestNewVerifier_Discovery(t *testing.T) {
	v := newTestVerifier(t, "profile email")
	assert.Contains(t, v.config.Endpoint.TokenURL, "/token")
	assert.Equal(t, []string{"profile", "email"}, v.config.Scopes)
}

func TestNewVerifier_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config VerifierConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: VerifierConfig{DiscoveryURL: "http://example.com", Roles: testRoles},
			errMsg: "client ID is required",
		},
		{
			name:   "missing discovery URL",
			config: VerifierConfig{ClientID: "client", Roles: testRoles},
			errMsg: "discovery URL is required",
		},
		{
			name:   "missing role mapper",
			config: VerifierConfig{ClientID: "client", DiscoveryURL: "http://example.com"},
			errMsg: "role mapper is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestVerifier_Verify_UserInfoFlow(t *testing.T) {
	v := newTestVerifier(t, "profile email")

	p, err := v.Verify(context.Background(), "dana@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, domainauth.Principal{
		ID:    "u-7",
		Name:  "Dana Guide",
		Email: "dana@example.com",
		Role:  domainauth.RoleGuide,
	}, p)
}

func TestVerifier_Verify_RejectedGrant(t *testing.T) {
	v := newTestVerifier(t, "profile email")

	_, err := v.Verify(context.Background(), "dana@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestVerifier_Verify_EmptyInput(t *testing.T) {
	v := newTestVerifier(t, "profile email")

	_, err := v.Verify(context.Background(), " ", "")
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	idTok, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", idTok)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id_token")

	_, err = getIDTokenFromToken(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil token")
}

func Test_mapIDTokenClaims(t *testing.T) {
	std := mapIDTokenClaims(idTokenClaims{
		Sub:    "sub-1",
		Name:   "Ray Responder",
		Email:  "ray@example.com",
		Groups: []string{"mesh-responders"},
	})
	assert.Equal(t, "sub-1", std.userID)
	assert.Equal(t, "Ray Responder", std.displayName())
	assert.Equal(t, "ray@example.com", std.email)
	assert.Equal(t, []string{"mesh-responders"}, std.groups)

	ad := mapIDTokenClaims(idTokenClaims{
		Sub:            "sub-2",
		SamAccountName: "sammy",
		FirstName:      "First",
		LastName:       "Last",
		Mail:           "mail@example.com",
		MemberOf:       []string{"mesh-admins"},
	})
	assert.Equal(t, "sammy", ad.userID)
	assert.Equal(t, "First Last", ad.displayName())
	assert.Equal(t, "mail@example.com", ad.email)
	assert.Equal(t, []string{"mesh-admins"}, ad.groups)
}

func Test_fillFromUserInfoClaims_KeepsExisting(t *testing.T) {
	ui := UserInfo{Subject: "sub-abc", Name: "Other", Email: "other@example.com", Groups: []string{"g"}}

	f := idFields{userID: "keep", name: "Keep", email: "keep@example.com", groups: []string{"x"}}
	fillFromUserInfoClaims(&f, ui)
	assert.Equal(t, "keep", f.userID)
	assert.Equal(t, "Keep", f.name)
	assert.Equal(t, "keep@example.com", f.email)
	assert.Equal(t, []string{"x"}, f.groups)

	var empty idFields
	fillFromUserInfoClaims(&empty, ui)
	assert.Equal(t, "sub-abc", empty.userID)
	assert.Equal(t, []string{"g"}, empty.groups)
}
