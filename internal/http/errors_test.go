package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"invalid credentials", apperrors.InvalidCredentials(), http.StatusUnauthorized, "invalid_credentials", ""},
		{"unauthenticated", apperrors.Unauthenticated("acknowledge alert"), http.StatusUnauthorized, "unauthenticated", ""},
		{"not found", apperrors.EntityNotFound("resolve alert", "alert", "9"), http.StatusNotFound, "not_found", ""},
		{"storage", apperrors.StorageUnavailable(errors.New("down"), "slot unavailable"), http.StatusServiceUnavailable, "storage_unavailable", ""},
		{"validation", apperrors.ValidationField("match", "bad expression"), http.StatusBadRequest, "validation", "match"},
		{"conflict", apperrors.Conflict("exists"), http.StatusConflict, "conflict", ""},
		{"timeout", apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeTimeout, "timed out"), http.StatusGatewayTimeout, "timeout", ""},
		{"canceled", apperrors.Wrap(context.Canceled, apperrors.ErrCodeCanceled, "canceled"), StatusClientClosedRequest, "canceled", ""},
		{"wrapped", errors.Join(errors.New("outer"), apperrors.NotFound("gone")), http.StatusNotFound, "not_found", ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)

			WriteAppError(rec, req, nil, tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
		})
	}
}

func TestWriteAppError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)

	WriteAppError(rec, req, nil, errors.New("dial tcp 10.0.0.1:5432: refused"))

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Message)
}
