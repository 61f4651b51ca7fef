package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

// StatusClientClosedRequest is the non-standard status used for canceled requests.
const StatusClientClosedRequest = 499

// statusForCode maps application error codes to HTTP status codes.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidCredentials, apperrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError writes err as a JSON error response. AppErrors keep their
// code, message and field; anything else is reported as an opaque internal
// error and logged.
func WriteAppError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		if logger != nil {
			logger.ErrorContext(r.Context(), "request failed",
				"path", r.URL.Path,
				"error", err)
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: string(apperrors.ErrCodeInternal),
			Err:     errors.New("internal error"),
		})
		return
	}

	status := statusForCode(appErr.Code)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"code", appErr.Code,
			"error", err)
	}
	WriteError(w, ErrorParams{
		Code:    status,
		ErrCode: string(appErr.Code),
		Field:   appErr.Field,
		Err:     errors.New(appErr.Message),
	})
}
