package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/safemesh/mesh-console/internal/domain/model"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// parseTimeQuery parses an optional RFC 3339 query param.
func parseTimeQuery(r *http.Request, key string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperrors.ValidationField(key, fmt.Sprintf("%s must be an RFC 3339 timestamp", key))
	}
	return &t, nil
}

// parseUserQuery reads page, pageSize and search. Paging bounds are applied
// by the ledger.
func parseUserQuery(r *http.Request) model.UserQuery {
	return model.UserQuery{
		Search:   r.URL.Query().Get("search"),
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "pageSize", 0),
	}
}

// parseEvidenceQuery reads since, until and match.
func parseEvidenceQuery(r *http.Request) (model.EvidenceQuery, error) {
	since, err := parseTimeQuery(r, "since")
	if err != nil {
		return model.EvidenceQuery{}, err
	}
	until, err := parseTimeQuery(r, "until")
	if err != nil {
		return model.EvidenceQuery{}, err
	}
	if since != nil && until != nil && until.Before(*since) {
		return model.EvidenceQuery{}, apperrors.ValidationField("until", "until must not be before since")
	}
	return model.EvidenceQuery{
		Since: since,
		Until: until,
		Match: r.URL.Query().Get("match"),
	}, nil
}
