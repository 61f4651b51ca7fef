package service

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// payloadMatcher evaluates a validated Match expression against evidence payloads.
type payloadMatcher struct {
	expr string
	eval JMESPathEvaluator
}

// newPayloadMatcher validates expr. An empty expression yields a nil matcher
// that accepts everything.
func newPayloadMatcher(eval JMESPathEvaluator, expr string) (*payloadMatcher, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if err := eval.Validate(expr); err != nil {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeValidation,
			Message: fmt.Sprintf("invalid match expression: %v", err),
			Field:   "match",
			Cause:   err,
		}
	}
	return &payloadMatcher{expr: expr, eval: eval}, nil
}

// Matches reports whether the expression result over raw is truthy.
// Payloads that are not valid JSON, or that the expression cannot be
// evaluated against, do not match.
func (m *payloadMatcher) Matches(raw json.RawMessage) bool {
	if m == nil {
		return true
	}
	var data any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return false
		}
	}
	res, err := m.eval.Evaluate(m.expr, data)
	if err != nil {
		return false
	}
	return truthy(res)
}

// truthy follows JMESPath truthiness: false, null and empty values are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
