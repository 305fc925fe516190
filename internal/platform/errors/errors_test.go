package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_HTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		typ    ErrorType
		status int
	}{
		{"validation", ValidationError("bad"), TypeValidation, http.StatusBadRequest},
		{"unauthorized", UnauthorizedError("login"), TypeUnauthorized, http.StatusUnauthorized},
		{"forbidden", ForbiddenError("nope"), TypeForbidden, http.StatusForbidden},
		{"not found", NotFoundError("gone"), TypeNotFound, http.StatusNotFound},
		{"conflict", ConflictError("taken"), TypeConflict, http.StatusConflict},
		{"rate limited", RateLimitedError("slow down"), TypeRateLimited, http.StatusTooManyRequests},
		{"unavailable", UnavailableError("db down", nil), TypeUnavailable, http.StatusServiceUnavailable},
		{"internal", InternalError("boom", nil), TypeInternal, http.StatusInternalServerError},
		{"external", ExternalError("provider", nil), TypeExternal, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := InternalError("failed to save story", cause)

	assert.Equal(t, "internal: failed to save story: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	noCause := InternalError("something went wrong", nil)
	assert.NotContains(t, noCause.Error(), "<nil>")
}

func TestWithField_ToResponse(t *testing.T) {
	err := NotFoundError("story not found").WithField("slug", "my-story")

	resp := err.ToResponse()
	assert.Equal(t, "story not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.Equal(t, "my-story", resp.Context["slug"])
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		typ     ErrorType
		message string
	}{
		{"invalid input sentinel", domain.Invalid("emoji %q is not allowed", "x"), TypeValidation, `emoji "x" is not allowed`},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrStoryNotFound), TypeNotFound, "story not found"},
		{"forbidden", domain.ErrLifetimeAccessRequired, TypeForbidden, "lifetime access required"},
		{"conflict", fmt.Errorf("insert: %w", domain.ErrConflict), TypeConflict, "insert: conflict"},
		{"storage", fmt.Errorf("query: %w", domain.ErrStorageUnavailable), TypeUnavailable, "storage unavailable"},
		{"inconsistent", domain.ErrInconsistent, TypeInternal, "internal server error"},
		{"unknown", fmt.Errorf("boom"), TypeInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.typ, got.Type)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestFromDomain_PassesStructuredThrough(t *testing.T) {
	original := ConflictError("duplicate request")
	wrapped := fmt.Errorf("handler: %w", original)

	assert.Same(t, original, FromDomain(wrapped))
	assert.Nil(t, FromDomain(nil))
}
