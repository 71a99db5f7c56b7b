package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_DefaultsToInternalForPlainError(t *testing.T) {
	assert.Equal(t, CodeInternalError, Code(errors.New("boom")))
}

func TestCode_ExtractsFromWrappedError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ResourceNotFound("User", "u1"))
	assert.Equal(t, CodeResourceNotFound, Code(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ResourceNotFound("User", "u1")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestIs_MatchesByCodeNotIdentity(t *testing.T) {
	err := ResourceNotFound("User", "u1")
	assert.True(t, Is(err, ErrResourceNotFound))
}

func TestIs_DoesNotMatchDifferentCode(t *testing.T) {
	err := QuotaExceeded("User", 10)
	assert.False(t, Is(err, ErrResourceNotFound))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	wrapped := ProviderError(cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestWithContext_AttachesKeyValue(t *testing.T) {
	err := InvalidRequest("bad input").WithContext("field", "userName")
	assert.Equal(t, "userName", err.Context["field"])
	assert.Equal(t, "bad input", err.Context["reason"])
}

func TestError_MessageFormatting(t *testing.T) {
	withoutCause := New(CodeInvalidRequest, "Invalid request", http.StatusBadRequest)
	assert.Equal(t, "INVALID_REQUEST: Invalid request", withoutCause.Error())

	withCause := Wrap(errors.New("disk full"), CodeInternalError, "Internal error", http.StatusInternalServerError)
	assert.Contains(t, withCause.Error(), "disk full")
}

func TestAs_FindsErrorInChain(t *testing.T) {
	err := ResourceNotFound("User", "u1")
	var target *Error
	assert.True(t, As(err, &target))
	assert.Equal(t, CodeResourceNotFound, target.Code)
}
