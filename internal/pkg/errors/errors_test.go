// internal/pkg/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing %d", 7)))
	assert.Equal(t, KindDataIntegrity, KindOf(DataIntegrity("cycle")))
	assert.Equal(t, KindDependency, KindOf(Dependency("store failed", stderrors.New("boom"))))
	assert.Equal(t, KindLimitExceeded, KindOf(LimitExceeded("limit reached")))

	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, Kind(0), KindOf(stderrors.New("plain")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("coupon %d not found", 3))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsValidation(Validation("x")))
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsDataIntegrity(DataIntegrity("x")))
	assert.True(t, IsDependency(Dependency("x", nil)))
	assert.True(t, IsLimitExceeded(LimitExceeded("x")))

	assert.False(t, IsValidation(NotFound("x")))
	assert.False(t, IsNotFound(nil))
}

func TestErrorMessage(t *testing.T) {
	plain := Validation("quantity must be at least %d", 1)
	assert.Equal(t, "quantity must be at least 1", plain.Error())

	cause := stderrors.New("connection refused")
	wrapped := Dependency("failed to load discounts", cause)
	assert.Equal(t, "failed to load discounts: connection refused", wrapped.Error())
	assert.Equal(t, cause, stderrors.Unwrap(wrapped))
}
