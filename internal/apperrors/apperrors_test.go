// internal/apperrors/apperrors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "missing")))
	assert.Equal(t, KindExpired, KindOf(New(KindExpired, "too late")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindOfWrappedChain(t *testing.T) {
	inner := New(KindPreconditionFailed, "gate closed")
	wrapped := fmt.Errorf("while issuing link: %w", inner)

	assert.Equal(t, KindPreconditionFailed, KindOf(wrapped))
	assert.True(t, IsPreconditionFailed(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindUpstream, "provider unreachable", cause)

	assert.True(t, IsUpstream(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "provider unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewf(t *testing.T) {
	err := Newf(KindPreconditionFailed, "transition from %s to %s is not allowed", "enviado", "borrador")
	assert.Equal(t, "transition from enviado to borrador is not allowed", err.Error())
	assert.True(t, IsPreconditionFailed(err))
}
