package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorMatching(t *testing.T) {
	detailed := ErrWalletNotFound.WithMessage("destination wallet %s not found", "w-2")
	wrapped := fmt.Errorf("admission: %w", detailed)

	assert.True(t, stderrors.Is(wrapped, ErrWalletNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrInsufficientBalance))
	assert.Equal(t, "destination wallet w-2 not found", detailed.Error())

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(stderrors.New("plain"), KindNotFound))
	assert.Equal(t, "WALLET_NOT_FOUND", CodeOf(wrapped))
	assert.Empty(t, CodeOf(stderrors.New("plain")))
}
