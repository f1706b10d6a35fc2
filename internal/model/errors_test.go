package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindOf(t *testing.T) {
	base := NewError(ErrWouldCycle, "cycle detected")
	wrapped := fmt.Errorf("insert claim: %w", base)

	assert.Equal(t, ErrWouldCycle, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestErrorIsMatchesKindOnly(t *testing.T) {
	a := NewError(ErrNotFound, "claim 7 not found")
	b := NewError(ErrNotFound, "claim 9 not found")
	c := NewError(ErrAmbiguous, "multiple matches")

	assert.True(t, errors.Is(a, b), "same kind should match regardless of message")
	assert.False(t, errors.Is(a, c))
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(ErrStoreBusy, "commit failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestClaimHasProveCmd(t *testing.T) {
	assert.False(t, Claim{}.HasProveCmd())
	assert.True(t, Claim{ProveCmd: "go test ./..."}.HasProveCmd())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusUnproven, StatusProven, StatusStale, StatusBroken} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("WEIRD").Valid())
}
