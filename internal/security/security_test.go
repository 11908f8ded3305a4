package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		tok, err := svc.CreateForUser("alice")
		require.NoError(t, err)

		sub, err := svc.Subject(tok)
		require.NoError(t, err)
		assert.Equal(t, "alice", sub)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		tok, err := NewTokenService("other", time.Hour).CreateForUser("alice")
		require.NoError(t, err)

		_, err = svc.Subject(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		past := NewTokenService("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := past.CreateForUser("alice")
		require.NoError(t, err)

		_, err = svc.Subject(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.Subject("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher(4)
	require.NoError(t, err)

	hashed, err := h.Hash("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1!", hashed)
	assert.NoError(t, h.Verify("Password1!", hashed))
	assert.ErrorIs(t, h.Verify("wrong", hashed), ErrPasswordMismatch)

	err = h.Verify("Password1!", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)

	t.Run("Cost", func(t *testing.T) {
		_, err := NewPasswordHasher(0)
		assert.NoError(t, err)
		_, err = NewPasswordHasher(2)
		assert.Error(t, err)
		_, err = NewPasswordHasher(40)
		assert.Error(t, err)
	})
}
