package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"15m", 15 * time.Minute, false},
		{"1h", time.Hour, false},
		{"20s", 20 * time.Second, false},
		{"30", 30 * time.Minute, false},
		{"soon", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseTTL(tc.in)
		if tc.err {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", 0)
	assert.Error(t, err)

	_, err = NewTokenService("k", -time.Second)
	assert.Error(t, err)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	s, err := NewTokenService("super-secret", 0)
	require.NoError(t, err)

	tok, err := s.Issue("user-123")
	require.NoError(t, err)

	got, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestTokenService_NoExpiryByDefault(t *testing.T) {
	t.Parallel()

	s, err := NewTokenService("k", 0)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(-10 * 365 * 24 * time.Hour) }

	tok, err := s.Issue("u1")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(tok)
	assert.NoError(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	s, err := NewTokenService("k", time.Minute)
	require.NoError(t, err)

	issued := time.Now()
	s.now = func() time.Time { return issued }
	tok, err := s.Issue("u1")
	require.NoError(t, err)

	_, err = s.Verify(tok)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_ExpiryRequiredWhenTTLSet(t *testing.T) {
	t.Parallel()

	forever, err := NewTokenService("k", 0)
	require.NoError(t, err)
	tok, err := forever.Issue("u1")
	require.NoError(t, err)

	bounded, err := NewTokenService("k", time.Hour)
	require.NoError(t, err)
	_, err = bounded.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Rejects(t *testing.T) {
	t.Parallel()

	right, err := NewTokenService("right-secret", 0)
	require.NoError(t, err)
	wrong, err := NewTokenService("wrong-secret", 0)
	require.NoError(t, err)

	tok, err := right.Issue("u2")
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).
		SignedString([]byte("right-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u2"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct {
		svc *TokenService
		tok string
	}{
		"wrong secret": {wrong, tok},
		"malformed":    {right, "not.a.jwt"},
		"empty":        {right, ""},
		"no user id":   {right, noUser},
		"alg none":     {right, unsigned},
	}

	for name, tc := range cases {
		_, err := tc.svc.Verify(tc.tok)
		assert.True(t, errors.Is(err, ErrInvalidToken), "%s: got %v", name, err)
	}
}
