package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	token, err := IssueToken("user-1", "editor", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "editor", claims.Role)
	assert.NotNil(t, claims.IssuedAt)
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	token, err := IssueToken("user-1", "editor", secret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// A token is already invalid at the instant of its expiry; only strictly
// earlier moments validate.
func TestParseExpiryBoundary(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")

	token, err := IssueToken("user-1", "editor", secret, 0)
	require.NoError(t, err)
	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err = IssueToken("user-1", "editor", secret, 5*time.Second)
	require.NoError(t, err)
	_, err = ParseToken(token, secret)
	assert.NoError(t, err)
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := IssueToken("user-1", "editor", []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("wrong"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("k"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
