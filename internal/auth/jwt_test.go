package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/pkg/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    "user-1",
		Name:  "Alice",
		Email: "alice@example.com",
	}
}

func TestSignAndParse(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "bookhub", Duration: 168 * time.Hour}

	token, exp, err := ts.Sign(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), exp, time.Minute)

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "bookhub", claims.Issuer)
}

func TestParseAcceptsBeforeExpiry(t *testing.T) {
	// a 7-day token signed 6 days "ago" is still inside its window
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "bookhub", Duration: 24 * time.Hour}

	token, _, err := ts.Sign(testUser())
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.NoError(t, err)
}

func TestParseExpired(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "bookhub", Duration: -time.Hour}

	token, _, err := ts.Sign(testUser())
	require.NoError(t, err)

	_, err = ts.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseWrongSecret(t *testing.T) {
	signer := TokenService{Secret: []byte("test-secret"), Issuer: "bookhub", Duration: time.Hour}
	verifier := TokenService{Secret: []byte("other-secret"), Issuer: "bookhub", Duration: time.Hour}

	token, _, err := signer.Sign(testUser())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseMalformed(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "bookhub", Duration: time.Hour}

	_, err := ts.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
