package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", "herdbook")
	raw, err := tokens.Issue(NewActor(7, AnimalList, ServiceCreate), time.Hour)
	require.NoError(t, err)

	actor, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(7), actor.FarmID)
	assert.True(t, actor.Can(AnimalList))
	assert.True(t, actor.Can(ServiceCreate))
	assert.False(t, actor.Can(AnimalCreate))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	raw, err := NewTokens("0123456789abcdef", "herdbook").Issue(NewActor(1), time.Hour)
	require.NoError(t, err)

	_, err = NewTokens("fedcba9876543210", "herdbook").Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", "herdbook")
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := tokens.Issue(NewActor(1), time.Hour)
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsEmpty(t *testing.T) {
	_, err := NewTokens("0123456789abcdef", "herdbook").Verify("  ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueCarriesFarmIDClaim(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", "herdbook")
	raw, err := tokens.Issue(NewActor(7, AnimalList), time.Hour)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(raw, claims)
	require.NoError(t, err)
	assert.Equal(t, float64(7), claims["farm_id"])
}

func TestVerifyRequiresFarmIDClaim(t *testing.T) {
	tokens := NewTokens("0123456789abcdef", "herdbook")
	sign := func(claims jwt.MapClaims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("0123456789abcdef"))
		require.NoError(t, err)
		return raw
	}
	exp := time.Now().Add(time.Hour).Unix()

	_, err := tokens.Verify(sign(jwt.MapClaims{"iss": "herdbook", "sub": "7", "exp": exp}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify(sign(jwt.MapClaims{"iss": "herdbook", "sub": "8", "farm_id": 7, "exp": exp}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	actor, err := tokens.Verify(sign(jwt.MapClaims{"iss": "herdbook", "farm_id": 7, "exp": exp}))
	require.NoError(t, err)
	assert.Equal(t, uint(7), actor.FarmID)
}
