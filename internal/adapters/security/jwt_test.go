package security

import (
	"testing"
	"time"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerifyRoundTripsActor(t *testing.T) {
	v, err := NewHMACVerifier(testSecret, "jansankalp-web")
	require.NoError(t, err)

	district := "D1"
	actor := domain.Actor{UserID: "officer-1", Role: domain.RoleOfficer, Scope: domain.Scope{DistrictID: &district}}
	token, err := v.Sign(actor, time.Now(), time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, actor.UserID, got.UserID)
	require.Equal(t, domain.RoleOfficer, got.Role)
	require.Equal(t, "D1", *got.Scope.DistrictID)
	require.Nil(t, got.Scope.StateID)
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	v, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)

	expired, err := v.Sign(domain.Actor{UserID: "u", Role: domain.RoleCitizen}, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	other, err := NewHMACVerifier("ffffffffffffffffffffffffffffffff", "")
	require.NoError(t, err)
	foreign, err := other.Sign(domain.Actor{UserID: "u", Role: domain.RoleCitizen}, time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(foreign)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyRejectsUnknownRoleAndMissingSubject(t *testing.T) {
	v, err := NewHMACVerifier(testSecret, "")
	require.NoError(t, err)
	now := time.Now()

	sign := func(claims sessionClaims) string {
		raw, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, signErr)
		return raw
	}
	exp := jwt.NewNumericDate(now.Add(time.Hour))

	_, err = v.Verify(sign(sessionClaims{Role: "SUPERUSER", RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp}}))
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = v.Verify(sign(sessionClaims{Role: "CITIZEN", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}))
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewHMACVerifierRejectsShortSecret(t *testing.T) {
	_, err := NewHMACVerifier("short", "")
	require.Error(t, err)
}
