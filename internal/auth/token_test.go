package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("secret", "interview-scheduling", time.Hour)
	subject := uuid.New()

	raw, expires, err := tokens.Issue(subject, RolePanel)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	p, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, subject, p.Subject)
	assert.Equal(t, RolePanel, p.Role)
	assert.True(t, p.HasRole(RoleHR, RolePanel))
	assert.False(t, p.HasRole(RoleAdmin))
}

func TestVerifyRejects(t *testing.T) {
	tokens := NewTokens("secret", "interview-scheduling", time.Hour)
	subject := uuid.New()

	valid, _, err := tokens.Issue(subject, RoleHR)
	require.NoError(t, err)

	otherKey, _, err := NewTokens("other", "interview-scheduling", time.Hour).Issue(subject, RoleHR)
	require.NoError(t, err)

	otherIssuer, _, err := NewTokens("secret", "someone-else", time.Hour).Issue(subject, RoleHR)
	require.NoError(t, err)

	expired := NewTokens("secret", "interview-scheduling", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredRaw, _, err := expired.Issue(subject, RoleHR)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			Issuer:    "interview-scheduling",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleHR,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "interview-scheduling",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong key":     otherKey,
		"wrong issuer":  otherIssuer,
		"expired":       expiredRaw,
		"unknown role":  badRole,
		"bad subject":   badSubject,
		"tampered":      tamper(valid, otherIssuer),
		"not a jwt":     "dXNlcjpocjoxNzAwMDAwMDAw",
		"unsigned none": "eyJhbGciOiJub25lIn0.eyJzdWIiOiJ4In0.",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = tokens.Verify("")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	_, _, err := NewTokens("secret", "iss", time.Hour).Issue(uuid.New(), "root")
	require.Error(t, err)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	p := Principal{Subject: uuid.New(), Role: RoleAdmin}
	got, ok := FromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}

// tamper swaps the payload of signed for the one from donor.
func tamper(signed, donor string) string {
	a := strings.Split(signed, ".")
	b := strings.Split(donor, ".")
	return a[0] + "." + b[1] + "." + a[2]
}
