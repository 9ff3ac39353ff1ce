package service

import (
	"baisics/coach-api/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewAuthService(repos.Users, "test-secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Xia", Email: "Xia@Example.com", Password: "correct horse", Role: domain.RoleClient})
	require.NoError(t, err)
	assert.Equal(t, "xia@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Xia", Email: "xia@example.com", Password: "another one", Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{Name: "Yan", Email: "yan@example.com", Password: "short", Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Name: "Yan", Email: "yan@example.com", Password: "long enough", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Login(ctx, "xia@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	token, logged, err := svc.Login(ctx, "xia@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	repos := newTestRepos(t)
	svc := NewAuthService(repos.Users, "test-secret", time.Hour)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "abc",
		Role:             domain.RoleCoach,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "coach-api", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "abc",
		Role:             domain.RoleCoach,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "coach-api", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	signed, err = expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
