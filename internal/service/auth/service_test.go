package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirelink/internal/domain"
	"hirelink/internal/mocks"
	"hirelink/internal/service/auth"
)

func TestIssueAndValidate(t *testing.T) {
	svc := auth.NewService(new(mocks.UserRepository), "secret")
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, "a@b.c", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	svc := auth.NewService(new(mocks.UserRepository), "secret")
	other := auth.NewService(new(mocks.UserRepository), "other-secret")

	expired, err := svc.IssueAccessToken(uuid.New(), "", -time.Minute)
	require.NoError(t, err)
	foreign, err := other.IssueAccessToken(uuid.New(), "", time.Minute)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": uuid.New().String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"alg none":     none,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestGetUserByID(t *testing.T) {
	repo := new(mocks.UserRepository)
	svc := auth.NewService(repo, "secret")
	ctx := context.Background()
	known, missing := uuid.New(), uuid.New()

	repo.On("GetByID", ctx, known).Return(&domain.User{ID: known}, nil)
	repo.On("GetByID", ctx, missing).Return(nil, nil)

	user, err := svc.GetUserByID(ctx, known)
	require.NoError(t, err)
	assert.Equal(t, known, user.ID)

	_, err = svc.GetUserByID(ctx, missing)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
