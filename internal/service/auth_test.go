package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrisense-ai/agrisense-backend/internal/middleware"
	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// recordingUserStore keeps the created user so Signin can verify it.
type recordingUserStore struct {
	fakeUserStore
	created *model.User
}

func (r *recordingUserStore) Create(_ context.Context, u *model.User) error {
	if r.err != nil {
		return r.err
	}
	r.created = u
	return nil
}

func (r *recordingUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if r.created != nil && r.created.Email == email {
		return r.created, nil
	}
	return nil, store.ErrNotFound
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	const secret = "test-secret"

	t.Run("signup hashes the password and signs a token", func(t *testing.T) {
		users := &recordingUserStore{}
		svc := NewAuthService(users, secret, time.Hour, logger.NewNop())

		resp, err := svc.Signup(ctx, &model.SignupRequest{
			Name:       "田中",
			Email:      "tanaka@example.com",
			Password:   "secret-pass",
			City:       "つくば市",
			Prefecture: "茨城県",
		})
		require.NoError(t, err)

		require.NotNil(t, users.created)
		assert.NotEqual(t, "secret-pass", users.created.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.created.PasswordHash), []byte("secret-pass")))
		require.NotNil(t, users.created.City)
		assert.Equal(t, "つくば市", *users.created.City)

		claims := &middleware.Claims{}
		token, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, users.created.ID.String(), claims.Subject)
		assert.Equal(t, "tanaka@example.com", claims.Email)
	})

	t.Run("signup without location leaves pointers nil", func(t *testing.T) {
		users := &recordingUserStore{}
		svc := NewAuthService(users, secret, time.Hour, logger.NewNop())

		_, err := svc.Signup(ctx, &model.SignupRequest{
			Name: "佐藤", Email: "sato@example.com", Password: "password",
		})
		require.NoError(t, err)
		assert.Nil(t, users.created.City)
		assert.Nil(t, users.created.Prefecture)
	})

	t.Run("duplicate email propagates", func(t *testing.T) {
		users := &recordingUserStore{fakeUserStore: fakeUserStore{err: store.ErrDuplicateEmail}}
		svc := NewAuthService(users, secret, time.Hour, logger.NewNop())

		_, err := svc.Signup(ctx, &model.SignupRequest{
			Name: "田中", Email: "dup@example.com", Password: "password",
		})
		assert.ErrorIs(t, err, store.ErrDuplicateEmail)
	})

	t.Run("signin round trip", func(t *testing.T) {
		users := &recordingUserStore{}
		svc := NewAuthService(users, secret, time.Hour, logger.NewNop())

		_, err := svc.Signup(ctx, &model.SignupRequest{
			Name: "田中", Email: "tanaka@example.com", Password: "secret-pass",
		})
		require.NoError(t, err)

		resp, err := svc.Signin(ctx, &model.SigninRequest{
			Email: "tanaka@example.com", Password: "secret-pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "tanaka@example.com", resp.User.Email)
	})

	t.Run("wrong password and unknown email look alike", func(t *testing.T) {
		users := &recordingUserStore{}
		svc := NewAuthService(users, secret, time.Hour, logger.NewNop())

		_, err := svc.Signup(ctx, &model.SignupRequest{
			Name: "田中", Email: "tanaka@example.com", Password: "secret-pass",
		})
		require.NoError(t, err)

		_, wrongPass := svc.Signin(ctx, &model.SigninRequest{Email: "tanaka@example.com", Password: "nope"})
		_, noUser := svc.Signin(ctx, &model.SigninRequest{Email: "nobody@example.com", Password: "nope"})

		assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
		assert.ErrorIs(t, noUser, ErrInvalidCredentials)
		assert.Equal(t, wrongPass, noUser)
	})
}
