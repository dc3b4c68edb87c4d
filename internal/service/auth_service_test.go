package service

import (
	"context"
	"testing"
	"time"

	"chatterbox/internal/models"
	"chatterbox/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserStore struct {
	byID    map[primitive.ObjectID]*models.User
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[primitive.ObjectID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return repository.ErrDuplicate
	}
	user.ID = primitive.NewObjectID()
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func newTestAuthService() (*AuthService, *fakeUserStore) {
	store := newFakeUserStore()
	return NewAuthService(store, "test-secret", time.Hour), store
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.NotEqual(t, "hunter22", user.Password, "password must be stored hashed")

	loggedIn, token, err := svc.Login(ctx, models.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, models.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthTokenRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), userID)

	_, err = svc.ValidateToken(token + "tampered")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	other := NewAuthService(newFakeUserStore(), "other-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "a token signed with another secret must be rejected")
}
