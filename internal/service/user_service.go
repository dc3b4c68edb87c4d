package service

import (
	"context"
	"errors"

	"chatterbox/internal/models"
	"chatterbox/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Presence reports live online state; satisfied by the realtime
// connection registry.
type Presence interface {
	IsOnline(userID string) bool
}

// UserDirectory is the slice of the user repository used here.
type UserDirectory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, exclude primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	TouchLastSeen(ctx context.Context, id primitive.ObjectID) error
}

type UserService struct {
	users    UserDirectory
	presence Presence
}

func NewUserService(users UserDirectory, presence Presence) *UserService {
	return &UserService{users: users, presence: presence}
}

// List returns every other user decorated with live presence.
func (s *UserService) List(ctx context.Context, currentUserID primitive.ObjectID) ([]models.PublicUser, error) {
	users, err := s.users.List(ctx, currentUserID)
	if err != nil {
		return nil, err
	}

	result := make([]models.PublicUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].Public(s.presence.IsOnline(users[i].ID.Hex())))
	}
	return result, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	pub := user.Public(s.presence.IsOnline(user.ID.Hex()))
	return &pub, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req models.UpdateProfileRequest) error {
	updates := bson.M{}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if len(updates) == 0 {
		return ErrValidation
	}

	err := s.users.UpdateProfile(ctx, id, updates)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrEmailTaken
	}
	return err
}

// RecordLastSeen stamps the stored last-seen time when a user's
// presence drops to offline.
func (s *UserService) RecordLastSeen(ctx context.Context, userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrValidation
	}
	return s.users.TouchLastSeen(ctx, id)
}
