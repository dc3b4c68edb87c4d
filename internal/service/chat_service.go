package service

import (
	"context"
	"errors"
	"fmt"

	"chatterbox/internal/models"
	"chatterbox/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatStore is the slice of the chat repository used here.
type ChatStore interface {
	Create(ctx context.Context, chat *models.Chat) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
	FindDirectChat(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	AddParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error
	RemoveParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error
}

// ParticipantLookup verifies referenced users exist.
type ParticipantLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAllByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type ChatService struct {
	chats ChatStore
	users ParticipantLookup
}

func NewChatService(chats ChatStore, users ParticipantLookup) *ChatService {
	return &ChatService{chats: chats, users: users}
}

// Create builds a direct or group chat. Direct chats are deduplicated:
// an existing pair chat is returned instead of creating a second one.
func (s *ChatService) Create(ctx context.Context, creatorID primitive.ObjectID, req models.CreateChatRequest) (*models.Chat, bool, error) {
	if req.IsGroupChat {
		chat, err := s.createGroup(ctx, creatorID, req)
		return chat, true, err
	}
	return s.createDirect(ctx, creatorID, req)
}

func (s *ChatService) createDirect(ctx context.Context, creatorID primitive.ObjectID, req models.CreateChatRequest) (*models.Chat, bool, error) {
	if req.ParticipantID == "" {
		return nil, false, fmt.Errorf("%w: participantId is required", ErrValidation)
	}
	participantID, err := primitive.ObjectIDFromHex(req.ParticipantID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: invalid participantId", ErrValidation)
	}

	if _, err := s.users.FindByID(ctx, participantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	existing, err := s.chats.FindDirectChat(ctx, creatorID, participantID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	chat := &models.Chat{
		IsGroupChat:  false,
		Participants: []primitive.ObjectID{creatorID, participantID},
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, false, err
	}
	return chat, true, nil
}

func (s *ChatService) createGroup(ctx context.Context, creatorID primitive.ObjectID, req models.CreateChatRequest) (*models.Chat, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: group chats need a name", ErrValidation)
	}

	// Listing the creator or the same user twice must not produce a
	// duplicate participant entry.
	seen := map[primitive.ObjectID]struct{}{creatorID: {}}
	ids := make([]primitive.ObjectID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid participant id %q", ErrValidation, raw)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: group chats need at least 2 other participants", ErrValidation)
	}

	found, err := s.users.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, fmt.Errorf("%w: some participants not found", ErrValidation)
	}

	chat := &models.Chat{
		Name:         req.Name,
		IsGroupChat:  true,
		Participants: append(ids, creatorID),
		Admin:        creatorID,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListForUser returns the user's chats, most recently active first.
func (s *ChatService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	return s.chats.FindForUser(ctx, userID)
}

// Get returns the chat if the requester participates in it.
func (s *ChatService) Get(ctx context.Context, chatID, userID primitive.ObjectID) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !chat.IsParticipant(userID) {
		return nil, ErrForbidden
	}
	return chat, nil
}

// Update changes name/description. Group chats only allow the admin.
func (s *ChatService) Update(ctx context.Context, chatID, userID primitive.ObjectID, req models.UpdateChatRequest) (*models.Chat, error) {
	chat, err := s.Get(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat.IsGroupChat && chat.Admin != userID {
		return nil, ErrForbidden
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return nil, ErrValidation
	}

	if err := s.chats.Update(ctx, chatID, updates); err != nil {
		return nil, err
	}
	return s.chats.FindByID(ctx, chatID)
}

// AddParticipant adds a user to a group chat; admin only.
func (s *ChatService) AddParticipant(ctx context.Context, chatID, adminID, userID primitive.ObjectID) (*models.Chat, error) {
	chat, err := s.Get(ctx, chatID, adminID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, fmt.Errorf("%w: cannot add participants to a direct chat", ErrValidation)
	}
	if chat.Admin != adminID {
		return nil, ErrForbidden
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.chats.AddParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.chats.FindByID(ctx, chatID)
}

// RemoveParticipant removes a user from a group chat. The admin can
// remove anyone; everyone else can only remove themselves.
func (s *ChatService) RemoveParticipant(ctx context.Context, chatID, requesterID, userID primitive.ObjectID) (*models.Chat, error) {
	chat, err := s.Get(ctx, chatID, requesterID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, fmt.Errorf("%w: cannot remove participants from a direct chat", ErrValidation)
	}
	if chat.Admin != requesterID && requesterID != userID {
		return nil, ErrForbidden
	}

	if err := s.chats.RemoveParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.chats.FindByID(ctx, chatID)
}
