package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chatterbox/internal/cache"
	"chatterbox/internal/events"
	"chatterbox/internal/models"
	"chatterbox/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const historyPageSize = 50

// MessageStore is the slice of the message repository used here.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	FindByChat(ctx context.Context, chatID primitive.ObjectID, before time.Time, limit int64) ([]models.Message, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) error
	RemoveReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) error
	MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error
}

// ChatLookup authorizes message operations against chat membership.
type ChatLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	SetLastMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error
}

// HistoryCache caches the latest page of a chat's history.
type HistoryCache interface {
	GetRecent(ctx context.Context, chatID string) ([]models.Message, error)
	SetRecent(ctx context.Context, chatID string, messages []models.Message) error
	Invalidate(ctx context.Context, chatID string) error
}

// EventPublisher forwards persisted-message events to the event bus.
type EventPublisher interface {
	PublishMessageEvent(ev events.MessageEvent) error
}

type MessageService struct {
	messages  MessageStore
	chats     ChatLookup
	cache     HistoryCache
	publisher EventPublisher
}

func NewMessageService(messages MessageStore, chats ChatLookup, historyCache HistoryCache, publisher EventPublisher) *MessageService {
	return &MessageService{
		messages:  messages,
		chats:     chats,
		cache:     historyCache,
		publisher: publisher,
	}
}

// Send persists a message. Realtime fan-out is not triggered here: the
// client emits a send-message socket event after this call succeeds,
// and offline recipients pick the message up from history.
func (s *MessageService) Send(ctx context.Context, senderID primitive.ObjectID, req models.SendMessageRequest) (*models.Message, error) {
	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid chatId", ErrValidation)
	}
	if err := s.requireParticipant(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if req.Content == "" && req.File == nil {
		return nil, fmt.Errorf("%w: a message needs content or a file", ErrValidation)
	}

	msg := &models.Message{
		ChatID:      chatID,
		SenderID:    senderID,
		Content:     req.Content,
		MessageType: messageType,
		File:        req.File,
	}
	if req.ReplyTo != "" {
		replyTo, err := primitive.ObjectIDFromHex(req.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid replyTo", ErrValidation)
		}
		msg.ReplyTo = replyTo
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.chats.SetLastMessage(ctx, chatID, msg.ID); err != nil {
		slog.Warn("failed to update chat last message", "chatID", req.ChatID, "error", err)
	}
	if err := s.cache.Invalidate(ctx, req.ChatID); err != nil {
		slog.Warn("failed to invalidate message cache", "chatID", req.ChatID, "error", err)
	}

	// Best-effort: the durable store already holds the message.
	if err := s.publisher.PublishMessageEvent(events.MessageEvent{
		MessageID:   msg.ID.Hex(),
		ChatID:      req.ChatID,
		SenderID:    senderID.Hex(),
		MessageType: messageType,
		CreatedAt:   msg.CreatedAt,
	}); err != nil {
		slog.Warn("failed to publish message event", "messageID", msg.ID.Hex(), "error", err)
	}

	return msg, nil
}

// History returns a page of chat messages, oldest first. The latest
// page is served cache-aside from redis.
func (s *MessageService) History(ctx context.Context, chatID, userID primitive.ObjectID, before time.Time) ([]models.Message, error) {
	if err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}

	latestPage := before.IsZero()
	if latestPage {
		if cached, err := s.cache.GetRecent(ctx, chatID.Hex()); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("message cache read failed", "chatID", chatID.Hex(), "error", err)
		}
	}

	messages, err := s.messages.FindByChat(ctx, chatID, before, historyPageSize)
	if err != nil {
		return nil, err
	}

	if latestPage {
		if err := s.cache.SetRecent(ctx, chatID.Hex(), messages); err != nil {
			slog.Warn("message cache write failed", "chatID", chatID.Hex(), "error", err)
		}
	}
	return messages, nil
}

// Edit changes message content; sender only.
func (s *MessageService) Edit(ctx context.Context, messageID, userID primitive.ObjectID, content string) (*models.Message, error) {
	msg, err := s.findOwned(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.messages.UpdateContent(ctx, messageID, content); err != nil {
		return nil, err
	}
	s.invalidate(ctx, msg.ChatID)
	return s.messages.FindByID(ctx, messageID)
}

// Delete removes a message; sender only.
func (s *MessageService) Delete(ctx context.Context, messageID, userID primitive.ObjectID) error {
	msg, err := s.findOwned(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}
	s.invalidate(ctx, msg.ChatID)
	return nil
}

// React adds an emoji reaction; any chat participant may react.
func (s *MessageService) React(ctx context.Context, messageID, userID primitive.ObjectID, emoji string) error {
	msg, err := s.find(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.requireParticipant(ctx, msg.ChatID, userID); err != nil {
		return err
	}
	if err := s.messages.AddReaction(ctx, messageID, userID, emoji); err != nil {
		return err
	}
	s.invalidate(ctx, msg.ChatID)
	return nil
}

// Unreact removes the user's emoji reaction.
func (s *MessageService) Unreact(ctx context.Context, messageID, userID primitive.ObjectID, emoji string) error {
	msg, err := s.find(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.messages.RemoveReaction(ctx, messageID, userID, emoji); err != nil {
		return err
	}
	s.invalidate(ctx, msg.ChatID)
	return nil
}

// MarkRead records read receipts for every unread message in the chat.
func (s *MessageService) MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error {
	if err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return err
	}
	if err := s.messages.MarkRead(ctx, chatID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, chatID)
	return nil
}

func (s *MessageService) requireParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !chat.IsParticipant(userID) {
		return ErrForbidden
	}
	return nil
}

func (s *MessageService) find(ctx context.Context, messageID primitive.ObjectID) (*models.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) findOwned(ctx context.Context, messageID, userID primitive.ObjectID) (*models.Message, error) {
	msg, err := s.find(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, ErrForbidden
	}
	return msg, nil
}

func (s *MessageService) invalidate(ctx context.Context, chatID primitive.ObjectID) {
	if err := s.cache.Invalidate(ctx, chatID.Hex()); err != nil {
		slog.Warn("failed to invalidate message cache", "chatID", chatID.Hex(), "error", err)
	}
}
