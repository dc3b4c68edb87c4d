package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatterbox/internal/database"
	"chatterbox/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChatRepository struct {
	coll *mongo.Collection
}

func NewChatRepository(db *database.MongoDB) *ChatRepository {
	return &ChatRepository{coll: db.DB.Collection("chats")}
}

func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	return err
}

func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, chat)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	chat.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}
	return &chat, nil
}

// FindForUser returns the user's chats, most recently active first.
func (r *ChatRepository) FindForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find chats: %w", err)
	}
	defer cur.Close(ctx)

	var chats []models.Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	return chats, nil
}

// FindDirectChat returns the existing one-to-one chat between two
// users, or ErrNotFound.
func (r *ChatRepository) FindDirectChat(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{
		"isGroupChat":  false,
		"participants": bson.M{"$all": bson.A{a, b}, "$size": 2},
	}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find direct chat: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	updates["updatedAt"] = time.Now()
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update chat: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ChatRepository) AddParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error {
	res, err := r.coll.UpdateByID(ctx, chatID, bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ChatRepository) RemoveParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error {
	res, err := r.coll.UpdateByID(ctx, chatID, bson.M{
		"$pull": bson.M{"participants": userID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLastMessage records the chat's latest message and bumps activity.
func (r *ChatRepository) SetLastMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, chatID, bson.M{
		"$set": bson.M{"lastMessage": messageID, "updatedAt": time.Now()},
	})
	return err
}
