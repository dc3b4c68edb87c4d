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

type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *database.MongoDB) *MessageRepository {
	return &MessageRepository{coll: db.DB.Collection("messages")}
}

func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}}},
	})
	return err
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return &msg, nil
}

// FindByChat returns up to limit messages before the given time,
// oldest first within the page. A zero before means "latest page".
func (r *MessageRepository) FindByChat(ctx context.Context, chatID primitive.ObjectID, before time.Time, limit int64) ([]models.Message, error) {
	filter := bson.M{"chat": chatID}
	if !before.IsZero() {
		filter["createdAt"] = bson.M{"$lt": before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cur.Close(ctx)

	var messages []models.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	// Newest-first from the store, oldest-first for rendering
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	now := time.Now()
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"content":   content,
			"isEdited":  true,
			"editedAt":  now,
			"updatedAt": now,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddReaction records the reaction unless the same (user, emoji) pair
// already exists.
func (r *MessageRepository) AddReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"reactions": bson.M{
				"$not": bson.M{"$elemMatch": bson.M{"user": userID, "emoji": emoji}},
			},
		},
		bson.M{
			"$push": bson.M{"reactions": models.Reaction{
				UserID:    userID,
				Emoji:     emoji,
				CreatedAt: time.Now(),
			}},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the message is gone or the reaction already exists;
		// distinguish so callers can 404 correctly.
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return ferr
		}
	}
	return nil
}

func (r *MessageRepository) RemoveReaction(ctx context.Context, id, userID primitive.ObjectID, emoji string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"reactions": bson.M{"user": userID, "emoji": emoji}},
	})
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRead adds a read receipt for the user to every message in the
// chat they have not read yet, excluding their own messages.
func (r *MessageRepository) MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{
			"chat":        chatID,
			"sender":      bson.M{"$ne": userID},
			"readBy.user": bson.M{"$ne": userID},
		},
		bson.M{
			"$push": bson.M{"readBy": models.ReadReceipt{UserID: userID, ReadAt: time.Now()}},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}
