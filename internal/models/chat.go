package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a conversation document: a direct chat between two users or a
// named group with an admin.
type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name,omitempty" json:"name,omitempty"`
	IsGroupChat  bool                 `bson:"isGroupChat" json:"isGroupChat"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Admin        primitive.ObjectID   `bson:"admin,omitempty" json:"admin,omitempty"`
	LastMessage  primitive.ObjectID   `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	ChatImage    string               `bson:"chatImage,omitempty" json:"chatImage,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsParticipant reports whether the user belongs to this chat.
func (c *Chat) IsParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// AddParticipant appends the user if not already present.
func (c *Chat) AddParticipant(userID primitive.ObjectID) {
	if !c.IsParticipant(userID) {
		c.Participants = append(c.Participants, userID)
	}
}

// RemoveParticipant drops the user from the participant list.
func (c *Chat) RemoveParticipant(userID primitive.ObjectID) {
	filtered := c.Participants[:0]
	for _, p := range c.Participants {
		if p != userID {
			filtered = append(filtered, p)
		}
	}
	c.Participants = filtered
}

type CreateChatRequest struct {
	ParticipantID  string   `json:"participantId,omitempty"`
	IsGroupChat    bool     `json:"isGroupChat"`
	Name           string   `json:"name,omitempty" binding:"omitempty,max=50"`
	ParticipantIDs []string `json:"participantIds,omitempty"`
}

type UpdateChatRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=50"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=200"`
}

type AddParticipantRequest struct {
	UserID string `json:"userId" binding:"required"`
}
