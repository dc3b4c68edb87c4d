package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message content types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// FileMeta describes an uploaded attachment.
type FileMeta struct {
	Filename     string `bson:"filename" json:"filename"`
	OriginalName string `bson:"originalName" json:"originalName"`
	Size         int64  `bson:"size" json:"size"`
	MimeType     string `bson:"mimetype,omitempty" json:"mimetype,omitempty"`
	URL          string `bson:"url" json:"url"`
}

// ReadReceipt marks a message as read by a user.
type ReadReceipt struct {
	UserID primitive.ObjectID `bson:"user" json:"user"`
	ReadAt time.Time          `bson:"readAt" json:"readAt"`
}

// Reaction is a single emoji reaction by a user.
type Reaction struct {
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Emoji     string             `bson:"emoji" json:"emoji"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Message is a chat message document.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID      primitive.ObjectID `bson:"chat" json:"chatId"`
	SenderID    primitive.ObjectID `bson:"sender" json:"senderId"`
	Content     string             `bson:"content,omitempty" json:"content,omitempty"`
	MessageType string             `bson:"messageType" json:"messageType"`
	File        *FileMeta          `bson:"file,omitempty" json:"file,omitempty"`
	ReadBy      []ReadReceipt      `bson:"readBy,omitempty" json:"readBy,omitempty"`
	Reactions   []Reaction         `bson:"reactions,omitempty" json:"reactions,omitempty"`
	IsEdited    bool               `bson:"isEdited" json:"isEdited"`
	EditedAt    *time.Time         `bson:"editedAt,omitempty" json:"editedAt,omitempty"`
	ReplyTo     primitive.ObjectID `bson:"replyTo,omitempty" json:"replyTo,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsReadBy reports whether the user already has a read receipt.
func (m *Message) IsReadBy(userID primitive.ObjectID) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

type SendMessageRequest struct {
	ChatID      string    `json:"chatId" binding:"required"`
	Content     string    `json:"content" binding:"omitempty,max=1000"`
	MessageType string    `json:"messageType,omitempty" binding:"omitempty,oneof=text image file"`
	File        *FileMeta `json:"file,omitempty"`
	ReplyTo     string    `json:"replyTo,omitempty"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}
