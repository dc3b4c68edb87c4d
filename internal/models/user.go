package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account document stored in the users collection.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	LastSeen  time.Time          `bson:"lastSeen" json:"lastSeen"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the API shape of a user, decorated with live presence.
type PublicUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Avatar   string    `json:"avatar,omitempty"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}

// Public converts the document to its API shape. Online is derived from
// the live connection registry, never from a stored status field.
func (u *User) Public(online bool) PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Online:   online,
		LastSeen: u.LastSeen,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" binding:"omitempty,min=3,max=30"`
	Avatar   *string `json:"avatar,omitempty"`
}
