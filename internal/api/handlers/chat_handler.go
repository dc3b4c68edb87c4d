package handlers

import (
	"net/http"

	"chatterbox/internal/models"
	"chatterbox/internal/service"
	"chatterbox/pkg/response"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// Create handles POST /api/chats. Creating a direct chat that already
// exists returns the existing chat with 200 instead of 201.
func (h *ChatHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	chat, created, err := h.chats.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, chat)
}

// List handles GET /api/chats.
func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	chats, err := h.chats.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, chats)
}

// Get handles GET /api/chats/:id.
func (h *ChatHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	chat, err := h.chats.Get(c.Request.Context(), chatID, userID)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, chat)
}

// Update handles PUT /api/chats/:id.
func (h *ChatHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	chat, err := h.chats.Update(c.Request.Context(), chatID, userID, req)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, chat)
}

// AddParticipant handles POST /api/chats/:id/participants.
func (h *ChatHandler) AddParticipant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req models.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	chat, err := h.chats.AddParticipant(c.Request.Context(), chatID, userID, memberID)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, chat)
}

// RemoveParticipant handles DELETE /api/chats/:id/participants/:userId.
func (h *ChatHandler) RemoveParticipant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	memberID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	chat, err := h.chats.RemoveParticipant(c.Request.Context(), chatID, userID, memberID)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, chat)
}

func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
