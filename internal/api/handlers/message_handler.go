package handlers

import (
	"net/http"
	"time"

	"chatterbox/internal/models"
	"chatterbox/internal/service"
	"chatterbox/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send handles POST /api/messages. Realtime fan-out happens over the
// socket after this call persists the message.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

// History handles GET /api/chats/:id/messages. An optional before
// query parameter (RFC 3339) pages further back.
func (h *MessageHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var before time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid before timestamp")
			return
		}
		before = parsed
	}

	messages, err := h.messages.History(c.Request.Context(), chatID, userID, before)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, messages)
}

// Edit handles PUT /api/messages/:id.
func (h *MessageHandler) Edit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req models.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.messages.Edit(c.Request.Context(), messageID, userID, req.Content)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, msg)
}

// Delete handles DELETE /api/messages/:id.
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.messages.Delete(c.Request.Context(), messageID, userID); err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// React handles POST /api/messages/:id/reactions.
func (h *MessageHandler) React(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req models.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.messages.React(c.Request.Context(), messageID, userID, req.Emoji); err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reacted": true})
}

// Unreact handles DELETE /api/messages/:id/reactions/:emoji.
func (h *MessageHandler) Unreact(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	emoji := c.Param("emoji")
	if emoji == "" {
		response.Error(c, http.StatusBadRequest, "emoji is required")
		return
	}

	if err := h.messages.Unreact(c.Request.Context(), messageID, userID, emoji); err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// MarkRead handles POST /api/chats/:id/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), chatID, userID); err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}
