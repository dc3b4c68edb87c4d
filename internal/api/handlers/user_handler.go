package handlers

import (
	"net/http"

	"chatterbox/internal/models"
	"chatterbox/internal/service"
	"chatterbox/pkg/response"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users. Every other user is returned with live
// presence attached.
func (h *UserHandler) List(c *gin.Context) {
	currentID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.users.List(c.Request.Context(), currentID)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, users)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	currentID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), currentID, req); err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}

	user, err := h.users.Get(c.Request.Context(), currentID)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, user)
}

// currentUserID reads the authenticated user id the auth middleware
// stored in the context.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}
