package handlers

import (
	"net/http"

	"chatterbox/internal/models"
	"chatterbox/internal/service"
	"chatterbox/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth     *service.AuthService
	presence service.Presence
}

func NewAuthHandler(auth *service.AuthService, presence service.Presence) *AuthHandler {
	return &AuthHandler{auth: auth, presence: presence}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":  user.Public(false),
		"token": token,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}

	// Online reflects a live socket, which a fresh REST login does
	// not have yet.
	response.Success(c, http.StatusOK, gin.H{
		"user":  user.Public(h.presence.IsOnline(user.ID.Hex())),
		"token": token,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.Error(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, http.StatusOK, user.Public(h.presence.IsOnline(user.ID.Hex())))
}
