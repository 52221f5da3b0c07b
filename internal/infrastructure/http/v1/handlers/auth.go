package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/auth"
	"takoyaki/internal/infrastructure/http/v1/dto"
	"takoyaki/internal/infrastructure/http/v1/middleware"
)

// AuthHandler serves login and operator account management.
type AuthHandler struct {
	BaseHandler
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        dto.FromUser(user),
	})
}

// Register creates a new operator account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := id.Parse(h.GetUserID(c))
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid token subject"))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(user))
}

// ListUsers returns all operator accounts.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		out = append(out, dto.FromUser(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

// SetActive enables or disables an account.
func (h *AuthHandler) SetActive(c *gin.Context) {
	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid user id"))
		return
	}

	var req dto.SetActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetActive(c.Request.Context(), userID, req.Active); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "user updated")
}

// RegisterRoutes wires auth endpoints. Login is public, the rest
// require a token; account management is admin only.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)

	g := protected.Group("/auth")
	g.GET("/me", h.Me)

	admin := g.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/register", h.Register)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:id/active", h.SetActive)
}
