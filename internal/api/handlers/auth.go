package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/contentforge/seo_editor/internal/api/middleware"
	"github.com/contentforge/seo_editor/internal/config"
)

// AuthHandler issues editor session tokens
type AuthHandler struct {
	Config *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{Config: cfg}
}

// CreateSession issues a new anonymous editor session token
func (h *AuthHandler) CreateSession(c *fiber.Ctx) error {
	sessionID := uuid.New()

	token, err := middleware.GenerateSessionToken(sessionID, h.Config.JWTSecret, h.Config.JWTExpiration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create session token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"session_id": sessionID,
			"token":      token,
			"expires_in": int(h.Config.JWTExpiration.Seconds()),
		},
	})
}
