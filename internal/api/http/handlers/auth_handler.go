package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/auth"
	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/service"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// AuthHandler signs agents in.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		Agent:       agentResponse(result.Agent),
	}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("agent required")
	}
	return c.JSON(fiber.Map{"data": agentResponse(principal.Agent)})
}

func agentResponse(agent *domain.Agent) dto.AgentResponse {
	return dto.AgentResponse{ID: agent.ID, Name: agent.Name, Email: agent.Email}
}
