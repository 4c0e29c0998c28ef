package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/assistant"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// FunctionInvoker calls a named remote function.
type FunctionInvoker interface {
	Invoke(ctx context.Context, name, message string) (string, error)
}

// FunctionsHandler proxies calls to remote functions such as the AI model.
type FunctionsHandler struct {
	invoker FunctionInvoker
	allowed map[string]struct{}
}

// NewFunctionsHandler constructs handler. Only the listed function names may be invoked.
func NewFunctionsHandler(invoker FunctionInvoker, allowed ...string) *FunctionsHandler {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	return &FunctionsHandler{invoker: invoker, allowed: set}
}

// Invoke POST /functions/:name.
func (h *FunctionsHandler) Invoke(c *fiber.Ctx) error {
	name := c.Params("name")
	if _, ok := h.allowed[name]; !ok {
		return apperrors.NewNotFound("function", map[string]any{"name": name})
	}
	var req dto.FunctionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewValidationError("message must not be empty", map[string]any{"field": "message"})
	}

	response, err := h.invoker.Invoke(c.UserContext(), name, req.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrNotConfigured) {
			return apperrors.NewUpstreamError("ai function endpoint not configured", err)
		}
		return apperrors.NewUpstreamError("function invocation failed", err)
	}
	return c.JSON(fiber.Map{"data": dto.FunctionResponse{Response: response}})
}
