package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/supporthub/support-dashboard/internal/domain"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

type agentMap map[string]*domain.Agent

func (m agentMap) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	if agent, ok := m[id]; ok {
		return agent, nil
	}
	return nil, pgx.ErrNoRows
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expires, err := tm.GenerateToken("agent-1", "Grace")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(expires) <= 0 {
		t.Fatal("expiry should be in the future")
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.AgentID() != "agent-1" || claims.Name != "Grace" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	other := NewTokenManager("other", 1)
	foreign, _, _ := other.GenerateToken("agent-1", "")

	expired := NewTokenManager("secret", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.GenerateToken("agent-1", "")

	for name, token := range map[string]string{"garbage": "not-a-jwt", "wrong key": foreign, "expired": stale} {
		t.Run(name, func(t *testing.T) {
			if _, err := tm.ParseToken(token); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatal(err)
	}
	if ComparePassword(hash, "hunter2") != nil {
		t.Fatal("expected match")
	}
	if ComparePassword(hash, "wrong") == nil {
		t.Fatal("expected mismatch")
	}
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	agents := agentMap{
		"a1": {ID: "a1", Name: "Grace", Active: true},
		"a2": {ID: "a2", Name: "Off", Active: false},
	}
	mw := NewAuthMiddleware(tm, agents)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(apperrors.ToDomainError(err).HTTPStatus).SendString(err.Error())
	}})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.SendString(principal.Agent.DisplayName())
	})

	valid, _, _ := tm.GenerateToken("a1", "Grace")
	inactive, _, _ := tm.GenerateToken("a2", "Off")
	unknown, _, _ := tm.GenerateToken("zz", "")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"unknown agent", "Bearer " + unknown, fiber.StatusUnauthorized},
		{"inactive agent", "Bearer " + inactive, fiber.StatusForbidden},
		{"valid", "Bearer " + valid, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
