package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/auth"
	"github.com/supporthub/support-dashboard/internal/config"
	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/repository"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// AuthService signs agents in.
type AuthService struct {
	agents     repository.AgentRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	Agent     *domain.Agent
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, agents repository.AgentRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{agents: agents, tokenMgr: tokens, bcryptCost: cfg.BcryptCost, logger: logger}
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !agent.Active {
		return nil, apperrors.NewForbidden("agent is deactivated")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(agent.ID, agent.Name)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Agent: agent, Token: token, ExpiresAt: expiresAt}, nil
}

// EnsureAgent creates the agent when no agent with email exists yet. It is used to bootstrap
// the first operator account from configuration.
func (s *AuthService) EnsureAgent(ctx context.Context, name, email, password string) (*domain.Agent, bool, error) {
	existing, err := s.agents.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, false, err
	}
	agent := &domain.Agent{Name: name, Email: email, PasswordHash: hash, Active: true}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, false, err
	}
	s.logger.Info("bootstrap agent created", zap.String("agent_id", agent.ID), zap.String("email", agent.Email))
	return agent, true, nil
}
