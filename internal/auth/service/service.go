// Package service implements login and registration against the
// consultant registry.
package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dealership_crm_backend/internal/auth/token"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/apperr"
)

// Credentials is the consultant-store surface auth needs.
type Credentials interface {
	GetCredentials(ctx context.Context, email string) (domain.Consultant, string, error)
	Create(ctx context.Context, name, email, role, passwordHash string) (domain.Consultant, error)
}

type Service struct {
	credentials Credentials
	issuer      *token.Issuer
}

func New(credentials Credentials, issuer *token.Issuer) *Service {
	return &Service{credentials: credentials, issuer: issuer}
}

// Session is a successful login result.
type Session struct {
	Consultant  domain.Consultant
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies credentials and issues an access token. Inactive
// consultants cannot sign in.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	consultant, hash, err := s.credentials.GetCredentials(ctx, strings.TrimSpace(email))
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Session{}, apperr.Unauthorized("invalid credentials")
	}
	if !consultant.IsActive {
		return Session{}, apperr.Forbidden("account is deactivated")
	}

	accessToken, expiresAt, err := s.issuer.IssueAccess(consultant.ID, []string{consultant.Role})
	if err != nil {
		return Session{}, apperr.Internal("auth.Login", err)
	}
	return Session{Consultant: consultant, AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

// Register creates a consultant account. Role assignment is the
// calling admin's decision; self-registration always gets consultant.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (domain.Consultant, error) {
	if role != "admin" && role != "consultant" {
		return domain.Consultant{}, apperr.Validation("role must be admin or consultant")
	}
	if len(password) < 8 {
		return domain.Consultant{}, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Consultant{}, apperr.Internal("auth.Register", err)
	}
	return s.credentials.Create(ctx, strings.TrimSpace(name), strings.TrimSpace(email), role, string(hash))
}
