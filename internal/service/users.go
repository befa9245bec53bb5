package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"taskflow/internal/domain"
)

// RegisterUser creates an account. Passwords are out of scope: identity is
// asserted by the token issuer.
func (s *Service) RegisterUser(ctx context.Context, email, name string, role domain.UserRole) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Invalid("email", "must be a valid address")
	}
	if role == "" {
		role = domain.UserRoleMember
	}
	if !role.Valid() {
		return nil, domain.Invalid("role", "must be owner or member")
	}
	u := &domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  strings.TrimSpace(name),
		Role:  role,
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.record(ctx, u.ID, domain.ActionCreated, domain.UserTarget(u.ID), "Registered account")
	return u, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

// FindUserByEmail returns a user by email.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
