package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,in=admin,shop_owner,seller,buyer"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResult is returned by register, login and refresh.
type TokenResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	User      *models.User `json:"user,omitempty"`
}

type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.TokenService
}

func NewAuthService(users *repositories.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) issue(u *models.User) (TokenResult, error) {
	token, err := s.tokens.Issue(auth.Principal{ID: u.ID, Role: u.Role})
	if err != nil {
		return TokenResult{}, err
	}
	return TokenResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      u,
	}, nil
}

// Register creates a user with the role they asked for and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (TokenResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return TokenResult{}, storageErr("register", err)
	}
	if taken {
		return TokenResult{}, invalid("email", "The email has already been taken.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return TokenResult{}, fmt.Errorf("register: hash password: %w", err)
	}

	user := &models.User{Name: in.Name, Email: email, Password: hash, Role: in.Role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return TokenResult{}, invalid("email", "The email has already been taken.")
		}
		return TokenResult{}, storageErr("register", err)
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (TokenResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TokenResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenResult{}, storageErr("login", err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return TokenResult{}, ErrInvalidCredentials
	}
	return s.issue(&user)
}

// Me returns the user behind p. A token for a deleted user is unauthorized.
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (models.User, error) {
	user, err := s.users.FindByID(ctx, p.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUnauthorized
	}
	if err != nil {
		return models.User{}, storageErr("me", err)
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Refresh swaps token for a new one; the old token stops working.
func (s *AuthService) Refresh(ctx context.Context, token string) (TokenResult, error) {
	fresh, _, err := s.tokens.Refresh(ctx, token)
	if err != nil {
		return TokenResult{}, err
	}
	return TokenResult{
		Token:     fresh,
		TokenType: "bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}
