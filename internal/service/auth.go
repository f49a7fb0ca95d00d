package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"linkbio/internal/core/auth"
	"linkbio/internal/core/errs"
	"linkbio/internal/domain"
	"linkbio/pkg/dto"
	"linkbio/pkg/utils"
)

const (
	msgCredentialsRequired = "Username and password are required"
	msgUsernameTaken       = "Username already exists"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidToken        = "Forbidden: Invalid token"
)

// dummyHash is compared against when the username is unknown so both login
// failures spend one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := utils.HashPassword("linkbio-dummy-password")
	return h
})

type AuthService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
}

func NewAuthService(users domain.UserRepository, jwt *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwt: jwt}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	const op = "auth.Register"
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errs.BadRequest(op, msgCredentialsRequired)
	}

	switch _, err := s.users.FindByUsername(ctx, username); {
	case err == nil:
		return nil, errs.Conflict(op, msgUsernameTaken)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, errs.Internalf(op, "Error checking database", err)
	}

	hash, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errs.BadRequest(op, "Password is too long")
	}
	if err != nil {
		return nil, errs.Internalf(op, "Error processing registration", err)
	}

	u := &domain.User{
		Username:        username,
		PasswordHash:    hash,
		ThemePreference: map[string]any{dto.ThemeKey: string(dto.ThemeSystem)},
	}
	if err := s.users.Create(ctx, u); err != nil {
		// lost a race with a concurrent register
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, errs.Conflict(op, msgUsernameTaken)
		}
		return nil, errs.Internalf(op, "Error processing registration", err)
	}
	return s.respond(op, u)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	const op = "auth.Login"
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errs.BadRequest(op, msgCredentialsRequired)
	}

	u, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		utils.CheckPassword(password, dummyHash())
		return nil, errs.Unauthorized(op, msgInvalidCredentials)
	case err != nil:
		return nil, errs.Internalf(op, "Error checking database", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, errs.Unauthorized(op, msgInvalidCredentials)
	}
	return s.respond(op, u)
}

// VerifyToken returns the user id a bearer token was issued for.
func (s *AuthService) VerifyToken(token string) (uint64, error) {
	c, err := s.jwt.Parse(token)
	if err != nil {
		return 0, errs.E(errs.KindForbidden, "auth.VerifyToken", msgInvalidToken, err)
	}
	return c.UserID, nil
}

func (s *AuthService) respond(op string, u *domain.User) (*dto.AuthResponse, error) {
	tok, err := s.jwt.Issue(u.ID)
	if err != nil {
		return nil, errs.Internalf(op, "Error issuing token", err)
	}
	return &dto.AuthResponse{Token: tok, User: u.Identity()}, nil
}
