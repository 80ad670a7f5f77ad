package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"training_tracker/internal/config"
	"training_tracker/internal/model"
	"training_tracker/internal/repository"
	"training_tracker/internal/util"

	"gorm.io/gorm"
)

// TokenRevoker remembers signed-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SignInResult is returned by the development sign-in.
type SignInResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	// Revoker is nil when Redis is not configured; sign-out is then a no-op.
	Revoker TokenRevoker
	Now     func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, revoker TokenRevoker) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Revoker:  revoker,
		Now:      time.Now,
	}
}

// SignIn is the development credentials provider: it trusts the email,
// creates the user on first sight and issues a session token. The role is
// decided at creation and never changed here.
func (s *AuthService) SignIn(ctx context.Context, email, name string) (*SignInResult, error) {
	if !s.Cfg.Auth.DevLogin {
		return nil, util.ErrDevLoginDisable
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, util.NewValidationError("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return nil, util.NewValidationError("email", "must be a valid email")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "User"
	}

	role := model.RoleEmployee
	if s.Cfg.Auth.IsAdminEmail(email) {
		role = model.RoleAdmin
	}

	now := s.Now().UTC()
	candidate := &model.User{Name: name, Email: email, Role: role}
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	user, err := s.UserRepo.FirstOrCreateByEmail(ctx, candidate)
	if err != nil {
		return nil, err
	}

	token, claims, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &SignInResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// SignOut revokes the token until its natural expiry.
func (s *AuthService) SignOut(ctx context.Context, claims *util.Claims) error {
	if s.Revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.Now())
	}
	return s.Revoker.Revoke(ctx, claims.ID, ttl)
}

// Authenticate verifies a bearer token and that it was not signed out.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, util.ErrUnauthorized
	}
	if s.Revoker != nil && claims.ID != "" {
		revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, util.ErrUnauthorized
		}
	}
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
