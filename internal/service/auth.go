package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/festa-do-viso/internal/model"
	"github.com/iliyamo/festa-do-viso/internal/repository"
	"github.com/iliyamo/festa-do-viso/internal/utils"
)

// AuthConfig carries the token settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
}

// Session is the result of a login or refresh.  Refresh.Raw is returned to
// the client once and only its hash is stored.
type Session struct {
	Admin   *model.AdminCredential
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// AuthService authenticates admins and manages their tokens.
type AuthService struct {
	base
	cfg    AuthConfig
	admins AdminStore
	tokens TokenStore
}

func NewAuthService(cfg AuthConfig, admins AdminStore, tokens TokenStore, opts ...Option) *AuthService {
	return &AuthService{base: newBase(opts), cfg: cfg, admins: admins, tokens: tokens}
}

// Login verifies username and password and opens a session.  Unknown users
// and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	a, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("load admin", err)
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	at := s.now()
	if err := s.admins.TouchLastAccess(ctx, a.ID, at); err != nil {
		return nil, storageErr("touch last access", err)
	}
	a.LastAccessAt = &at
	return s.issue(ctx, a)
}

// Refresh exchanges a valid refresh token for a new session.  The old token
// is consumed, so replaying it fails.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidRefresh
	}
	adminID, err := s.tokens.Consume(ctx, utils.HashRefreshRaw(raw))
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return nil, ErrInvalidRefresh
		}
		return nil, storageErr("consume refresh", err)
	}
	a, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, storageErr("load admin", err)
	}
	return s.issue(ctx, a)
}

// Logout revokes one refresh token.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if _, err := s.tokens.Consume(ctx, utils.HashRefreshRaw(strings.TrimSpace(raw))); err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return ErrInvalidRefresh
		}
		return storageErr("revoke refresh", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of an admin.
func (s *AuthService) LogoutAll(ctx context.Context, adminID uint64) error {
	if err := s.tokens.RevokeAllForAdmin(ctx, adminID); err != nil {
		return storageErr("revoke all", err)
	}
	return nil
}

// Me returns the admin behind an access token.
func (s *AuthService) Me(ctx context.Context, adminID uint64) (*model.AdminCredential, error) {
	a, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("load admin", err)
	}
	return a, nil
}

// Secret exposes the signing secret for the JWT middleware.
func (s *AuthService) Secret() string { return s.cfg.JWTSecret }

func (s *AuthService) issue(ctx context.Context, a *model.AdminCredential) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, a.ID, a.Username, model.RoleAdmin, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefresh(ctx, a.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, storageErr("store refresh", err)
	}
	return &Session{Admin: a, Access: access, Refresh: refresh}, nil
}
