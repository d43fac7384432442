// Package auth proves identity from credentials and from bearer tokens.
//
// Tokens are stateless HS256 JWTs carrying only the subject id and kind.
// Every verification reloads the identity, so role and active-flag changes
// apply without reissuing tokens. Without a Denylist, a token stays valid
// until it expires, and refreshing never invalidates the old refresh token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-manager/internal/models"
	"task-manager/internal/repository"
	"task-manager/pkg/logger"

	"go.uber.org/zap"
)

// UserStore adalah credential store yang dibutuhkan Authenticator.
// Create harus mengembalikan repository.ErrEmailTaken saat unique
// constraint email dilanggar.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

type Option func(*Authenticator)

// WithClock mengganti sumber waktu; dipakai test untuk expiry yang deterministik.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func WithDenylist(d Denylist) Option {
	return func(a *Authenticator) { a.denylist = d }
}

type Authenticator struct {
	users    UserStore
	hasher   *PasswordHasher
	tokens   *TokenManager
	denylist Denylist
	now      func() time.Time
}

func New(users UserStore, cfg Config, opts ...Option) *Authenticator {
	a := &Authenticator{
		users:  users,
		hasher: NewPasswordHasher(cfg.BcryptCost),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.tokens = NewTokenManager(cfg.Secret, cfg.AccessTTL, cfg.RefreshTTL, a.now)
	return a
}

func (a *Authenticator) Hasher() *PasswordHasher {
	return a.hasher
}

func (a *Authenticator) RevocationEnabled() bool {
	return a.denylist != nil
}

func (a *Authenticator) Register(ctx context.Context, email, password string, fullName *string) (*models.User, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	// tidak ada cek email sebelum insert; unique constraint yang memutuskan
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			logger.SecurityLogger.Warn("Register rejected: duplicate email", zap.String("email", email))
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	logger.AuditLogger.Info("User registered", zap.Int("user_id", user.ID))
	return user, nil
}

// Authenticate mengembalikan ErrInvalidCredentials untuk email tidak
// terdaftar, password salah, atau akun nonaktif.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			a.hasher.VerifyDummy(password)
			logger.SecurityLogger.Warn("Login failed: unknown email", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		logger.SecurityLogger.Warn("Login failed: wrong password", zap.Int("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		logger.SecurityLogger.Warn("Login failed: inactive account", zap.Int("user_id", user.ID))
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrInactiveAccount)
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (a *Authenticator) IssueTokens(user *models.User) (*TokenPair, error) {
	access, err := a.tokens.Issue(user.ID, KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := a.tokens.Issue(user.ID, KindRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(a.tokens.AccessTTL().Seconds()),
	}, nil
}

// Verify memeriksa token lalu memuat ulang user pemiliknya.
func (a *Authenticator) Verify(ctx context.Context, token string, expected TokenKind) (*models.User, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != expected {
		return nil, ErrTokenKindMismatch
	}
	if a.denylist != nil {
		revoked, err := a.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check token denylist: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	userID, _ := claims.UserID()
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrIdentityInactive
	}
	return user, nil
}

// Refresh menerbitkan pasangan token baru. Refresh token lama tidak dicabut.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	user, err := a.Verify(ctx, refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}
	logger.AuditLogger.Info("Token refreshed", zap.Int("user_id", user.ID))
	return a.IssueTokens(user)
}

// Logout memasukkan access token (dan refresh token bila ada) ke denylist.
// Tanpa denylist tidak ada yang dilakukan.
func (a *Authenticator) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if a.denylist == nil {
		return nil
	}

	access, err := a.tokens.Parse(accessToken)
	if err != nil {
		return err
	}
	toRevoke := []*Claims{access}

	if refreshToken != "" {
		refresh, err := a.tokens.Parse(refreshToken)
		if err != nil {
			return err
		}
		if refresh.Kind != KindRefresh {
			return ErrTokenKindMismatch
		}
		if refresh.Subject != access.Subject {
			return ErrTokenInvalid
		}
		toRevoke = append(toRevoke, refresh)
	}

	for _, c := range toRevoke {
		if err := a.denylist.Revoke(ctx, c.ID, c.ExpiresAt.Time.Sub(a.now())); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}
	logger.AuditLogger.Info("Logout", zap.String("user_id", access.Subject), zap.Int("revoked", len(toRevoke)))
	return nil
}
