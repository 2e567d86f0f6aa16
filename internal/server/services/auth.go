// Package services contains the application services composing the token
// codec, credential verifier, identity cache and repositories into the
// authentication and contact-management flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/logging"
	"github.com/mkravets/contactdesk/internal/server/auth"
	"github.com/mkravets/contactdesk/internal/server/avatar"
	"github.com/mkravets/contactdesk/internal/server/cache"
	"github.com/mkravets/contactdesk/internal/server/config"
	"github.com/mkravets/contactdesk/internal/server/mail"
	"github.com/mkravets/contactdesk/internal/server/models"
	"github.com/mkravets/contactdesk/internal/server/repositories/repomanager"
	"github.com/mkravets/contactdesk/internal/server/storage"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IdentityCache is the slice of the cache the orchestrator needs.
type IdentityCache interface {
	GetOrLoad(ctx context.Context, email string, loader cache.Loader) (*models.User, error)
	Invalidate(ctx context.Context, email string)
}

// AuthService authenticates inbound requests, issues token pairs and runs
// the signup / email verification / password reset flows.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       IdentityCache
	mailer      mail.Dispatcher
	avatars     avatar.Resolver
	uploader    storage.Uploader
	logger      logging.Logger

	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
	baseURL    string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, c IdentityCache,
	mailer mail.Dispatcher, avatars avatar.Resolver, uploader storage.Uploader,
	logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		cache:       c,
		mailer:      mailer,
		avatars:     avatars,
		uploader:    uploader,
		logger:      logger.With("module", "auth_service"),
		jwtSecret:   []byte(cfg.SecretKey),
		accessTTL:   cfg.AccessTokenValidityDuration,
		refreshTTL:  cfg.RefreshTokenValidityDuration,
		emailTTL:    cfg.EmailTokenValidityDuration,
		baseURL:     cfg.BaseURL,
	}
}

// Register creates an unconfirmed account and dispatches the verification
// email. An existing email maps to common.ErrorConflict. The default
// avatar lookup is best-effort: creation proceeds without one on failure.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Username: username, Email: email, Password: hash}

	if url, err := s.avatars.Resolve(ctx, email); err == nil {
		user.Avatar = &url
	} else {
		s.logger.Warn(ctx, "default avatar lookup failed", "error", err)
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.dispatchVerification(user)

	return user, nil
}

// dispatchVerification issues a verify-email token and mails it off the
// request path. Failures are logged, never surfaced to the caller.
func (s *AuthService) dispatchVerification(user *models.User) {
	token, err := auth.IssueToken(user.Email, auth.PurposeVerifyEmail, s.jwtSecret, s.emailTTL)
	if err != nil {
		s.logger.Error(context.Background(), "error issuing verification token", "error", err)
		return
	}
	go func() {
		ctx := context.Background()
		if err := s.mailer.SendVerification(ctx, user.Email, user.Username, s.baseURL, token); err != nil {
			s.logger.Error(ctx, "error sending verification email", "error", err)
		}
	}()
}

// issueTokenPair mints an access/refresh pair, persists the refresh token
// on the user and evicts the now-stale cache snapshot.
func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := auth.IssueToken(user.Email, auth.PurposeAccess, s.jwtSecret, s.accessTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := auth.IssueToken(user.Email, auth.PurposeRefresh, s.jwtSecret, s.refreshTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, user.Email)

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login verifies credentials on a confirmed account and issues a token
// pair. Unknown email, unconfirmed account and bad password all map to
// common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if !user.Confirmed {
		return nil, common.ErrorUnauthorized
	}

	if !auth.VerifyPassword(password, user.Password) {
		return nil, common.ErrorUnauthorized
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates the token pair. A presented token that does not match
// the stored one byte-for-byte clears the stored token (revoke-on-mismatch)
// and rejects, forcing re-login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := auth.DecodeToken(refreshToken, auth.PurposeRefresh, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := repo.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			s.logger.Error(ctx, "error revoking refresh token", "error", err)
		}
		s.cache.Invalidate(ctx, user.Email)
		return nil, common.ErrorUnauthorized
	}

	return s.issueTokenPair(ctx, user)
}

// Authenticate resolves a bearer access token to a live user entity via
// the identity cache. Any decode failure or unknown subject maps to
// common.ErrorUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	email, err := auth.DecodeToken(accessToken, auth.PurposeAccess, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := s.cache.GetOrLoad(ctx, email, repo.FindByEmail)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	return user, nil
}

// ConfirmEmail decodes a verification token and flips the confirmed flag.
// Returns true when the account was already confirmed (no write happens).
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	email, err := auth.DecodeToken(token, auth.PurposeVerifyEmail, s.jwtSecret)
	if err != nil {
		return false, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	if err := repo.Confirm(ctx, email); err != nil {
		return false, err
	}
	s.cache.Invalidate(ctx, email)

	return false, nil
}

// RequestVerification re-sends the verification email. Returns true when
// the account is already confirmed and nothing was sent.
func (s *AuthService) RequestVerification(ctx context.Context, email string) (bool, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	s.dispatchVerification(user)
	return false, nil
}

// RequestPasswordReset issues a reset token and mails it to the account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := auth.IssueToken(user.Email, auth.PurposeResetPassword, s.jwtSecret, s.emailTTL)
	if err != nil {
		return common.ErrorInternal
	}

	go func() {
		ctx := context.Background()
		if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, s.baseURL, token); err != nil {
			s.logger.Error(ctx, "error sending password reset email", "error", err)
		}
	}()

	return nil
}

// ResetPassword validates the reset token and the repeated password, then
// replaces the stored hash and evicts the cache snapshot.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}

	email, err := auth.DecodeToken(token, auth.PurposeResetPassword, s.jwtSecret)
	if err != nil {
		return common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	if _, err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, email)

	return nil
}

// UpdateAvatar streams the file to the image host and persists the
// returned URL on the account.
func (s *AuthService) UpdateAvatar(ctx context.Context, user *models.User, file io.Reader, contentType string) (*models.User, error) {
	url, err := s.uploader.Upload(ctx, storage.AvatarKey(user.Username), file, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: image host: %v", common.ErrorUpstreamUnavailable, err)
	}

	repo := s.repomanager.Users(s.db)
	updated, err := repo.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, user.Email)

	return updated, nil
}
