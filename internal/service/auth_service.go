package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"flipyard/internal/apperr"
	"flipyard/internal/config"
	"flipyard/internal/ids"
	"flipyard/internal/models"
	"flipyard/internal/notify"
	"flipyard/internal/repository"
	"flipyard/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetWithUser(ctx context.Context, id string) (models.Session, models.User, error)
	DeleteByID(ctx context.Context, id string) error
}

type ResetTokenStore interface {
	Create(ctx context.Context, token models.PasswordResetToken) error
	FindUsable(ctx context.Context, hash string, now time.Time) (models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
}

// Messages shared by every failure of the same kind, so responses never
// reveal which check failed.
const (
	msgInvalidCredentials = "invalid email or password"
	msgAlreadyTaken       = "email or username already taken"
	msgInvalidReset       = "invalid or expired reset token"
)

type AuthService struct {
	users    UserStore
	sessions SessionStore
	resets   ResetTokenStore
	notifier notify.Notifier
	hasher   *security.PasswordHasher
	cfg      *config.AppConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService builds the credential and session service. notifier may be
// nil when outbound email is not configured; reset requests then become
// no-ops.
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	resets ResetTokenStore,
	notifier notify.Notifier,
	hasher *security.PasswordHasher,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		resets:   resets,
		notifier: notifier,
		hasher:   hasher,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// SessionGrant is a freshly established session: the signed token for the
// cookie and the account it belongs to.
type SessionGrant struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	User      models.User
	SessionID string
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (SessionGrant, error) {
	email := normalizeEmail(input.Email)
	username := strings.ToLower(strings.TrimSpace(input.Username))

	if !validEmail(email) {
		return SessionGrant{}, apperr.Validation("a valid email is required")
	}
	if !usernamePattern.MatchString(username) {
		return SessionGrant{}, apperr.Validation("username must be 3-20 letters, digits, underscores or hyphens")
	}
	if err := validatePassword(input.Password); err != nil {
		return SessionGrant{}, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return SessionGrant{}, err
	}
	if exists {
		return SessionGrant{}, apperr.Conflict(msgAlreadyTaken)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return SessionGrant{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := models.User{
		ID:           ids.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrDuplicate) {
			return SessionGrant{}, apperr.Conflict(msgAlreadyTaken)
		}
		return SessionGrant{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("account registered")
	return s.establishSession(ctx, user)
}

// Login verifies credentials. Unknown emails, banned accounts and wrong
// passwords fail identically and take the same bcrypt time.
func (s *AuthService) Login(ctx context.Context, email, password string) (SessionGrant, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.Verify(password, nil)
			return SessionGrant{}, apperr.Auth(msgInvalidCredentials)
		}
		return SessionGrant{}, err
	}

	ok := s.hasher.Verify(password, user.PasswordHash)
	if !ok || user.IsBanned {
		return SessionGrant{}, apperr.Auth(msgInvalidCredentials)
	}

	return s.establishSession(ctx, user)
}

func (s *AuthService) establishSession(ctx context.Context, user models.User) (SessionGrant, error) {
	sessionID, err := security.NewSessionID()
	if err != nil {
		return SessionGrant{}, err
	}

	now := s.now().UTC()
	session := models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.Security.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return SessionGrant{}, fmt.Errorf("create session: %w", err)
	}

	token, err := security.GenerateSessionToken(s.cfg.Security.SessionSecret, session.ID, now, session.ExpiresAt)
	if err != nil {
		return SessionGrant{}, err
	}

	return SessionGrant{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Authenticate resolves a session token to the caller. A nil identity with
// a nil error means anonymous: no token, a bad or expired token, an unknown
// or expired session, or a banned account. Expired session rows are deleted
// here, whether the row or the token itself ran out first.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := security.ParseSessionToken(token, s.cfg.Security.SessionSecret)
	if err != nil {
		if security.IsExpired(err) {
			if sessionID, err := security.SessionIDFromToken(token, s.cfg.Security.SessionSecret); err == nil {
				s.dropSession(ctx, sessionID)
			}
		}
		return nil, nil
	}

	session, user, err := s.sessions.GetWithUser(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Expired(s.now()) {
		s.dropSession(ctx, session.ID)
		return nil, nil
	}
	if user.IsBanned {
		return nil, nil
	}

	return &Identity{User: user, SessionID: session.ID}, nil
}

func (s *AuthService) dropSession(ctx context.Context, sessionID string) {
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		s.log.Warn().Err(err).Msg("delete expired session failed")
	}
}

// Logout deletes the session behind token. Undecodable tokens and missing
// rows are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionID, err := security.SessionIDFromToken(token, s.cfg.Security.SessionSecret)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ChangePassword replaces the password after checking the current one.
// Other sessions of the account stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return apperr.Validation("current password is incorrect")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// RequestPasswordReset issues a reset link when email belongs to an account.
// It reports nothing to the caller either way; failures are only logged.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	if s.notifier == nil {
		s.log.Warn().Msg("password reset requested but mail is not configured")
		return
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("reset lookup failed")
		}
		return
	}

	secret, hash, err := security.NewResetSecret()
	if err != nil {
		s.log.Error().Err(err).Msg("generate reset secret failed")
		return
	}

	now := s.now().UTC()
	token := models.PasswordResetToken{
		ID:        ids.New(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.cfg.Security.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("store reset token failed")
		return
	}

	err = s.notifier.SendPasswordReset(ctx, notify.PasswordResetEmail{
		Email:    user.Email,
		ResetURL: s.resetURL(secret),
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("queue reset email failed")
		return
	}
	s.log.Info().Str("user_id", user.ID).Msg("password reset issued")
}

func (s *AuthService) resetURL(secret string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(secret)
}

// ResetPassword consumes a reset token and sets a new password. The token
// is marked used before the password is written, so of two concurrent
// attempts only one can succeed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Validation(msgInvalidReset)
	}

	now := s.now().UTC()
	reset, err := s.resets.FindUsable(ctx, security.HashResetSecret(token), now)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return apperr.Validation(msgInvalidReset)
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.resets.MarkUsed(ctx, reset.ID, now); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return apperr.Validation(msgInvalidReset)
		}
		return err
	}
	if err := s.users.UpdatePassword(ctx, reset.UserID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info().Str("user_id", reset.UserID).Msg("password reset completed")
	return nil
}
