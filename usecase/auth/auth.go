package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// TokenIssuer signs bearer tokens for sessions.
type TokenIssuer interface {
	Issue(session *domain.Session) (string, error)
}

type Config struct {
	SessionTTL        time.Duration
	BcryptCost        int
	MinPasswordLength int
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   TokenIssuer
	cfg      Config
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens TokenIssuer, cfg Config, logger *zap.Logger) *UseCase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// SignUp creates the account with zeroed completion stats and signs it in.
func (uc *UseCase) SignUp(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, domain.NewError(domain.ErrCodeInvalid, "a valid email is required")
	}
	if len(password) < uc.cfg.MinPasswordLength {
		return nil, domain.NewError(domain.ErrCodeInvalid, "password is too short")
	}

	log := logger.WithRequestID(ctx, uc.logger)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to sign up", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		log.Warn("problem signing up", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	return uc.startSession(ctx, user)
}

// SignIn checks the credential and opens a new session.
func (uc *UseCase) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	log := logger.WithRequestID(ctx, uc.logger)

	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredential
		}
		log.Error("failed to load user for sign in", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Info("sign in rejected", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredential
	}

	return uc.startSession(ctx, user)
}

// SignOut revokes the session; its token stops authenticating immediately.
func (uc *UseCase) SignOut(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrNoAuthenticatedUser
	}
	if err := uc.sessions.Delete(ctx, session.ID); err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to log out", zap.Error(err))
		return domain.StoreFailure(err)
	}
	return nil
}

// CurrentUser resolves the session to its user record.
func (uc *UseCase) CurrentUser(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil {
		return nil, domain.ErrNoAuthenticatedUser
	}
	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNoAuthenticatedUser
		}
		return nil, domain.StoreFailure(err)
	}
	return user, nil
}

// GetSession loads a live session, purging it when already expired.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNoAuthenticatedUser
		}
		return nil, domain.StoreFailure(err)
	}
	if session.IsExpired(time.Now()) {
		if err := uc.sessions.Delete(ctx, sessionID); err != nil {
			logger.WithRequestID(ctx, uc.logger).Warn("failed to purge expired session",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, domain.ErrNoAuthenticatedUser
	}
	return session, nil
}

// Refresh extends the session and issues a fresh token.
func (uc *UseCase) Refresh(ctx context.Context, session *domain.Session, ttl time.Duration) (*domain.AuthResult, error) {
	if session == nil {
		return nil, domain.ErrNoAuthenticatedUser
	}
	if ttl <= 0 {
		ttl = uc.cfg.SessionTTL
	}
	if err := uc.sessions.Extend(ctx, session.ID, ttl); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNoAuthenticatedUser
		}
		return nil, domain.StoreFailure(err)
	}

	refreshed := *session
	refreshed.ExpiresAt = time.Now().Add(ttl)

	signed, err := uc.tokens.Issue(&refreshed)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}
	return &domain.AuthResult{Session: &refreshed, Token: signed}, nil
}

func (uc *UseCase) startSession(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.SessionTTL),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to store session", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	signed, err := uc.tokens.Issue(session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}
	return &domain.AuthResult{User: user, Session: session, Token: signed}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
