package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if session == nil {
		return nil, domain.ErrNoAuthenticatedUser
	}
	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to load profile", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, domain.StoreFailure(err)
	}
	return user, nil
}

// SyncStats writes aggregated completion stats onto every user's denormalized
// counters, zeroing users absent from stats. It returns how many rows changed.
func (uc *UseCase) SyncStats(ctx context.Context, stats map[string]domain.UserStats) (int, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return 0, domain.StoreFailure(err)
	}

	updated := 0
	for i := range users {
		user := &users[i]
		if !user.ApplyStats(stats[user.ID]) {
			continue
		}
		if err := uc.users.UpdateStats(ctx, user); err != nil {
			uc.logger.Warn("failed to sync user stats", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}
