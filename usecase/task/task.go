package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// Input carries the user-editable fields of a task.
type Input struct {
	Title       string
	Description string
}

// UseCase manages the signed-in user's own tasks. The store is the source of
// truth; a confirmed write drops the user's cached list.
type UseCase struct {
	tasks  repository.TaskRepository
	cache  repository.TaskCache
	now    func() time.Time
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, cache repository.TaskCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		cache:  cache,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source. Intended for tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

func (uc *UseCase) List(ctx context.Context, session *domain.Session) (*domain.TaskList, error) {
	if session == nil {
		return nil, domain.ErrNoAuthenticatedUser
	}
	log := uc.log(ctx, session)

	fill := false
	var generation int64
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, session.UserID)
		if err != nil {
			log.Warn("task cache read failed", zap.Error(err))
		} else if ok {
			list := domain.Partition(cached)
			return &list, nil
		}
		// The generation is read before the store so a write that lands in
		// between makes the fill below a no-op.
		if generation, err = uc.cache.Generation(ctx, session.UserID); err != nil {
			log.Warn("task cache generation read failed", zap.Error(err))
		} else {
			fill = true
		}
	}

	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{UserID: session.UserID})
	if err != nil {
		log.Error("failed to fetch tasks", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	if fill {
		if err := uc.cache.Set(ctx, session.UserID, tasks, generation); err != nil {
			log.Warn("task cache write failed", zap.Error(err))
		}
	}

	list := domain.Partition(tasks)
	return &list, nil
}

// Create stores a new pending task. A blank title is a no-op and returns (nil, nil).
func (uc *UseCase) Create(ctx context.Context, session *domain.Session, input Input) (*domain.Task, error) {
	if session == nil {
		return nil, domain.ErrNoAuthenticatedUser
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, nil
	}

	task := &domain.Task{
		UserID:      session.UserID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   uc.now(),
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		uc.log(ctx, session).Error("failed to add task", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	uc.invalidate(ctx, session)
	return created, nil
}

// Toggle flips completion, stamping or clearing the completion time.
func (uc *UseCase) Toggle(ctx context.Context, session *domain.Session, id string) (*domain.Task, error) {
	if session == nil {
		return nil, domain.ErrNoAuthenticatedUser
	}
	log := uc.log(ctx, session).With(zap.String("task_id", id))

	task, err := uc.tasks.GetByID(ctx, session.UserID, id)
	if err != nil {
		log.Error("failed to load task for toggle", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	task.Toggle(uc.now())

	if err := uc.tasks.Update(ctx, task); err != nil {
		log.Error("failed to toggle task completion", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	uc.invalidate(ctx, session)
	return task, nil
}

// Edit overwrites title and description. A blank id or title is a no-op and
// returns (nil, nil); an unknown id is ErrTaskNotFound.
func (uc *UseCase) Edit(ctx context.Context, session *domain.Session, id string, input Input) (*domain.Task, error) {
	if session == nil {
		return nil, domain.ErrNoAuthenticatedUser
	}
	title := strings.TrimSpace(input.Title)
	if strings.TrimSpace(id) == "" || title == "" {
		return nil, nil
	}
	log := uc.log(ctx, session).With(zap.String("task_id", id))

	task, err := uc.tasks.GetByID(ctx, session.UserID, id)
	if err != nil {
		log.Error("failed to load task for edit", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	task.Title = title
	task.Description = strings.TrimSpace(input.Description)

	if err := uc.tasks.Update(ctx, task); err != nil {
		log.Error("failed to update task", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	uc.invalidate(ctx, session)
	return task, nil
}

func (uc *UseCase) Delete(ctx context.Context, session *domain.Session, id string) error {
	if session == nil {
		return domain.ErrNoAuthenticatedUser
	}

	if err := uc.tasks.Delete(ctx, session.UserID, id); err != nil {
		uc.log(ctx, session).Error("failed to delete task", zap.String("task_id", id), zap.Error(err))
		return domain.StoreFailure(err)
	}

	uc.invalidate(ctx, session)
	return nil
}

// invalidate drops the cached list after a confirmed write. A failure is only
// logged; the write itself already succeeded.
func (uc *UseCase) invalidate(ctx context.Context, session *domain.Session) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, session.UserID); err != nil {
		uc.log(ctx, session).Error("task cache invalidate failed", zap.Error(err))
	}
}

func (uc *UseCase) log(ctx context.Context, session *domain.Session) *zap.Logger {
	return logger.WithRequestID(ctx, uc.logger).With(zap.String("user_id", session.UserID))
}
