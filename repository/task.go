package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskboard/domain"
)

type TaskFilter struct {
	UserID    string
	Completed *bool
	Limit     int
	Offset    int
}

type TaskRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// ListCompletedSince returns completed tasks of all users whose completion
	// is at or after since. A zero since returns every completed task.
	ListCompletedSince(ctx context.Context, since time.Time) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
}

// TaskCache holds each user's task list between requests.
//
// Every Invalidate bumps a per-user generation. A list read from the store is
// cached with Set only while the generation observed before that read is still
// current, so a fill can never overwrite a later write.
type TaskCache interface {
	Get(ctx context.Context, userID string) ([]domain.Task, bool, error)
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, tasks []domain.Task, generation int64) error
	Invalidate(ctx context.Context, userID string) error
}
