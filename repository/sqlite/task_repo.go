package sqlite

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a SQLite-backed TaskRepository for single-node deployments.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	var rec taskRecord
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task := rec.toDomain()
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Model(&taskRecord{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			q = q.Limit(math.MaxInt32)
		}
		q = q.Offset(filter.Offset)
	}

	var recs []taskRecord
	if err := q.Order("created_at ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return toTasks(recs), nil
}

func (r *taskRepository) ListCompletedSince(ctx context.Context, since time.Time) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Where("completed = ?", true)
	if !since.IsZero() {
		q = q.Where("completed_at >= ?", since.UTC())
	}
	var recs []taskRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return toTasks(recs), nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	rec := newTaskRecord(task)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	res := r.db.WithContext(ctx).Model(&taskRecord{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":        task.Title,
			"description":  task.Description,
			"completed":    task.Completed,
			"completed_at": utc(task.CompletedAt),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&taskRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func toTasks(recs []taskRecord) []domain.Task {
	tasks := make([]domain.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.toDomain())
	}
	return tasks
}
