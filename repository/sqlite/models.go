package sqlite

import (
	"time"

	"gorm.io/gorm"

	"github.com/fastygo/taskboard/domain"
)

type taskRecord struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"index;size:36;not null"`
	Title       string `gorm:"not null"`
	Description string
	Completed   bool       `gorm:"not null;default:false"`
	CompletedAt *time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRecord) TableName() string { return "tasks" }

type userRecord struct {
	ID                string `gorm:"primaryKey;size:36"`
	Email             string `gorm:"uniqueIndex;not null"`
	PasswordHash      string `gorm:"not null"`
	CompletedTasks    int    `gorm:"not null;default:0"`
	LastCompletedDate *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (userRecord) TableName() string { return "users" }

// AutoMigrate creates or updates the tables backing the repositories.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &taskRecord{})
}

// Timestamps are stored in UTC so text comparison in SQLite orders them correctly.
func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func newTaskRecord(task *domain.Task) taskRecord {
	return taskRecord{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CompletedAt: utc(task.CompletedAt),
		CreatedAt:   task.CreatedAt.UTC(),
	}
}

func (r taskRecord) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:                r.ID,
		Email:             r.Email,
		PasswordHash:      r.PasswordHash,
		CompletedTasks:    r.CompletedTasks,
		LastCompletedDate: r.LastCompletedDate,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
