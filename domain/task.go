package domain

import "time"

// Task represents a user-owned unit of work.
//
// CompletedAt is set if and only if Completed is true; mutate completion
// through SetCompleted or Toggle to keep the two in step.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Completed
}

// SetCompleted updates the completion flag, stamping now when the task becomes
// completed and clearing the timestamp when it goes back to pending.
func (t *Task) SetCompleted(done bool, now time.Time) {
	if t == nil {
		return
	}
	t.Completed = done
	if !done {
		t.CompletedAt = nil
		return
	}
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now
	t.CompletedAt = &stamp
}

// Toggle flips the completion state.
func (t *Task) Toggle(now time.Time) {
	if t == nil {
		return
	}
	t.SetCompleted(!t.Completed, now)
}

// TaskList is a user's task set split for display.
type TaskList struct {
	Pending   []Task `json:"pending"`
	Completed []Task `json:"completed"`
}

// Partition splits tasks into pending and completed subsets, preserving order.
func Partition(tasks []Task) TaskList {
	list := TaskList{
		Pending:   make([]Task, 0, len(tasks)),
		Completed: make([]Task, 0),
	}
	for _, task := range tasks {
		if task.Completed {
			list.Completed = append(list.Completed, task)
			continue
		}
		list.Pending = append(list.Pending, task)
	}
	return list
}
