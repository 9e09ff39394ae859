// Package memory provides in-process repository implementations used by
// tests and local tooling. Each store can be told to fail with Fail.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type faults struct {
	fmu sync.Mutex
	err error
}

// Fail makes every following call return err until Fail(nil).
func (f *faults) Fail(err error) {
	f.fmu.Lock()
	defer f.fmu.Unlock()
	f.err = err
}

func (f *faults) failure() error {
	f.fmu.Lock()
	defer f.fmu.Unlock()
	return f.err
}

// TaskRepository keeps tasks in insertion order.
type TaskRepository struct {
	faults
	mu    sync.RWMutex
	tasks []domain.Task
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(seed ...domain.Task) *TaskRepository {
	return &TaskRepository{tasks: append([]domain.Task(nil), seed...)}
}

func (r *TaskRepository) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, task := range r.tasks {
		if task.ID == id && task.UserID == userID {
			return cloneTask(task), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *TaskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Task
	skipped := 0
	for _, task := range r.tasks {
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, *cloneTask(task))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *TaskRepository) ListCompletedSince(_ context.Context, since time.Time) ([]domain.Task, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Task
	for _, task := range r.tasks {
		if !task.Completed {
			continue
		}
		if !since.IsZero() && (task.CompletedAt == nil || task.CompletedAt.Before(since)) {
			continue
		}
		out = append(out, *cloneTask(task))
	}
	return out, nil
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, *cloneTask(*task))
	return task, nil
}

func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	if err := r.failure(); err != nil {
		return err
	}
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == task.ID && r.tasks[i].UserID == task.UserID {
			r.tasks[i] = *cloneTask(*task)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (r *TaskRepository) Delete(_ context.Context, userID, id string) error {
	if err := r.failure(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id && r.tasks[i].UserID == userID {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

// Len returns the number of stored tasks.
func (r *TaskRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func cloneTask(task domain.Task) *domain.Task {
	out := task
	if task.CompletedAt != nil {
		stamp := *task.CompletedAt
		out.CompletedAt = &stamp
	}
	return &out
}

// UserRepository indexes users by id and lower-cased email.
type UserRepository struct {
	faults
	mu      sync.RWMutex
	users   map[string]domain.User
	lookups map[string]int
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(seed ...domain.User) *UserRepository {
	r := &UserRepository{
		users:   make(map[string]domain.User),
		lookups: make(map[string]int),
	}
	for _, user := range seed {
		r.users[user.ID] = user
	}
	return r
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[id]++
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	if err := r.failure(); err != nil {
		return err
	}
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) UpdateStats(_ context.Context, user *domain.User) error {
	if err := r.failure(); err != nil {
		return err
	}
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.CompletedTasks = user.CompletedTasks
	stored.LastCompletedDate = user.LastCompletedDate
	stored.UpdatedAt = time.Now()
	r.users[user.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

// Lookups reports how many times GetByID was called for id.
func (r *UserRepository) Lookups(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookups[id]
}

// SessionRepository keeps sessions in a map without expiry enforcement.
type SessionRepository struct {
	faults
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	if err := r.failure(); err != nil {
		return err
	}
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	if err := r.failure(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) Extend(_ context.Context, id string, ttl time.Duration) error {
	if err := r.failure(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = time.Now().Add(ttl)
	r.sessions[id] = session
	return nil
}

// TaskCache is a map-backed list cache.
type TaskCache struct {
	faults
	mu      sync.RWMutex
	entries map[string][]domain.Task
	gens    map[string]int64
}

var _ repository.TaskCache = (*TaskCache)(nil)

func NewTaskCache() *TaskCache {
	return &TaskCache{
		entries: make(map[string][]domain.Task),
		gens:    make(map[string]int64),
	}
}

func (c *TaskCache) Get(_ context.Context, userID string) ([]domain.Task, bool, error) {
	if err := c.failure(); err != nil {
		return nil, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	tasks, ok := c.entries[userID]
	if !ok {
		return nil, false, nil
	}
	return cloneTasks(tasks), true, nil
}

func (c *TaskCache) Generation(_ context.Context, userID string) (int64, error) {
	if err := c.failure(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[userID], nil
}

// Set stores tasks unless the generation moved on since it was read.
func (c *TaskCache) Set(_ context.Context, userID string, tasks []domain.Task, generation int64) error {
	if err := c.failure(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != generation {
		return nil
	}
	c.entries[userID] = cloneTasks(tasks)
	return nil
}

// Invalidate ignores injected faults so write paths can always drop an entry.
func (c *TaskCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.gens[userID]++
	return nil
}

// Peek returns the cached list without going through fault injection.
func (c *TaskCache) Peek(userID string) ([]domain.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tasks, ok := c.entries[userID]
	return cloneTasks(tasks), ok
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, *cloneTask(task))
	}
	return out
}

// SnapshotRepository keeps snapshots in memory.
type SnapshotRepository struct {
	faults
	mu    sync.RWMutex
	snaps []domain.Snapshot
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

func (r *SnapshotRepository) Save(_ context.Context, snap *domain.Snapshot) error {
	if err := r.failure(); err != nil {
		return err
	}
	if snap == nil || snap.Period == "" {
		return domain.ErrInvalidPayload
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, *snap)
	return nil
}

func (r *SnapshotRepository) List(_ context.Context, period domain.Period, limit int) ([]domain.Snapshot, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Snapshot
	for i := len(r.snaps) - 1; i >= 0; i-- {
		if r.snaps[i].Period != period {
			continue
		}
		out = append(out, r.snaps[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *SnapshotRepository) Cleanup(_ context.Context, olderThan time.Time) (int, error) {
	if err := r.failure(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.snaps[:0]
	removed := 0
	for _, snap := range r.snaps {
		if snap.TakenAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, snap)
	}
	r.snaps = kept
	return removed, nil
}
