package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
)

var (
	now     = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	session = &domain.Session{ID: "s1", UserID: "u1"}
)

func newUseCase() (*UseCase, *memory.TaskRepository, *memory.TaskCache) {
	repo := memory.NewTaskRepository()
	cache := memory.NewTaskCache()
	uc := New(repo, cache, nil).WithClock(func() time.Time { return now })
	return uc, repo, cache
}

func TestCreate_BlankTitleIsNoop(t *testing.T) {
	uc, repo, _ := newUseCase()
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		created, err := uc.Create(ctx, session, Input{Title: title, Description: "ignored"})
		if err != nil || created != nil {
			t.Fatalf("title %q: got %v, %v want nil, nil", title, created, err)
		}
	}
	if repo.Len() != 0 {
		t.Fatalf("task count changed: %d", repo.Len())
	}
}

func TestCreate_PersistsPendingTask(t *testing.T) {
	uc, repo, _ := newUseCase()

	created, err := uc.Create(context.Background(), session, Input{Title: " buy milk ", Description: "2 litres"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.UserID != "u1" || created.Title != "buy milk" {
		t.Fatalf("unexpected task %+v", created)
	}
	if created.Completed || created.CompletedAt != nil || !created.CreatedAt.Equal(now) {
		t.Fatalf("new task should be pending and stamped with now: %+v", created)
	}
	if repo.Len() != 1 {
		t.Fatalf("got %d stored tasks want 1", repo.Len())
	}
}

func TestOperations_RequireSession(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	if _, err := uc.List(ctx, nil); err != domain.ErrNoAuthenticatedUser {
		t.Fatalf("list: got %v", err)
	}
	if _, err := uc.Create(ctx, nil, Input{Title: "x"}); err != domain.ErrNoAuthenticatedUser {
		t.Fatalf("create: got %v", err)
	}
	if _, err := uc.Toggle(ctx, nil, "id"); err != domain.ErrNoAuthenticatedUser {
		t.Fatalf("toggle: got %v", err)
	}
	if _, err := uc.Edit(ctx, nil, "id", Input{Title: "x"}); err != domain.ErrNoAuthenticatedUser {
		t.Fatalf("edit: got %v", err)
	}
	if err := uc.Delete(ctx, nil, "id"); err != domain.ErrNoAuthenticatedUser {
		t.Fatalf("delete: got %v", err)
	}
}

func TestToggle_TwiceRestoresPending(t *testing.T) {
	uc, repo, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, session, Input{Title: "run"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done, err := uc.Toggle(ctx, session, created.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("first toggle: %+v", done)
	}

	back, err := uc.Toggle(ctx, session, created.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if back.Completed || back.CompletedAt != nil {
		t.Fatalf("second toggle should restore pending: %+v", back)
	}

	stored, err := repo.GetByID(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Completed || stored.CompletedAt != nil {
		t.Fatalf("store not updated: %+v", stored)
	}
}

func TestToggle_OtherUsersTaskIsNotFound(t *testing.T) {
	uc, repo, _ := newUseCase()
	ctx := context.Background()
	if _, err := repo.Create(ctx, &domain.Task{ID: "foreign", UserID: "u2", Title: "theirs"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := uc.Toggle(ctx, session, "foreign"); err != domain.ErrTaskNotFound {
		t.Fatalf("got %v want ErrTaskNotFound", err)
	}
}

func TestEdit_UnknownIDSurfacesErrorAndKeepsList(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	if _, err := uc.Create(ctx, session, Input{Title: "keep me"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	before, err := uc.List(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := uc.Edit(ctx, session, "missing", Input{Title: "new"}); err != domain.ErrTaskNotFound {
		t.Fatalf("got %v want ErrTaskNotFound", err)
	}

	after, err := uc.List(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(after.Pending) != len(before.Pending) || after.Pending[0].Title != "keep me" {
		t.Fatalf("list changed: before %+v after %+v", before, after)
	}
}

func TestEdit_BlankInputIsNoop(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()
	created, _ := uc.Create(ctx, session, Input{Title: "original"})

	if got, err := uc.Edit(ctx, session, created.ID, Input{Title: "  "}); got != nil || err != nil {
		t.Fatalf("blank title: got %v, %v", got, err)
	}
	if got, err := uc.Edit(ctx, session, "", Input{Title: "x"}); got != nil || err != nil {
		t.Fatalf("blank id: got %v, %v", got, err)
	}

	list, _ := uc.List(ctx, session)
	if list.Pending[0].Title != "original" {
		t.Fatalf("title changed: %q", list.Pending[0].Title)
	}
}

func TestEdit_OverwritesTitleAndDescription(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()
	created, _ := uc.Create(ctx, session, Input{Title: "draft", Description: "old"})

	edited, err := uc.Edit(ctx, session, created.ID, Input{Title: "final", Description: "new"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Title != "final" || edited.Description != "new" {
		t.Fatalf("got %+v", edited)
	}
}

func TestList_PartitionsAndUsesCache(t *testing.T) {
	uc, repo, cache := newUseCase()
	ctx := context.Background()

	a, _ := uc.Create(ctx, session, Input{Title: "a"})
	_, _ = uc.Create(ctx, session, Input{Title: "b"})
	if _, err := uc.Toggle(ctx, session, a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	list, err := uc.List(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Pending) != 1 || len(list.Completed) != 1 || list.Completed[0].ID != a.ID {
		t.Fatalf("bad partition: %+v", list)
	}
	if _, ok := cache.Peek("u1"); !ok {
		t.Fatalf("list should warm the cache")
	}

	repo.Fail(errors.New("db down"))
	cached, err := uc.List(ctx, session)
	if err != nil {
		t.Fatalf("warm cache should serve list: %v", err)
	}
	if len(cached.Pending)+len(cached.Completed) != 2 {
		t.Fatalf("cached list: %+v", cached)
	}
}

func TestWrites_InvalidateCacheOnlyAfterSuccess(t *testing.T) {
	uc, repo, cache := newUseCase()
	ctx := context.Background()

	created, _ := uc.Create(ctx, session, Input{Title: "a"})
	if _, err := uc.List(ctx, session); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, ok := cache.Peek("u1"); !ok {
		t.Fatalf("list should warm the cache")
	}

	repo.Fail(errors.New("db down"))
	if _, err := uc.Toggle(ctx, session, created.ID); !domain.IsDomainError(err, domain.ErrCodeStoreFailed) {
		t.Fatalf("got %v want STORE_FAILED", err)
	}
	if err := uc.Delete(ctx, session, created.ID); !domain.IsDomainError(err, domain.ErrCodeStoreFailed) {
		t.Fatalf("got %v want STORE_FAILED", err)
	}
	if cached, ok := cache.Peek("u1"); !ok || len(cached) != 1 || cached[0].Completed {
		t.Fatalf("failed writes must not touch the cache: %+v", cached)
	}

	repo.Fail(nil)
	if _, err := uc.Create(ctx, session, Input{Title: "b"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := cache.Peek("u1"); ok {
		t.Fatalf("confirmed write should drop the cached list")
	}

	list, err := uc.List(ctx, session)
	if err != nil || len(list.Pending) != 2 {
		t.Fatalf("reload after write: %+v %v", list, err)
	}
}

func TestList_CacheFailureFallsBackToStore(t *testing.T) {
	uc, _, cache := newUseCase()
	ctx := context.Background()

	if _, err := uc.Create(ctx, session, Input{Title: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cache.Fail(errors.New("redis down"))
	list, err := uc.List(ctx, session)
	if err != nil || len(list.Pending) != 1 {
		t.Fatalf("list with cache down: %+v %v", list, err)
	}
	if _, err := uc.Create(ctx, session, Input{Title: "b"}); err != nil {
		t.Fatalf("create should succeed despite cache failure: %v", err)
	}

	cache.Fail(nil)
	list, err = uc.List(ctx, session)
	if err != nil || len(list.Pending) != 2 {
		t.Fatalf("list after recovery: %+v %v", list, err)
	}
}

// gatedRepo holds every Create until release is closed, so concurrent
// writers are all in flight against the same warm cache entry.
type gatedRepo struct {
	*memory.TaskRepository
	arrived chan struct{}
	release chan struct{}
}

func (r *gatedRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	r.arrived <- struct{}{}
	<-r.release
	return r.TaskRepository.Create(ctx, task)
}

func TestCreate_ConcurrentWritesKeepListInStep(t *testing.T) {
	repo := &gatedRepo{
		TaskRepository: memory.NewTaskRepository(),
		arrived:        make(chan struct{}, 2),
		release:        make(chan struct{}),
	}
	cache := memory.NewTaskCache()
	uc := New(repo, cache, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	if _, err := uc.List(ctx, session); err != nil {
		t.Fatalf("warm: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, title := range []string{"first", "second"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Create(ctx, session, Input{Title: title}); err != nil {
				errs <- err
			}
		}()
	}
	<-repo.arrived
	<-repo.arrived
	close(repo.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent write: %v", err)
	}

	list, err := uc.List(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.Len() != 2 || len(list.Pending) != repo.Len() {
		t.Fatalf("cached list diverged from store: %d listed vs %d stored", len(list.Pending), repo.Len())
	}
}

// slowListRepo lets a write land after List has read the store but before
// the result is cached.
type slowListRepo struct {
	*memory.TaskRepository
	afterRead func()
}

func (r *slowListRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks, err := r.TaskRepository.List(ctx, filter)
	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	return tasks, err
}

func TestList_StaleReadDoesNotOverwriteNewerWrite(t *testing.T) {
	repo := &slowListRepo{TaskRepository: memory.NewTaskRepository()}
	cache := memory.NewTaskCache()
	uc := New(repo, cache, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	repo.afterRead = func() {
		if _, err := uc.Create(ctx, session, Input{Title: "landed mid-read"}); err != nil {
			t.Errorf("create: %v", err)
		}
	}

	stale, err := uc.List(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stale.Pending) != 0 {
		t.Fatalf("first list should reflect the store at read time: %+v", stale)
	}
	if _, ok := cache.Peek("u1"); ok {
		t.Fatalf("stale read must not be cached")
	}

	fresh, err := uc.List(ctx, session)
	if err != nil || len(fresh.Pending) != 1 {
		t.Fatalf("second list: %+v %v", fresh, err)
	}
}

func TestDelete_UnknownID(t *testing.T) {
	uc, _, _ := newUseCase()
	if err := uc.Delete(context.Background(), session, "missing"); err != domain.ErrTaskNotFound {
		t.Fatalf("got %v want ErrTaskNotFound", err)
	}
}
