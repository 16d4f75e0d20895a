package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskflow-client/domain"
)

// fakeAuthority counts task-list hits and serves a fixed dataset.
type fakeAuthority struct {
	taskListCalls    atomic.Int64
	projectListCalls atomic.Int64
}

func (f *fakeAuthority) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/project/p1", func(w http.ResponseWriter, r *http.Request) {
		f.taskListCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"t1","title":"Write code","status":"todo","project":"p1"}]`))
	})
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		f.projectListCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Roadmap"}]`))
	})
	mux.HandleFunc("PUT /tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t1","title":"Write code","status":"done","project":"p1"}`))
	})
	return mux
}

func newCacheFixture(t *testing.T) (*Cache, *fakeAuthority, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	authority := &fakeAuthority{}
	srv := httptest.NewServer(authority.handler())
	t.Cleanup(srv.Close)

	cache := NewCache(New(srv.URL, testLogger()), rc, time.Minute)
	return cache, authority, mr
}

func TestCacheListTasksMissThenHit(t *testing.T) {
	cache, authority, mr := newCacheFixture(t)
	ctx := context.Background()

	expected := []domain.Task{{ID: "t1", Title: "Write code", Status: domain.StatusTodo, Project: "p1"}}

	tasks, err := cache.ListProjectTasks(ctx, "p1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if !reflect.DeepEqual(tasks, expected) {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
	if got := authority.taskListCalls.Load(); got != 1 {
		t.Fatalf("expected 1 authority call, got %d", got)
	}
	if ttl := mr.TTL(tasksCacheKey("p1")); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.ListProjectTasks(ctx, "p1")
	if err != nil {
		t.Fatalf("list cached tasks: %v", err)
	}
	if !reflect.DeepEqual(cached, expected) {
		t.Fatalf("unexpected cached tasks: %#v", cached)
	}
	if got := authority.taskListCalls.Load(); got != 1 {
		t.Fatalf("expected cached list to avoid authority, calls=%d", got)
	}
}

func TestCacheUpdateTaskEvictsScope(t *testing.T) {
	cache, authority, mr := newCacheFixture(t)
	ctx := context.Background()

	if _, err := cache.ListProjectTasks(ctx, "p1"); err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if !mr.Exists(tasksCacheKey("p1")) {
		t.Fatal("expected task scope to be cached")
	}

	fields := domain.TaskFields{Title: "Write code", Status: domain.StatusDone, Project: "p1"}
	if _, err := cache.UpdateTask(ctx, "t1", fields); err != nil {
		t.Fatalf("update task: %v", err)
	}
	if mr.Exists(tasksCacheKey("p1")) {
		t.Fatal("expected task scope to be evicted after update")
	}

	if _, err := cache.ListProjectTasks(ctx, "p1"); err != nil {
		t.Fatalf("relist tasks: %v", err)
	}
	if got := authority.taskListCalls.Load(); got != 2 {
		t.Fatalf("expected relist to hit authority, calls=%d", got)
	}
}

func TestCacheDegradesWhenRedisIsDown(t *testing.T) {
	cache, authority, mr := newCacheFixture(t)
	ctx := context.Background()

	mr.Close()

	if _, err := cache.ListProjects(ctx); err != nil {
		t.Fatalf("list projects with redis down: %v", err)
	}
	if _, err := cache.ListProjects(ctx); err != nil {
		t.Fatalf("second list with redis down: %v", err)
	}
	if got := authority.projectListCalls.Load(); got != 2 {
		t.Fatalf("expected both lists to hit authority, calls=%d", got)
	}
}

func TestCacheWithoutRedisClientPassesThrough(t *testing.T) {
	authority := &fakeAuthority{}
	srv := httptest.NewServer(authority.handler())
	t.Cleanup(srv.Close)

	cache := NewCache(New(srv.URL, testLogger()), nil, time.Minute)
	if _, err := cache.ListProjects(context.Background()); err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if got := authority.projectListCalls.Load(); got != 1 {
		t.Fatalf("expected authority call, got %d", got)
	}
}
