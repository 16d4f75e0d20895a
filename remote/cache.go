package remote

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"taskflow-client/domain"
)

// Cache wraps a Client with Redis-backed caching for the list endpoints.
// Mutations pass through to the authority and evict the scopes they touch.
// Redis being unreachable degrades silently to the authority.
type Cache struct {
	*Client
	redis *redis.Client
	ttl   time.Duration

	mu         sync.Mutex
	taskScopes map[string]struct{}
}

// NewCache creates a caching wrapper around base using the provided Redis
// client and TTL.
func NewCache(base *Client, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("remote.NewCache: base client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		Client:     base,
		redis:      client,
		ttl:        ttl,
		taskScopes: make(map[string]struct{}),
	}
}

func (c *Cache) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var cached []domain.Project
	if c.load(ctx, projectsCacheKey(), &cached) {
		return cached, nil
	}
	projects, err := c.Client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, projectsCacheKey(), projects)
	return projects, nil
}

func (c *Cache) CreateProject(ctx context.Context, fields domain.ProjectFields) (domain.Project, error) {
	project, err := c.Client.CreateProject(ctx, fields)
	if err != nil {
		return domain.Project{}, err
	}
	c.evict(ctx, projectsCacheKey())
	return project, nil
}

func (c *Cache) UpdateProject(ctx context.Context, id string, fields domain.ProjectFields) (domain.Project, error) {
	project, err := c.Client.UpdateProject(ctx, id, fields)
	if err != nil {
		return domain.Project{}, err
	}
	c.evict(ctx, projectsCacheKey())
	return project, nil
}

func (c *Cache) DeleteProject(ctx context.Context, id string) error {
	if err := c.Client.DeleteProject(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, projectsCacheKey(), tasksCacheKey(id), membersCacheKey(id))
	return nil
}

func (c *Cache) ListMembers(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	var cached []domain.ProjectMember
	if c.load(ctx, membersCacheKey(projectID), &cached) {
		return cached, nil
	}
	members, err := c.Client.ListMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, membersCacheKey(projectID), members)
	return members, nil
}

func (c *Cache) Invite(ctx context.Context, projectID, email string, role domain.Role) error {
	if err := c.Client.Invite(ctx, projectID, email, role); err != nil {
		return err
	}
	c.evict(ctx, membersCacheKey(projectID))
	return nil
}

func (c *Cache) ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	var cached []domain.Task
	if c.load(ctx, tasksCacheKey(projectID), &cached) {
		return cached, nil
	}
	tasks, err := c.Client.ListProjectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.taskScopes[projectID] = struct{}{}
	c.mu.Unlock()
	c.store(ctx, tasksCacheKey(projectID), tasks)
	return tasks, nil
}

func (c *Cache) CreateTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	task, err := c.Client.CreateTask(ctx, fields)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, tasksCacheKey(task.Project))
	return task, nil
}

func (c *Cache) UpdateTask(ctx context.Context, id string, fields domain.TaskFields) (domain.Task, error) {
	task, err := c.Client.UpdateTask(ctx, id, fields)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, tasksCacheKey(task.Project))
	return task, nil
}

// DeleteTask evicts every populated task scope: the response carries only the
// id, so the task's project is no longer known here.
func (c *Cache) DeleteTask(ctx context.Context, id string) error {
	if err := c.Client.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	keys := make([]string, 0, len(c.taskScopes))
	for scope := range c.taskScopes {
		keys = append(keys, tasksCacheKey(scope))
	}
	c.mu.Unlock()
	c.evict(ctx, keys...)
	return nil
}

func (c *Cache) load(ctx context.Context, key string, out any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the authority without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, value any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil || len(keys) == 0 {
		return
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

func projectsCacheKey() string { return "projects" }

func tasksCacheKey(projectID string) string { return "tasks:" + projectID }

func membersCacheKey(projectID string) string { return "members:" + projectID }
