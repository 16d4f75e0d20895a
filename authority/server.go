// Package authority is an in-memory reference implementation of the remote
// authority's REST contract. It backs the module's integration-style tests
// and the local development binary; production deployments point the client
// at a real authority instead.
package authority

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
)

const tokenTTL = 24 * time.Hour

type userRecord struct {
	user     domain.User
	password string
}

type projectRecord struct {
	project domain.Project
	// members holds user ids with access; admins have implicit access to
	// every project and are not listed.
	members map[string]struct{}
}

// Server holds the authority's entity state behind one mutex. Single-node,
// in-memory, last write wins.
type Server struct {
	mu       sync.Mutex
	users    map[string]*userRecord
	projects map[string]*projectRecord
	tasks    map[string]domain.Task

	auth   *Auth
	logger *log.Logger
	echo   *echo.Echo
}

// NewServer creates an authority with the given auth mode and registers the
// REST routes.
func NewServer(auth *Auth, logger *log.Logger) *Server {
	if auth == nil {
		panic("authority.NewServer: auth is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{
		users:    make(map[string]*userRecord),
		projects: make(map[string]*projectRecord),
		tasks:    make(map[string]domain.Task),
		auth:     auth,
		logger:   logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.POST("/auth/login", s.login)
	e.POST("/auth/register", s.register)
	e.GET("/auth/profile", s.profile)
	e.PUT("/auth/update-password", s.updatePassword)

	e.GET("/projects", s.listProjects)
	e.POST("/projects", s.createProject)
	e.PUT("/projects/:id", s.updateProject)
	e.DELETE("/projects/:id", s.deleteProject)
	e.GET("/projects/:id/members", s.listMembers)
	e.POST("/projects/:id/invite", s.invite)

	e.GET("/tasks/project/:id", s.listProjectTasks)
	e.POST("/tasks", s.createTask)
	e.PUT("/tasks/:id", s.updateTask)
	e.DELETE("/tasks/:id", s.deleteTask)

	s.echo = e
	return s
}

// Handler exposes the authority as an http.Handler for httptest servers and
// the local binary.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves the authority on addr, blocking until shutdown.
func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

// Seed inserts an account directly, bypassing registration. Intended for
// tests and local development setup; it is the only way to create an admin.
func (s *Server) Seed(user domain.User, password string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = &userRecord{user: user, password: password}
	return user
}

// MintToken issues a bearer token for an existing account. Shared-secret
// mode only.
func (s *Server) MintToken(userID string) (string, error) {
	return s.auth.Mint(userID, tokenTTL)
}

// requireUser resolves the request's bearer token to an account.
func (s *Server) requireUser(c echo.Context) (domain.User, bool) {
	id, err := s.auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
	if err != nil {
		return domain.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, false
	}
	return rec.user, true
}

func (s *Server) hasAccess(user domain.User, rec *projectRecord) bool {
	if user.Role == domain.RoleAdmin {
		return true
	}
	_, ok := rec.members[user.ID]
	return ok
}

// messageError writes the {message} error shape shared by all non-auth
// endpoints.
func messageError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"message": msg})
}

// authError writes the {msg} shape the auth endpoints use.
func authError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"msg": msg})
}
