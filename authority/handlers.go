package authority

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskflow-client/domain"
)

func newID() string { return uuid.NewString() }

type credentials struct {
	domain.User
	Token string `json:"token"`
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return authError(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	var rec *userRecord
	for _, u := range s.users {
		if strings.EqualFold(u.user.Email, req.Email) {
			rec = u
			break
		}
	}
	s.mu.Unlock()

	if rec == nil || rec.password != req.Password {
		return authError(c, http.StatusUnauthorized, "Invalid credentials")
	}
	token, err := s.auth.Mint(rec.user.ID, tokenTTL)
	if err != nil {
		return authError(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, credentials{User: rec.user, Token: token})
}

func (s *Server) register(c echo.Context) error {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     domain.Role `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return authError(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return authError(c, http.StatusBadRequest, "Email and password are required")
	}
	if req.Role == "" {
		req.Role = domain.RoleMember
	}
	if !req.Role.Valid() {
		return authError(c, http.StatusBadRequest, "Unknown role")
	}

	s.mu.Lock()
	for _, u := range s.users {
		if strings.EqualFold(u.user.Email, req.Email) {
			s.mu.Unlock()
			return authError(c, http.StatusConflict, "User already exists")
		}
	}
	user := domain.User{
		ID:        newID(),
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	}
	s.users[user.ID] = &userRecord{user: user, password: req.Password}
	s.mu.Unlock()

	token, err := s.auth.Mint(user.ID, tokenTTL)
	if err != nil {
		return authError(c, http.StatusInternalServerError, err.Error())
	}
	s.logger.WithFields(log.Fields{"user": user.ID, "role": user.Role}).Info("account registered")
	return c.JSON(http.StatusCreated, credentials{User: user, Token: token})
}

func (s *Server) profile(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return authError(c, http.StatusUnauthorized, "Not authorized")
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) updatePassword(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return authError(c, http.StatusUnauthorized, "Not authorized")
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return authError(c, http.StatusBadRequest, "invalid body")
	}
	if req.NewPassword == "" {
		return authError(c, http.StatusBadRequest, "New password is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.users[user.ID]
	if rec.password != req.CurrentPassword {
		return authError(c, http.StatusBadRequest, "Current password is incorrect")
	}
	rec.password = req.NewPassword
	return c.NoContent(http.StatusOK)
}

func (s *Server) listProjects(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := make([]domain.Project, 0, len(s.projects))
	for _, rec := range s.projects {
		if s.hasAccess(user, rec) {
			projects = append(projects, rec.project)
		}
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) createProject(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	if user.Role != domain.RoleAdmin {
		return messageError(c, http.StatusForbidden, "Only admins can create projects")
	}
	var fields domain.ProjectFields
	if err := c.Bind(&fields); err != nil {
		return messageError(c, http.StatusBadRequest, "invalid body")
	}
	if err := domain.ValidateProject(fields); err != nil {
		return messageError(c, http.StatusBadRequest, err.Error())
	}

	project := domain.Project{ID: newID(), Name: fields.Name, Description: fields.Description}
	s.mu.Lock()
	s.projects[project.ID] = &projectRecord{project: project, members: make(map[string]struct{})}
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, project)
}

func (s *Server) updateProject(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	if user.Role != domain.RoleAdmin {
		return messageError(c, http.StatusForbidden, "Only admins can update projects")
	}
	var fields domain.ProjectFields
	if err := c.Bind(&fields); err != nil {
		return messageError(c, http.StatusBadRequest, "invalid body")
	}
	if err := domain.ValidateProject(fields); err != nil {
		return messageError(c, http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[c.Param("id")]
	if !ok {
		return messageError(c, http.StatusNotFound, "Project not found")
	}
	rec.project.Name = fields.Name
	rec.project.Description = fields.Description
	return c.JSON(http.StatusOK, rec.project)
}

func (s *Server) deleteProject(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	if user.Role != domain.RoleAdmin {
		return messageError(c, http.StatusForbidden, "Only admins can delete projects")
	}

	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return messageError(c, http.StatusNotFound, "Project not found")
	}
	delete(s.projects, id)
	for taskID, task := range s.tasks {
		if task.Project == id {
			delete(s.tasks, taskID)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listMembers(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.projects[c.Param("id")]
	if !found {
		return messageError(c, http.StatusNotFound, "Project not found")
	}
	if !s.hasAccess(user, rec) {
		return messageError(c, http.StatusForbidden, "No access to this project")
	}
	members := make([]domain.ProjectMember, 0, len(rec.members))
	for id := range rec.members {
		if u, ok := s.users[id]; ok {
			members = append(members, domain.ProjectMember{ID: u.user.ID, Name: u.user.Name, Email: u.user.Email})
		}
	}
	return c.JSON(http.StatusOK, members)
}

func (s *Server) invite(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	if user.Role != domain.RoleAdmin {
		return messageError(c, http.StatusForbidden, "Only admins can invite users")
	}
	var req struct {
		Email string      `json:"email"`
		Role  domain.Role `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return messageError(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return messageError(c, http.StatusBadRequest, "Email is required")
	}
	if req.Role == "" {
		req.Role = domain.RoleMember
	}
	if !req.Role.Valid() {
		return messageError(c, http.StatusBadRequest, "Unknown role")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.projects[c.Param("id")]
	if !found {
		return messageError(c, http.StatusNotFound, "Project not found")
	}

	var invited *userRecord
	for _, u := range s.users {
		if strings.EqualFold(u.user.Email, req.Email) {
			invited = u
			break
		}
	}
	if invited == nil {
		// Unknown addresses get a provisional account with the invited role.
		u := domain.User{
			ID:        newID(),
			Name:      req.Email,
			Email:     req.Email,
			Role:      req.Role,
			CreatedAt: time.Now().UTC(),
		}
		invited = &userRecord{user: u}
		s.users[u.ID] = invited
	}
	rec.members[invited.user.ID] = struct{}{}
	return c.JSON(http.StatusOK, map[string]string{"message": "User invited"})
}

func (s *Server) listProjectTasks(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.projects[c.Param("id")]
	if !found {
		return messageError(c, http.StatusNotFound, "Project not found")
	}
	if !s.hasAccess(user, rec) {
		return messageError(c, http.StatusForbidden, "No access to this project")
	}
	// Every project task goes to any member with access; assignee-based
	// visibility is the client's concern.
	tasks := make([]domain.Task, 0)
	for _, task := range s.tasks {
		if task.Project == rec.project.ID {
			tasks = append(tasks, task)
		}
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	var fields domain.TaskFields
	if err := c.Bind(&fields); err != nil {
		return messageError(c, http.StatusBadRequest, "invalid body")
	}
	if fields.Status == "" {
		fields.Status = domain.StatusTodo
	}
	if err := domain.ValidateTask(fields); err != nil {
		return messageError(c, http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.projects[fields.Project]
	if !found {
		return messageError(c, http.StatusNotFound, "Project not found")
	}
	if !s.hasAccess(user, rec) {
		return messageError(c, http.StatusForbidden, "No access to this project")
	}

	task := domain.Task{
		ID:          newID(),
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		DueDate:     fields.DueDate,
		Project:     fields.Project,
		Assignee:    fields.Assignee,
	}
	s.tasks[task.ID] = task
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) updateTask(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	var fields domain.TaskFields
	if err := c.Bind(&fields); err != nil {
		return messageError(c, http.StatusBadRequest, "invalid body")
	}

	if strings.TrimSpace(fields.Title) == "" {
		return messageError(c, http.StatusBadRequest, "Task title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task, found := s.tasks[c.Param("id")]
	if !found {
		return messageError(c, http.StatusNotFound, "Task not found")
	}
	rec := s.projects[task.Project]
	if rec == nil || !s.hasAccess(user, rec) {
		return messageError(c, http.StatusForbidden, "No access to this project")
	}
	if user.Role != domain.RoleAdmin && task.Assignee != user.ID {
		return messageError(c, http.StatusForbidden, "Only the assignee can update this task")
	}

	task.Title = fields.Title
	task.Description = fields.Description
	if fields.Status != "" {
		if !fields.Status.Valid() {
			return messageError(c, http.StatusBadRequest, "Unknown task status")
		}
		task.Status = fields.Status
	}
	task.DueDate = fields.DueDate
	task.Assignee = fields.Assignee
	// Project is stable after creation; a different value in the payload is
	// ignored.
	s.tasks[task.ID] = task
	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	user, ok := s.requireUser(c)
	if !ok {
		return messageError(c, http.StatusUnauthorized, "Not authorized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task, found := s.tasks[c.Param("id")]
	if !found {
		return messageError(c, http.StatusNotFound, "Task not found")
	}
	rec := s.projects[task.Project]
	if rec == nil || !s.hasAccess(user, rec) {
		return messageError(c, http.StatusForbidden, "No access to this project")
	}
	if user.Role != domain.RoleAdmin && task.Assignee != user.ID {
		return messageError(c, http.StatusForbidden, "Only the assignee can delete this task")
	}
	delete(s.tasks, task.ID)
	return c.NoContent(http.StatusNoContent)
}
