package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agent-station/companion/internal/infrastructure/logging"
	"github.com/agent-station/companion/internal/projects"
	"github.com/agent-station/companion/internal/terminal"
)

// Handlers exposes the terminal command surface and the project
// registry over HTTP.
type Handlers struct {
	terminals *terminal.Manager
	projects  *projects.Registry
	logger    *logging.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(terminals *terminal.Manager, registry *projects.Registry, logger *logging.Logger) *Handlers {
	return &Handlers{
		terminals: terminals,
		projects:  registry,
		logger:    logger,
	}
}

// RegisterRoutes attaches all routes to the router.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	r.POST("/terminals", h.SpawnTerminal)
	r.GET("/terminals", h.ListTerminals)
	r.POST("/terminals/:id/input", h.WriteTerminal)
	r.POST("/terminals/:id/resize", h.ResizeTerminal)
	r.GET("/terminals/:id/status", h.TerminalStatus)
	r.DELETE("/terminals/:id", h.KillTerminal)

	r.GET("/projects", h.ListProjects)
	r.POST("/projects", h.AddProject)
	r.DELETE("/projects/:id", h.RemoveProject)
	r.GET("/projects/:id/terminal", h.TerminalForProject)
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SpawnTerminal starts a new shell session for a project.
func (h *Handlers) SpawnTerminal(c *gin.Context) {
	var req struct {
		ProjectID string `json:"project_id" binding:"required"`
		Cwd       string `json:"cwd" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	id, err := h.terminals.Spawn(req.ProjectID, req.Cwd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}

// WriteTerminal sends input bytes to a session.
func (h *Handlers) WriteTerminal(c *gin.Context) {
	var req struct {
		Data string `json:"data" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if err := h.terminals.Write(c.Param("id"), []byte(req.Data)); err != nil {
		c.JSON(statusFor(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResizeTerminal changes a session's geometry.
func (h *Handlers) ResizeTerminal(c *gin.Context) {
	var req struct {
		Cols int `json:"cols" binding:"required"`
		Rows int `json:"rows" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	// Winsize carries 16-bit dimensions.
	if req.Cols <= 0 || req.Rows <= 0 || req.Cols > 0xFFFF || req.Rows > 0xFFFF {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: cols and rows must be between 1 and 65535",
		})
		return
	}

	if err := h.terminals.Resize(c.Param("id"), req.Cols, req.Rows); err != nil {
		c.JSON(statusFor(err), gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TerminalStatus reports session liveness; unknown ids report false.
func (h *Handlers) TerminalStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"running": h.terminals.Status(c.Param("id")),
	})
}

// KillTerminal removes a session; killing an unknown id succeeds.
func (h *Handlers) KillTerminal(c *gin.Context) {
	h.terminals.Kill(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListTerminals returns a snapshot of all registered sessions.
func (h *Handlers) ListTerminals(c *gin.Context) {
	infos := h.terminals.List()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"terminals": infos,
		"count":     len(infos),
	})
}

// TerminalForProject returns the first session for a project, if any.
func (h *Handlers) TerminalForProject(c *gin.Context) {
	info, found := h.terminals.FindByProject(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "no terminal for project",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"terminal": info,
	})
}

// ListProjects returns all registered projects.
func (h *Handlers) ListProjects(c *gin.Context) {
	list := h.projects.List()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"projects": list,
		"count":    len(list),
	})
}

// AddProject registers a working directory.
func (h *Handlers) AddProject(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	project, err := h.projects.Add(req.Path)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, projects.ErrDuplicate) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// RemoveProject deletes a project from the registry.
func (h *Handlers) RemoveProject(c *gin.Context) {
	if err := h.projects.Remove(c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, projects.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// statusFor maps terminal errors to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, terminal.ErrSessionNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
