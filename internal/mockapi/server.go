// Package mockapi is an in-memory stand-in for the agent backend. It serves
// the same HTTP surface and emits the same log markers, driven by a scripted
// run instead of real agents. Used for demos and for developing the console
// without a backend.
package mockapi

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// Server holds the mock backend's run state.
type Server struct {
	echo *echo.Echo

	mu          sync.Mutex
	running     bool
	waiting     bool
	requestStop bool
	logs        []models.LogEntry
	activeRoot  string
	flags       models.FeatureFlags

	root       string
	workspaces map[string]string // name → group
	stepDelay  time.Duration
	inputCh    chan string
}

// NewServer creates a mock backend rooted at the given (virtual) workspace
// path. stepDelay paces the scripted run so the console has something to
// watch.
func NewServer(root string, stepDelay time.Duration) *Server {
	s := &Server{
		root:       root,
		workspaces: make(map[string]string),
		stepDelay:  stepDelay,
		inputCh:    make(chan string, 1),
		flags: models.FeatureFlags{
			EnableSearchTool:      true,
			EnableHITL:            true,
			EnableSimpleTaskCheck: true,
			EnableDeepResearch:    true,
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	s.registerRoutes(e)
	s.echo = e

	return s
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/api/status", s.handleStatus)
	e.GET("/api/workspace", s.handleWorkspace)
	e.GET("/api/config", s.handleConfig)
	e.POST("/api/run", s.handleRun)
	e.POST("/api/stop", s.handleStop)
	e.POST("/api/input", s.handleInput)
	e.POST("/api/cancel-input", s.handleCancelInput)
	e.POST("/api/create-workspace", s.handleCreateWorkspace)
	e.DELETE("/api/delete-workspace", s.handleDeleteWorkspace)
}

// Start serves the mock backend until Shutdown.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for httptest-style use.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type runRequest struct {
	Goal          string          `json:"goal"`
	WorkspaceRoot string          `json:"workspace_root"`
	Config        map[string]bool `json:"config"`
}

type inputRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleStatus(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]models.LogEntry, len(s.logs))
	copy(logs, s.logs)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"is_running":        s.running,
		"waiting_for_input": s.waiting,
		"logs":              logs,
	})
}

func (s *Server) handleWorkspace(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active interface{}
	if s.activeRoot != "" {
		active = s.activeRoot
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"workspace_root":        s.root,
		"target_root":           s.root,
		"active_workspace_root": active,
		"file_count":            len(s.workspaces),
		"total_size":            int64(len(s.workspaces)) * 4096,
	})
}

func (s *Server) handleConfig(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{"config": s.flags})
}

func (s *Server) handleRun(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return c.JSON(http.StatusOK, errorBody("Agent is already running"))
	}
	s.running = true
	s.waiting = false
	s.requestStop = false
	s.logs = nil
	if req.WorkspaceRoot != "" {
		s.activeRoot = req.WorkspaceRoot
	} else {
		s.activeRoot = s.root
	}
	flags := s.effectiveFlagsLocked(req.Config)
	s.mu.Unlock()

	go s.runScript(req.Goal, flags)

	return c.JSON(http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleStop(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return c.JSON(http.StatusOK, errorBody("Agent is not running"))
	}
	s.requestStop = true
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleInput(c echo.Context) error {
	var req inputRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	s.mu.Lock()
	if !s.waiting {
		s.mu.Unlock()
		return c.JSON(http.StatusOK, errorBody("Not waiting for input"))
	}
	s.waiting = false
	s.mu.Unlock()

	s.inputCh <- req.Text
	return c.JSON(http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleCancelInput(c echo.Context) error {
	s.mu.Lock()
	if !s.waiting {
		s.mu.Unlock()
		return c.JSON(http.StatusOK, errorBody("Not waiting for input"))
	}
	s.waiting = false
	s.appendLocked("User cancelled input request", models.KindControl)
	s.mu.Unlock()

	s.inputCh <- "CANCELLED_BY_USER"
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleCreateWorkspace(c echo.Context) error {
	group := c.QueryParam("group")

	// Short hash names, like the real backend.
	raw := fmt.Sprintf("%s-%d", uuid.NewString(), time.Now().UnixNano())
	name := fmt.Sprintf("%x", sha1.Sum([]byte(raw)))[:12]

	s.mu.Lock()
	s.workspaces[name] = group
	s.mu.Unlock()

	body := map[string]string{"status": "created", "workspace": name}
	if group != "" {
		body["group"] = group
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) handleDeleteWorkspace(c echo.Context) error {
	workspace := c.QueryParam("workspace")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return c.JSON(http.StatusOK, errorBody("Cannot delete workspace while agent is running"))
	}
	if _, ok := s.workspaces[workspace]; !ok {
		return c.JSON(http.StatusOK, errorBody("Workspace not found or invalid path"))
	}
	delete(s.workspaces, workspace)
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Workspace %s deleted", workspace),
	})
}

// WorkspacePath returns the full path of a named workspace under the mock
// root.
func (s *Server) WorkspacePath(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group, ok := s.workspaces[name]; ok && group != "" {
		return path.Join(s.root, group, name)
	}
	return path.Join(s.root, name)
}

func (s *Server) effectiveFlagsLocked(overrides map[string]bool) models.FeatureFlags {
	flags := s.flags
	if v, ok := overrides["enable_search_tool"]; ok {
		flags.EnableSearchTool = v
	}
	if v, ok := overrides["enable_hitl"]; ok {
		flags.EnableHITL = v
	}
	if v, ok := overrides["enable_simple_task_check"]; ok {
		flags.EnableSimpleTaskCheck = v
	}
	if v, ok := overrides["enable_deep_research"]; ok {
		flags.EnableDeepResearch = v
	}
	if v, ok := overrides["deep_research_use_simple_goal"]; ok {
		flags.DeepResearchUseSimpleGoal = v
	}
	return flags
}

func (s *Server) appendLocked(msg string, kind models.LogKind) {
	s.logs = append(s.logs, models.LogEntry{
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Message:   msg,
		Kind:      kind,
	})
}

func errorBody(msg string) map[string]string {
	return map[string]string{"status": "error", "message": msg}
}
