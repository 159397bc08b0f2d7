package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agent-station/companion/internal/infrastructure/logging"
)

var (
	// ErrNotFound indicates the project id is not registered.
	ErrNotFound = errors.New("project not found")

	// ErrDuplicate indicates a project with the same path already exists.
	ErrDuplicate = errors.New("project already exists")
)

// Project is a registered working directory.
type Project struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Path             string `json:"path"`
	HasActiveProcess bool   `json:"hasActiveProcess"`
}

// Registry is a mutex-guarded project list persisted as pretty-printed
// JSON. It only supplies project ids and working directories; it knows
// nothing about terminal sessions.
type Registry struct {
	mu       sync.Mutex
	path     string
	projects []Project
	logger   *logging.Logger
}

// DefaultPath returns the standard projects.json location under the
// user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "agent-station", "projects.json"), nil
}

// Open loads the registry from path, starting empty if the file does
// not exist yet.
func Open(path string, logger *logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Registry{path: path, logger: logger}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read projects file: %w", err)
	}

	if err := json.Unmarshal(content, &r.projects); err != nil {
		return nil, fmt.Errorf("parse projects file: %w", err)
	}

	logger.Info("loaded project registry",
		zap.String("path", path),
		zap.Int("projects", len(r.projects)),
	)
	return r, nil
}

// List returns a snapshot of all registered projects.
func (r *Registry) List() []Project {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Get returns the project with the given id.
func (r *Registry) Get(id string) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add registers an existing directory as a project. The name is derived
// from the directory basename and the id is a fresh UUID. Duplicate
// paths are rejected.
func (r *Registry) Add(path string) (Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Project{}, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return Project{}, fmt.Errorf("path is not a directory: %s", path)
	}

	project := Project{
		ID:   uuid.NewString(),
		Name: filepath.Base(path),
		Path: path,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.projects {
		if p.Path == path {
			return Project{}, fmt.Errorf("%w: %s", ErrDuplicate, path)
		}
	}

	r.projects = append(r.projects, project)
	if err := r.save(); err != nil {
		return Project{}, err
	}
	return project, nil
}

// Remove deletes the project with the given id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.projects {
		if p.ID == id {
			r.projects = append(r.projects[:i], r.projects[i+1:]...)
			return r.save()
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// save writes the registry under the held lock.
func (r *Registry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	content, err := json.MarshalIndent(r.projects, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize projects: %w", err)
	}

	if err := os.WriteFile(r.path, content, 0o644); err != nil {
		return fmt.Errorf("write projects file: %w", err)
	}
	return nil
}
