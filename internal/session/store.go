// Package session manages the durable session registry and the reconciliation
// between backend run state and locally cached conversation logs.
package session

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/agentdeck-io/agentdeck/internal/config"
	"github.com/agentdeck-io/agentdeck/internal/models"
)

// DefaultSessionName is the name of the session created on first launch.
const DefaultSessionName = "default"

// registryFile is the on-disk shape of sessions.yaml.
type registryFile struct {
	Version        int               `yaml:"version"`
	DefaultCreated bool              `yaml:"default_created"`
	Sessions       []*models.Session `yaml:"sessions"`
}

// logFile is the on-disk shape of a cached session log.
type logFile struct {
	Logs []models.LogEntry `yaml:"logs"`
}

// FileStore persists sessions to a YAML registry plus one cached log file per
// session. All methods are safe for concurrent use.
type FileStore struct {
	path    string
	logsDir string

	mu  sync.RWMutex
	reg *registryFile

	watcher   *fsnotify.Watcher
	done      chan struct{}
	debounce  *time.Timer
	writeMu   sync.Mutex
	lastWrite time.Time
}

// NewFileStore opens (or initializes) the registry at path, caching logs under
// logsDir.
func NewFileStore(path, logsDir string) (*FileStore, error) {
	reg, err := config.LoadYAMLOrDefault(path, func() *registryFile {
		return &registryFile{Version: 1}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session registry: %w", err)
	}

	return &FileStore{
		path:    path,
		logsDir: logsDir,
		reg:     reg,
		done:    make(chan struct{}),
	}, nil
}

// OpenGlobal opens the store at its standard location under ~/.agentdeck/.
func OpenGlobal() (*FileStore, error) {
	if err := config.EnsureGlobalLogsDir(); err != nil {
		return nil, err
	}
	path, err := config.GlobalSessionsFile()
	if err != nil {
		return nil, err
	}
	logsDir, err := config.GlobalLogsDir()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path, logsDir)
}

// List returns all sessions, oldest first.
func (s *FileStore) List() []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Session, len(s.reg.Sessions))
	copy(out, s.reg.Sessions)
	return out
}

// Get returns the session with the given ID.
func (s *FileStore) Get(id string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.reg.Sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return nil, false
}

// Create adds a new session to the registry and persists it.
func (s *FileStore) Create(name, workspace, group string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := models.NewSession(uuid.NewString(), name, workspace, group)
	s.reg.Sessions = append(s.reg.Sessions, sess)

	if err := s.saveLocked(); err != nil {
		s.reg.Sessions = s.reg.Sessions[:len(s.reg.Sessions)-1]
		return nil, err
	}
	return sess, nil
}

// NeedsDefault reports whether the default session has never been created.
func (s *FileStore) NeedsDefault() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.reg.DefaultCreated
}

// EnsureDefault creates the default session exactly once across the store's
// lifetime. Deleting it later does not bring it back.
func (s *FileStore) EnsureDefault(workspace string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reg.DefaultCreated {
		return nil, nil
	}

	sess := models.NewSession(uuid.NewString(), DefaultSessionName, workspace, "")
	s.reg.Sessions = append(s.reg.Sessions, sess)
	s.reg.DefaultCreated = true

	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetCollapse records a durable collapse preference for one step group of a
// session.
func (s *FileStore) SetCollapse(id, groupKey string, collapsed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(id)
	if sess == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	if sess.Collapse == nil {
		sess.Collapse = make(map[string]bool)
	}
	sess.Collapse[groupKey] = collapsed

	return s.saveLocked()
}

// UpdateLogs replaces the cached log snapshot for a session.
func (s *FileStore) UpdateLogs(id string, logs []models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(id)
	if sess == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	sess.Logs = logs

	s.markSelfWrite()
	return config.SaveYAML(s.logPath(id), &logFile{Logs: logs})
}

// LoadLogs reads the cached log snapshot for a session. A missing cache file
// is an empty log, not an error.
func (s *FileStore) LoadLogs(id string) ([]models.LogEntry, error) {
	path := s.logPath(id)
	if !config.FileExists(path) {
		return nil, nil
	}

	var lf logFile
	if err := config.LoadYAML(path, &lf); err != nil {
		return nil, err
	}
	return lf.Logs, nil
}

// Delete removes a session record and its cached log.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sess := range s.reg.Sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	s.reg.Sessions = append(s.reg.Sessions[:idx], s.reg.Sessions[idx+1:]...)
	if err := s.saveLocked(); err != nil {
		return err
	}

	if err := os.Remove(s.logPath(id)); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove cached log for %s: %v", id, err)
	}
	return nil
}

// Watch reloads the registry when another process rewrites it, then invokes
// onChange. Events caused by this store's own saves are suppressed.
func (s *FileStore) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Atomic writes surface as Rename on the target.
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Base(event.Name) != filepath.Base(s.path) {
					continue
				}
				if s.recentSelfWrite() {
					continue
				}
				s.debounceReload(onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Session watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the registry watcher, if one was started.
func (s *FileStore) Close() {
	close(s.done)
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
}

func (s *FileStore) debounceReload(onChange func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(100*time.Millisecond, func() {
		if err := s.reload(); err != nil {
			log.Printf("Warning: failed to reload session registry: %v", err)
			return
		}
		if onChange != nil {
			onChange()
		}
	})
}

func (s *FileStore) reload() error {
	reg, err := config.LoadYAMLOrDefault(s.path, func() *registryFile {
		return &registryFile{Version: 1}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
	return nil
}

func (s *FileStore) markSelfWrite() {
	s.writeMu.Lock()
	s.lastWrite = time.Now()
	s.writeMu.Unlock()
}

func (s *FileStore) recentSelfWrite() bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return time.Since(s.lastWrite) < 500*time.Millisecond
}

func (s *FileStore) findLocked(id string) *models.Session {
	for _, sess := range s.reg.Sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func (s *FileStore) saveLocked() error {
	s.markSelfWrite()
	return config.SaveYAML(s.path, s.reg)
}

func (s *FileStore) logPath(id string) string {
	return filepath.Join(s.logsDir, id+".yaml")
}
