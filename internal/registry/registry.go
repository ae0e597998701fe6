// Package registry is the single source of truth for work-item identity,
// hierarchy edges, and per-type ID counters. It knows nothing about
// progress rollups.
package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/RamXX/rollup/internal/fsio"
	"github.com/RamXX/rollup/internal/idgen"
	"github.com/RamXX/rollup/internal/model"
)

// Filename is the well-known registry document at the data-directory root.
const Filename = "registry.json"

// Service reads and mutates the registry document with an in-memory cache.
// All mutations are read-modify-write cycles persisted atomically.
type Service struct {
	dir  string
	path string
	log  *log.Logger

	mu    sync.Mutex
	cache *model.Registry
}

func NewService(dataDir string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		dir:  dataDir,
		path: filepath.Join(dataDir, Filename),
		log:  logger.With("component", "registry"),
	}
}

// Dir returns the data-directory root the registry lives in.
func (s *Service) Dir() string { return s.dir }

// Path returns the location of the registry document.
func (s *Service) Path() string { return s.path }

// Bootstrap writes a fresh registry with zeroed counters. Fails if one
// already exists.
func (s *Service) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing model.Registry
	if err := fsio.ReadJSON(s.path, &existing); err == nil {
		return fmt.Errorf("registry already exists at %s", s.path)
	}
	return s.saveLocked(model.NewRegistry())
}

// Load returns the cached registry, reading it from disk on first use.
// An absent file is a structural failure: a workspace without a registry
// cannot be operated on.
func (s *Service) Load() (*model.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Service) loadLocked() (*model.Registry, error) {
	if s.cache != nil {
		return s.cache, nil
	}
	var r model.Registry
	if err := fsio.ReadJSON(s.path, &r); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: registry document missing at %s", model.ErrStructural, s.path)
		}
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", s.path, err)
	}
	s.cache = &r
	return s.cache, nil
}

// Invalidate drops the cache so the next Load rereads the file. Called when
// an external writer touches the registry document.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

func (s *Service) saveLocked(r *model.Registry) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.LastUpdated = time.Now().UTC()
	if err := fsio.WriteJSON(s.path, r); err != nil {
		return err
	}
	s.cache = r
	return nil
}

// GetWorkItem returns the entry for id, soft-deleted entries included.
func (s *Service) GetWorkItem(id string) (*model.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	entry, ok := r.WorkItems[id]
	if !ok {
		return nil, fmt.Errorf("%w: work item %s", model.ErrNotFound, id)
	}
	return entry, nil
}

// GetParentID resolves the parent edge for id. The empty string means the
// item is the root.
func (s *Service) GetParentID(id string) (string, error) {
	entry, err := s.GetWorkItem(id)
	if err != nil {
		return "", err
	}
	return entry.Parent, nil
}

// GetChildren returns all non-deleted entries whose parent is parentID,
// sorted by id for deterministic output.
func (s *Service) GetChildren(parentID string) ([]*model.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	var children []*model.RegistryEntry
	for _, entry := range r.WorkItems {
		if !entry.Deleted && entry.Parent == parentID {
			children = append(children, entry)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return children, nil
}

// GetStatePath returns the absolute path of an item's state document, or
// the empty string for Task items, which carry none.
func (s *Service) GetStatePath(id string) (string, error) {
	entry, err := s.GetWorkItem(id)
	if err != nil {
		return "", err
	}
	if entry.Type.IsLeaf() {
		return "", nil
	}
	return filepath.Join(s.dir, filepath.Dir(entry.Path), id+".state.json"), nil
}

// ItemPath returns the absolute path of an item's content document.
func (s *Service) ItemPath(id string) (string, error) {
	entry, err := s.GetWorkItem(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, entry.Path), nil
}

// NextID increments the counter for the type, persists the registry, and
// returns the formatted ID. Counters are never reused, even across
// soft-deletes.
func (s *Service) NextID(t model.WorkItemType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.loadLocked()
	if err != nil {
		return "", err
	}
	r.IDCounters[t.Prefix()]++
	if err := s.saveLocked(r); err != nil {
		return "", err
	}
	return idgen.FormatID(t, r.IDCounters[t.Prefix()]), nil
}

// AddWorkItem inserts a new entry. Duplicate ids are rejected rather than
// silently overwritten.
func (s *Service) AddWorkItem(entry *model.RegistryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := r.WorkItems[entry.ID]; ok {
		return fmt.Errorf("work item %s already exists", entry.ID)
	}
	r.WorkItems[entry.ID] = entry
	return s.saveLocked(r)
}

// Update carries the mutable fields of an entry; nil fields are untouched.
type Update struct {
	Title  *string
	Status *model.Status
	Parent *string
	Path   *string
}

// UpdateWorkItem applies a partial update and refreshes the entry's
// updated date.
func (s *Service) UpdateWorkItem(id string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.loadLocked()
	if err != nil {
		return err
	}
	entry, ok := r.WorkItems[id]
	if !ok {
		return fmt.Errorf("%w: work item %s", model.ErrNotFound, id)
	}
	if upd.Title != nil {
		entry.Title = *upd.Title
	}
	if upd.Status != nil {
		entry.Status = *upd.Status
	}
	if upd.Parent != nil {
		entry.Parent = *upd.Parent
	}
	if upd.Path != nil {
		entry.Path = *upd.Path
	}
	entry.Updated = model.Today()
	return s.saveLocked(r)
}

// DeleteWorkItem soft-deletes an entry. The entry and its counter history
// are preserved.
func (s *Service) DeleteWorkItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.loadLocked()
	if err != nil {
		return err
	}
	entry, ok := r.WorkItems[id]
	if !ok {
		return fmt.Errorf("%w: work item %s", model.ErrNotFound, id)
	}
	entry.Deleted = true
	entry.Updated = model.Today()
	s.log.Debug("soft-deleted work item", "id", id)
	return s.saveLocked(r)
}

// Items returns all non-deleted entries sorted by id.
func (s *Service) Items() ([]*model.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	items := make([]*model.RegistryEntry, 0, len(r.WorkItems))
	for _, entry := range r.WorkItems {
		if !entry.Deleted {
			items = append(items, entry)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
