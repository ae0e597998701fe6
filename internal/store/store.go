// Package store composes the registry, state store, and propagation engine
// over one data directory, and owns the work-item content documents.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RamXX/vlt"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/RamXX/rollup/internal/engine"
	"github.com/RamXX/rollup/internal/model"
	"github.com/RamXX/rollup/internal/registry"
	"github.com/RamXX/rollup/internal/state"
)

// ConfigFile is the workspace config at the data-directory root.
const ConfigFile = ".plan.yaml"

// Config holds workspace-level configuration stored in .plan.yaml.
type Config struct {
	Version   string `yaml:"version"`
	Project   string `yaml:"project"` // root project id
	CreatedBy string `yaml:"created_by"`
}

// Store wraps a vlt.Vault plus the planning components for one workspace.
type Store struct {
	dir    string
	config Config
	vault  *vlt.Vault
	reg    *registry.Service
	states *state.Store
	eng    *engine.Engine
	log    *log.Logger
}

// Open opens an existing workspace at dir.
func Open(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	v, err := vlt.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	s := &Store{dir: dir, vault: v, log: logger}
	if err := s.loadConfig(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	s.reg = registry.NewService(dir, logger)
	s.states = state.NewStore(logger)
	s.eng = engine.New(s.reg, s.states, logger)
	return s, nil
}

// Init creates a new workspace at dir: config, registry, and the root
// project with its content and state documents.
func Init(dir, projectTitle, author string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	cfg := Config{Version: "1", CreatedBy: author}
	if err := writeConfig(dir, cfg); err != nil {
		return nil, err
	}

	v, err := vlt.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open vault after init: %w", err)
	}

	s := &Store{dir: dir, config: cfg, vault: v, log: logger}
	s.reg = registry.NewService(dir, logger)
	s.states = state.NewStore(logger)
	s.eng = engine.New(s.reg, s.states, logger)

	if err := s.reg.Bootstrap(); err != nil {
		return nil, err
	}

	project, err := s.createProject(projectTitle)
	if err != nil {
		return nil, err
	}
	s.config.Project = project.ID
	if err := s.SaveConfig(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadConfig() error {
	data, err := os.ReadFile(filepath.Join(s.dir, ConfigFile))
	if err != nil {
		return fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	return yaml.Unmarshal(data, &s.config)
}

func writeConfig(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveConfig writes the current config back to .plan.yaml.
func (s *Store) SaveConfig() error {
	return writeConfig(s.dir, s.config)
}

// Dir returns the workspace root directory.
func (s *Store) Dir() string { return s.dir }

// Config returns the workspace configuration.
func (s *Store) Config() Config { return s.config }

// ProjectID returns the root project's id.
func (s *Store) ProjectID() string { return s.config.Project }

// Registry returns the identity/hierarchy component.
func (s *Store) Registry() *registry.Service { return s.reg }

// States returns the per-node state document component.
func (s *Store) States() *state.Store { return s.states }

// Engine returns the propagation engine.
func (s *Store) Engine() *engine.Engine { return s.eng }

// ItemExists checks whether a work item is registered (soft-deleted
// entries count as existing).
func (s *Store) ItemExists(id string) bool {
	_, err := s.reg.GetWorkItem(id)
	return err == nil
}

// StatePathOf resolves the state document for either a work-item id or a
// path already pointing at a state document.
func (s *Store) StatePathOf(idOrPath string) (string, error) {
	if _, err := os.Stat(idOrPath); err == nil {
		return idOrPath, nil
	}
	p, err := s.reg.GetStatePath(idOrPath)
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", fmt.Errorf("%w: %s is a leaf item with no state document", model.ErrValidation, idOrPath)
	}
	return p, nil
}
