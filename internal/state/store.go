// Package state reads, writes, validates, and recomputes a single node's
// persisted state document. It has no knowledge of the tree shape beyond
// what the caller hands it.
package state

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/RamXX/rollup/internal/fsio"
	"github.com/RamXX/rollup/internal/model"
)

// Store handles per-node state document I/O.
type Store struct {
	log      *log.Logger
	validate *validator.Validate
}

func NewStore(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		log:      logger.With("component", "state"),
		validate: validator.New(),
	}
}

// Load reads and validates the document at path without side effects.
// The stored progress is returned as-is, stale or not; callers that want
// auto-correction persisted use Reconcile.
func (s *Store) Load(path string) (*model.StateDocument, error) {
	var doc model.StateDocument
	if err := fsio.ReadJSON(path, &doc); err != nil {
		return nil, err
	}
	if err := s.Validate(&doc); err != nil {
		return nil, fmt.Errorf("state document %s: %w", path, err)
	}
	return &doc, nil
}

// Reconcile loads the document and, when its stored progress disagrees with
// the value derived from its children, persists the corrected document
// before returning it.
func (s *Store) Reconcile(path string) (*model.StateDocument, error) {
	doc, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	derived := CalculateProgress(doc.Children)
	if doc.Progress == derived {
		return doc, nil
	}
	s.log.Warn("correcting stale progress",
		"path", path, "stored", doc.Progress.Percentage, "derived", derived.Percentage)
	doc.Progress = derived
	doc.Updated = time.Now().UTC()
	if err := s.Save(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save validates doc and writes it atomically.
func (s *Store) Save(path string, doc *model.StateDocument) error {
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("state document %s: %w", path, err)
	}
	return fsio.WriteJSON(path, doc)
}

// Validate checks required fields, enum membership, and metric ranges.
func (s *Store) Validate(doc *model.StateDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: nil state document", model.ErrStructural)
	}
	if err := s.validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return nil
}

// CalculateProgress counts children by status. Blocked children are part of
// TotalItems but contribute to none of the three buckets. The percentage is
// rounded half away from zero.
func CalculateProgress(children map[string]model.ChildSummary) model.ProgressMetrics {
	var m model.ProgressMetrics
	for _, c := range children {
		m.TotalItems++
		switch c.Status {
		case model.StatusCompleted:
			m.Completed++
		case model.StatusInProgress:
			m.InProgress++
		case model.StatusPlanned:
			m.Planned++
		}
	}
	if m.TotalItems > 0 {
		m.Percentage = int(math.Round(float64(m.Completed) / float64(m.TotalItems) * 100))
	}
	return m
}

// DeriveStatus computes a node's status from its children: completed when
// every child is completed, in-progress when any child has started, planned
// otherwise.
func DeriveStatus(children map[string]model.ChildSummary) model.Status {
	if len(children) == 0 {
		return model.StatusPlanned
	}
	completed := 0
	started := false
	for _, c := range children {
		switch c.Status {
		case model.StatusCompleted:
			completed++
			started = true
		case model.StatusInProgress:
			started = true
		}
	}
	if completed == len(children) {
		return model.StatusCompleted
	}
	if started {
		return model.StatusInProgress
	}
	return model.StatusPlanned
}

// StatusPercent maps a leaf status to the progress value its parent records
// for it: completed is 100, everything else 0.
func StatusPercent(st model.Status) int {
	if st == model.StatusCompleted {
		return 100
	}
	return 0
}

// UpdateChildSummary returns a new document with the child's summary
// replaced or inserted and the progress recalculated. The input document is
// not modified and nothing is written to disk.
func UpdateChildSummary(doc *model.StateDocument, childID string, childStatus model.Status, childProgress int) *model.StateDocument {
	out := doc.Clone()
	if out.Children == nil {
		out.Children = make(map[string]model.ChildSummary, 1)
	}
	out.Children[childID] = model.ChildSummary{Status: childStatus, Progress: childProgress}
	out.Progress = CalculateProgress(out.Children)
	out.Updated = time.Now().UTC()
	return out
}

// RemoveChildSummary returns a new document with the child dropped and the
// progress recalculated. Removing an absent child is a no-op copy.
func RemoveChildSummary(doc *model.StateDocument, childID string) *model.StateDocument {
	out := doc.Clone()
	delete(out.Children, childID)
	out.Progress = CalculateProgress(out.Children)
	out.Updated = time.Now().UTC()
	return out
}

// CreateInitialState synthesizes the zeroed document a node starts with.
func (s *Store) CreateInitialState(id string, status model.Status) *model.StateDocument {
	if status == "" {
		status = model.StatusPlanned
	}
	return &model.StateDocument{
		ID:       id,
		Status:   status,
		Progress: model.ProgressMetrics{},
		Children: make(map[string]model.ChildSummary),
		Updated:  time.Now().UTC(),
	}
}

// RegenerateFromChildren rebuilds a node's document purely from its
// children's surviving state documents. Unreadable children are skipped and
// logged; the operation fails only when nothing at all can be decided about
// a readable child set.
func (s *Store) RegenerateFromChildren(id string, childStatePaths []string) (*model.StateDocument, error) {
	children := make(map[string]model.ChildSummary, len(childStatePaths))
	for _, p := range childStatePaths {
		child, err := s.Load(p)
		if err != nil {
			s.log.Warn("skipping unreadable child during regeneration",
				"parent", id, "path", p, "err", err)
			continue
		}
		children[child.ID] = model.ChildSummary{
			Status:   child.Status,
			Progress: child.Progress.Percentage,
		}
	}
	doc := &model.StateDocument{
		ID:       id,
		Status:   DeriveStatus(children),
		Progress: CalculateProgress(children),
		Children: children,
		Updated:  time.Now().UTC(),
	}
	if err := s.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
