// Package engine orchestrates recursive upward propagation of work-item
// state changes, using the registry for topology and the state store for
// per-node I/O.
package engine

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/RamXX/rollup/internal/model"
	"github.com/RamXX/rollup/internal/registry"
	"github.com/RamXX/rollup/internal/state"
)

// Engine walks parent chains and keeps ancestor rollups consistent. It
// holds no propagation state of its own; the visited set is threaded
// through each call, so concurrent chains are safe.
type Engine struct {
	registry *registry.Service
	states   *state.Store
	log      *log.Logger
}

func New(reg *registry.Service, states *state.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		registry: reg,
		states:   states,
		log:      logger.With("component", "engine"),
	}
}

// CycleError reports a parent chain that revisits an id.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "cycle detected in parent chain: " + strings.Join(e.Chain, " -> ")
}

// PropagateStateChange climbs from the state document at startPath to the
// root, merging each node's status and progress into its parent. A failure
// on the starting node is fatal; a failure on an ancestor first gets a
// regeneration attempt from its surviving children.
func (e *Engine) PropagateStateChange(startPath string) error {
	return e.climb(startPath, make(map[string]bool), nil)
}

func (e *Engine) climb(path string, visited map[string]bool, chain []string) error {
	doc, err := e.states.Reconcile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	if visited[doc.ID] {
		return &CycleError{Chain: append(chain, doc.ID)}
	}
	visited[doc.ID] = true
	chain = append(chain, doc.ID)

	parentID, err := e.registry.GetParentID(doc.ID)
	if err != nil {
		return err
	}
	if parentID == "" {
		e.log.Debug("propagation reached root", "id", doc.ID)
		return nil
	}

	parentPath, err := e.registry.GetStatePath(parentID)
	if err != nil {
		return err
	}
	if parentPath == "" {
		// A state-less parent (a Task) is an invalid edge, not a walkable one.
		e.log.Warn("parent has no state document, stopping propagation",
			"id", doc.ID, "parent", parentID)
		return nil
	}

	parent, err := e.states.Reconcile(parentPath)
	if err != nil {
		e.log.Warn("regenerating unreadable ancestor state",
			"parent", parentID, "err", err)
		parent, err = e.Regenerate(parentID)
		if err != nil {
			return fmt.Errorf("regenerate %s: %w", parentID, err)
		}
	}

	merged := state.UpdateChildSummary(parent, doc.ID, doc.Status, doc.Progress.Percentage)
	if err := e.states.Save(parentPath, merged); err != nil {
		return err
	}
	e.log.Debug("merged child into parent",
		"child", doc.ID, "parent", parentID, "percentage", merged.Progress.Percentage)

	return e.climb(parentPath, visited, chain)
}

// BatchFailure records one parent whose propagation failed during a batch.
type BatchFailure struct {
	ParentID string
	Err      error
}

// PropagateBatch handles many near-simultaneous leaf changes: input paths
// are grouped by their immediate parent so each distinct parent is climbed
// from only once, with all of its changed children merged first. A failure
// for one parent is logged and does not abort the others.
func (e *Engine) PropagateBatch(paths []string) []BatchFailure {
	seen := make(map[string]bool, len(paths))
	groups := make(map[string][]string)
	var order []string

	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true

		doc, err := e.states.Load(p)
		if err != nil {
			e.log.Error("skipping unreadable changed document", "path", p, "err", err)
			continue
		}
		parentID, err := e.registry.GetParentID(doc.ID)
		if err != nil {
			e.log.Error("skipping document with unknown item", "id", doc.ID, "err", err)
			continue
		}
		if parentID == "" {
			continue // root changed, nothing above it
		}
		if _, ok := groups[parentID]; !ok {
			order = append(order, parentID)
		}
		groups[parentID] = append(groups[parentID], p)
	}

	var failures []BatchFailure
	for _, parentID := range order {
		if err := e.propagateFromChildren(parentID, groups[parentID]); err != nil {
			e.log.Error("batch propagation failed for parent", "parent", parentID, "err", err)
			failures = append(failures, BatchFailure{ParentID: parentID, Err: err})
		}
	}
	return failures
}

// propagateFromChildren merges every changed child into parentID's document
// and then climbs once from the parent.
func (e *Engine) propagateFromChildren(parentID string, childPaths []string) error {
	parentPath, err := e.registry.GetStatePath(parentID)
	if err != nil {
		return err
	}
	if parentPath == "" {
		e.log.Warn("parent has no state document, skipping batch group", "parent", parentID)
		return nil
	}

	parent, err := e.states.Reconcile(parentPath)
	if err != nil {
		parent, err = e.Regenerate(parentID)
		if err != nil {
			return fmt.Errorf("regenerate %s: %w", parentID, err)
		}
	}

	for _, p := range childPaths {
		child, err := e.states.Load(p)
		if err != nil {
			e.log.Warn("skipping unreadable child in batch", "path", p, "err", err)
			continue
		}
		parent = state.UpdateChildSummary(parent, child.ID, child.Status, child.Progress.Percentage)
	}
	if err := e.states.Save(parentPath, parent); err != nil {
		return err
	}

	return e.PropagateStateChange(parentPath)
}

// Regenerate rebuilds an item's state document: non-Task children come from
// their surviving state documents, and Task children, which never have
// documents of their own, are folded back in from their registry status so
// a rebuilt parent does not lose them.
func (e *Engine) Regenerate(id string) (*model.StateDocument, error) {
	children, err := e.registry.GetChildren(id)
	if err != nil {
		return nil, err
	}

	var paths []string
	var tasks []*model.RegistryEntry
	for _, child := range children {
		if child.Type.IsLeaf() {
			tasks = append(tasks, child)
			continue
		}
		p, err := e.registry.GetStatePath(child.ID)
		if err != nil || p == "" {
			continue
		}
		paths = append(paths, p)
	}

	doc, err := e.states.RegenerateFromChildren(id, paths)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		doc = state.UpdateChildSummary(doc, task.ID, task.Status, state.StatusPercent(task.Status))
	}
	if len(tasks) > 0 {
		doc.Status = state.DeriveStatus(doc.Children)
	}
	return doc, nil
}
