package engine

import (
	"errors"
	"fmt"

	"github.com/RamXX/rollup/internal/model"
)

// Severity tags a hierarchy issue for the diagnostics consumer: errors are
// hard failures, warnings are soft ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structured finding from ValidateHierarchy.
type Issue struct {
	ItemID   string   `json:"itemId"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

const msgMissingState = "missing state document"

// ValidateHierarchy walks every non-deleted, non-Task registry entry and
// cross-checks its state document against the registry. Data-level
// disagreements are reported, never thrown; only registry I/O failures the
// walk cannot interpret abort it.
func (e *Engine) ValidateHierarchy() ([]Issue, error) {
	items, err := e.registry.Items()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.RegistryEntry, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var issues []Issue
	for _, item := range items {
		if item.Type.IsLeaf() {
			continue
		}
		statePath, err := e.registry.GetStatePath(item.ID)
		if err != nil {
			return nil, err
		}

		doc, err := e.states.Load(statePath)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrNotFound):
				issues = append(issues, Issue{item.ID, SeverityError, msgMissingState})
			default:
				issues = append(issues, Issue{item.ID, SeverityError,
					fmt.Sprintf("unreadable state document: %v", err)})
			}
			continue
		}

		if doc.ID != item.ID {
			issues = append(issues, Issue{item.ID, SeverityError,
				fmt.Sprintf("state document id is %q", doc.ID)})
		}

		for childID := range doc.Children {
			child, ok := byID[childID]
			if !ok {
				issues = append(issues, Issue{item.ID, SeverityError,
					fmt.Sprintf("child %s appears in state document but not in registry", childID)})
				continue
			}
			if child.Parent != item.ID {
				issues = append(issues, Issue{item.ID, SeverityWarning,
					fmt.Sprintf("child %s has registry parent %s", childID, child.Parent)})
			}
		}

		children, err := e.registry.GetChildren(item.ID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, ok := doc.Children[child.ID]; !ok {
				issues = append(issues, Issue{item.ID, SeverityWarning,
					fmt.Sprintf("registry child %s missing from state document", child.ID)})
			}
		}
	}
	return issues, nil
}

// RepairResult reports the outcome of one repair attempt.
type RepairResult struct {
	ItemID  string `json:"itemId"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Err     error  `json:"error,omitempty"`
}

// RepairHierarchy regenerates every state document ValidateHierarchy found
// missing. Best-effort: other inconsistencies are left for the operator,
// and one failed regeneration does not stop the rest.
func (e *Engine) RepairHierarchy() ([]RepairResult, error) {
	issues, err := e.ValidateHierarchy()
	if err != nil {
		return nil, err
	}

	var results []RepairResult
	for _, issue := range issues {
		if issue.Message != msgMissingState {
			continue
		}
		res := RepairResult{ItemID: issue.ItemID, Action: "regenerated"}
		if err := e.repairOne(issue.ItemID); err != nil {
			res.Err = err
			e.log.Error("repair failed", "id", issue.ItemID, "err", err)
		} else {
			res.Success = true
			e.log.Info("regenerated missing state document", "id", issue.ItemID)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) repairOne(id string) error {
	statePath, err := e.registry.GetStatePath(id)
	if err != nil {
		return err
	}
	if statePath == "" {
		return fmt.Errorf("%s has no state document location", id)
	}
	doc, err := e.Regenerate(id)
	if err != nil {
		return err
	}
	return e.states.Save(statePath, doc)
}
