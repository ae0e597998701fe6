package model

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a work item.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

var validStatuses = map[Status]bool{
	StatusPlanned:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusBlocked:    true,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !validStatuses[st] {
		return "", fmt.Errorf("%w: invalid status %q: must be one of planned, in-progress, completed, blocked", ErrValidation, s)
	}
	return st, nil
}

// IsValidStatus reports whether s is a member of the closed status set.
func IsValidStatus(s Status) bool { return validStatuses[s] }

func (s Status) String() string { return string(s) }

// WorkItemType classifies a node in the planning hierarchy.
type WorkItemType string

const (
	TypeProject WorkItemType = "Project"
	TypeEpic    WorkItemType = "Epic"
	TypeFeature WorkItemType = "Feature"
	TypeStory   WorkItemType = "Story"
	TypeBug     WorkItemType = "Bug"
	TypePhase   WorkItemType = "Phase"
	TypeTask    WorkItemType = "Task"
)

// typePrefixes maps each type to its ID prefix. Keep in sync with AllPrefixes.
var typePrefixes = map[WorkItemType]string{
	TypeProject: "P",
	TypeEpic:    "E",
	TypeFeature: "F",
	TypeStory:   "S",
	TypeBug:     "B",
	TypePhase:   "PH",
	TypeTask:    "T",
}

// AllTypes lists the defined work-item types in hierarchy order.
var AllTypes = []WorkItemType{TypeProject, TypeEpic, TypeFeature, TypeStory, TypeBug, TypePhase, TypeTask}

// AllPrefixes lists every ID prefix that must appear in the registry counters.
var AllPrefixes = []string{"P", "E", "F", "S", "B", "PH", "T"}

func ParseWorkItemType(s string) (WorkItemType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTypes {
		if strings.ToLower(string(t)) == normalized {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: invalid work item type %q: must be one of project, epic, feature, story, bug, phase, task", ErrValidation, s)
}

func (t WorkItemType) String() string { return string(t) }

// Prefix returns the ID prefix for the type (e.g. "PH" for Phase).
func (t WorkItemType) Prefix() string { return typePrefixes[t] }

// IsLeaf reports whether items of this type carry no state document.
func (t WorkItemType) IsLeaf() bool { return t == TypeTask }

// IsValidType reports whether t is a member of the closed type set.
func IsValidType(t WorkItemType) bool {
	_, ok := typePrefixes[t]
	return ok
}
