package model

import "time"

// ProgressMetrics aggregates the completion of a node's direct children.
// Blocked children count toward TotalItems but toward none of the three
// status buckets, so Completed+InProgress+Planned <= TotalItems.
type ProgressMetrics struct {
	TotalItems int `json:"total_items" validate:"min=0"`
	Completed  int `json:"completed" validate:"min=0"`
	InProgress int `json:"in_progress" validate:"min=0"`
	Planned    int `json:"planned" validate:"min=0"`
	Percentage int `json:"percentage" validate:"min=0,max=100"`
}

// ChildSummary is the snapshot of one child as seen by its parent.
type ChildSummary struct {
	Status   Status `json:"status" validate:"required,oneof=planned in-progress completed blocked"`
	Progress int    `json:"progress" validate:"min=0,max=100"`
}

// StateDocument is the persisted rollup for one non-Task node. Its Progress
// must always be derivable from Children; a document whose stored progress
// disagrees with the derived value is stale.
type StateDocument struct {
	ID       string                  `json:"id" validate:"required"`
	Status   Status                  `json:"status" validate:"required,oneof=planned in-progress completed blocked"`
	Progress ProgressMetrics         `json:"progress"`
	Children map[string]ChildSummary `json:"children" validate:"dive"`
	Updated  time.Time               `json:"updated" validate:"required"`
}

// Clone returns a deep copy so pure transformations never alias the input.
func (d *StateDocument) Clone() *StateDocument {
	out := *d
	out.Children = make(map[string]ChildSummary, len(d.Children))
	for id, c := range d.Children {
		out.Children[id] = c
	}
	return &out
}
