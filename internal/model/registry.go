package model

import (
	"fmt"
	"strings"
	"time"
)

// RegistryVersion is written into newly created registry documents.
const RegistryVersion = "1.0.0"

// Date is a day-granularity timestamp serialized as "2006-01-02", matching
// the created/updated fields of the registry document.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func Today() Date { return Date{time.Now().UTC().Truncate(24 * time.Hour)} }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.Format(dateLayout))), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// Tolerate full timestamps written by older versions.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("%w: invalid date %q", ErrParse, s)
		}
	}
	d.Time = t
	return nil
}

func (d Date) String() string { return d.Format(dateLayout) }

// RegistryEntry records one work item's identity, type, and hierarchy edge.
type RegistryEntry struct {
	ID      string       `json:"id"`
	Type    WorkItemType `json:"type"`
	Path    string       `json:"path"`
	Title   string       `json:"title"`
	Status  Status       `json:"status"`
	Parent  string       `json:"parent,omitempty"`
	Created Date         `json:"created"`
	Updated Date         `json:"updated"`
	Deleted bool         `json:"deleted,omitempty"`
}

// Validate checks required fields and enum membership.
func (e *RegistryEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: entry id is required", ErrStructural)
	}
	if !IsValidType(e.Type) {
		return fmt.Errorf("%w: entry %s has invalid type %q", ErrValidation, e.ID, e.Type)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: entry %s has no title", ErrStructural, e.ID)
	}
	if !IsValidStatus(e.Status) {
		return fmt.Errorf("%w: entry %s has invalid status %q", ErrValidation, e.ID, e.Status)
	}
	if e.Path == "" && e.Type != TypeProject {
		return fmt.Errorf("%w: entry %s has no document path", ErrStructural, e.ID)
	}
	return nil
}

// Registry is the singleton document mapping every work item id to its
// identity plus the per-prefix ID counters.
type Registry struct {
	Version     string                    `json:"version"`
	LastUpdated time.Time                 `json:"last_updated"`
	WorkItems   map[string]*RegistryEntry `json:"work_items"`
	IDCounters  map[string]int            `json:"id_counters"`
}

// NewRegistry returns an empty registry with every counter present at zero.
func NewRegistry() *Registry {
	counters := make(map[string]int, len(AllPrefixes))
	for _, p := range AllPrefixes {
		counters[p] = 0
	}
	return &Registry{
		Version:     RegistryVersion,
		LastUpdated: time.Now().UTC(),
		WorkItems:   make(map[string]*RegistryEntry),
		IDCounters:  counters,
	}
}

// Validate enforces the registry invariants: required fields, a complete
// counter map, and every entry self-consistent with its key.
func (r *Registry) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("%w: registry version is required", ErrStructural)
	}
	if r.WorkItems == nil {
		return fmt.Errorf("%w: registry work_items map is missing", ErrStructural)
	}
	if r.IDCounters == nil {
		return fmt.Errorf("%w: registry id_counters map is missing", ErrStructural)
	}
	for _, p := range AllPrefixes {
		if _, ok := r.IDCounters[p]; !ok {
			return fmt.Errorf("%w: registry id_counters missing prefix %q", ErrStructural, p)
		}
		if r.IDCounters[p] < 0 {
			return fmt.Errorf("%w: registry counter %q is negative", ErrValidation, p)
		}
	}
	for key, entry := range r.WorkItems {
		if entry == nil {
			return fmt.Errorf("%w: registry entry %q is null", ErrStructural, key)
		}
		if entry.ID != key {
			return fmt.Errorf("%w: registry entry keyed %q has id %q", ErrStructural, key, entry.ID)
		}
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	return nil
}
