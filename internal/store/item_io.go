package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/RamXX/vlt"

	"github.com/RamXX/rollup/internal/enforce"
	"github.com/RamXX/rollup/internal/model"
	"github.com/RamXX/rollup/internal/registry"
	"github.com/RamXX/rollup/internal/state"
)

func (s *Store) createProject(title string) (*model.RegistryEntry, error) {
	id, err := s.reg.NextID(model.TypeProject)
	if err != nil {
		return nil, err
	}
	entry := &model.RegistryEntry{
		ID:      id,
		Type:    model.TypeProject,
		Path:    id + ".md",
		Title:   title,
		Status:  model.StatusPlanned,
		Created: model.Today(),
		Updated: model.Today(),
	}
	content := serializeItem(entry, "")
	if err := s.vault.Create(id, entry.Path, content, true, false); err != nil {
		return nil, fmt.Errorf("create project document: %w", err)
	}
	if err := s.reg.AddWorkItem(entry); err != nil {
		return nil, err
	}
	statePath, err := s.reg.GetStatePath(id)
	if err != nil {
		return nil, err
	}
	if err := s.states.Save(statePath, s.states.CreateInitialState(id, model.StatusPlanned)); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateWorkItem mints an ID, writes the item's directory, markdown
// document, and (for non-Task types) initial state document, registers it,
// inserts it into its parent's rollup, and propagates upward.
func (s *Store) CreateWorkItem(typ model.WorkItemType, title, description, parentID string) (*model.RegistryEntry, error) {
	if typ == model.TypeProject {
		return nil, fmt.Errorf("%w: the project is created at init", model.ErrValidation)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrStructural)
	}

	parent, err := s.reg.GetWorkItem(parentID)
	if err != nil {
		return nil, fmt.Errorf("parent %s: %w", parentID, err)
	}
	if parent.Deleted {
		return nil, fmt.Errorf("parent %s is deleted", parentID)
	}
	if err := enforce.ValidateParentType(typ, parent.Type); err != nil {
		return nil, err
	}

	id, err := s.reg.NextID(typ)
	if err != nil {
		return nil, err
	}

	dirName := id + "-" + Slug(title)
	if err := os.MkdirAll(filepath.Join(s.dir, dirName), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dirName, err)
	}

	entry := &model.RegistryEntry{
		ID:      id,
		Type:    typ,
		Path:    dirName + "/" + id + ".md",
		Title:   title,
		Status:  model.StatusPlanned,
		Parent:  parentID,
		Created: model.Today(),
		Updated: model.Today(),
	}
	if err := enforce.ValidateEntry(entry); err != nil {
		return nil, err
	}

	content := serializeItem(entry, description)
	if err := s.vault.Create(id, entry.Path, content, true, false); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if err := s.reg.AddWorkItem(entry); err != nil {
		return nil, err
	}

	if !typ.IsLeaf() {
		statePath, err := s.reg.GetStatePath(id)
		if err != nil {
			return nil, err
		}
		if err := s.states.Save(statePath, s.states.CreateInitialState(id, model.StatusPlanned)); err != nil {
			return nil, err
		}
	}

	if err := s.mergeIntoParent(parentID, id, model.StatusPlanned, 0); err != nil {
		return nil, err
	}
	return entry, nil
}

// SetStatus changes an item's status, mirrors it into the registry and the
// document frontmatter, and propagates the change upward. A Task's status
// lives only in its parent's children map; every other type carries it in
// its own state document.
func (s *Store) SetStatus(id string, status model.Status) error {
	entry, err := s.reg.GetWorkItem(id)
	if err != nil {
		return err
	}
	if entry.Deleted {
		return fmt.Errorf("work item %s is deleted", id)
	}

	if err := s.reg.UpdateWorkItem(id, registry.Update{Status: &status}); err != nil {
		return err
	}
	if err := s.vault.PropertySet(id, "status", string(status)); err != nil {
		return fmt.Errorf("set status on %s: %w", id, err)
	}
	_ = s.vault.PropertySet(id, "updated", model.Today().String())

	if entry.Type.IsLeaf() {
		return s.mergeIntoParent(entry.Parent, id, status, state.StatusPercent(status))
	}

	statePath, err := s.reg.GetStatePath(id)
	if err != nil {
		return err
	}
	doc, err := s.states.Reconcile(statePath)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		doc, err = s.eng.Regenerate(id)
		if err != nil {
			return err
		}
	}
	doc.Status = status
	doc.Updated = time.Now().UTC()
	if err := s.states.Save(statePath, doc); err != nil {
		return err
	}
	return s.eng.PropagateStateChange(statePath)
}

// SetTitle renames an item in the registry and its frontmatter. The item
// directory keeps its original slug; ids, not slugs, are authoritative.
func (s *Store) SetTitle(id, title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", model.ErrStructural)
	}
	if err := s.reg.UpdateWorkItem(id, registry.Update{Title: &title}); err != nil {
		return err
	}
	if err := s.vault.PropertySet(id, "title", fmt.Sprintf("%q", title)); err != nil {
		return fmt.Errorf("set title on %s: %w", id, err)
	}
	return nil
}

// Delete soft-deletes an item, removes it from its parent's rollup, and
// propagates. The entry, its documents, and its id stay on disk.
func (s *Store) Delete(id string) error {
	entry, err := s.reg.GetWorkItem(id)
	if err != nil {
		return err
	}
	if err := s.reg.DeleteWorkItem(id); err != nil {
		return err
	}
	if entry.Parent == "" {
		return nil
	}

	parentStatePath, err := s.reg.GetStatePath(entry.Parent)
	if err != nil || parentStatePath == "" {
		return err
	}
	parentDoc, err := s.states.Reconcile(parentStatePath)
	if err != nil {
		s.log.Warn("parent state unreadable during delete", "parent", entry.Parent, "err", err)
		return nil
	}
	parentDoc = state.RemoveChildSummary(parentDoc, id)
	if err := s.states.Save(parentStatePath, parentDoc); err != nil {
		return err
	}
	return s.eng.PropagateStateChange(parentStatePath)
}

// mergeIntoParent folds one child summary into parentID's state document
// and climbs from there.
func (s *Store) mergeIntoParent(parentID, childID string, status model.Status, progress int) error {
	parentStatePath, err := s.reg.GetStatePath(parentID)
	if err != nil {
		return err
	}
	if parentStatePath == "" {
		s.log.Warn("parent has no state document", "parent", parentID, "child", childID)
		return nil
	}
	parentDoc, err := s.states.Reconcile(parentStatePath)
	if err != nil {
		parentDoc, err = s.eng.Regenerate(parentID)
		if err != nil {
			return fmt.Errorf("regenerate %s: %w", parentID, err)
		}
	}
	parentDoc = state.UpdateChildSummary(parentDoc, childID, status, progress)
	if err := s.states.Save(parentStatePath, parentDoc); err != nil {
		return err
	}
	return s.eng.PropagateStateChange(parentStatePath)
}

// ItemBody returns the markdown body of an item's content document.
func (s *Store) ItemBody(id string) (string, error) {
	content, err := s.vault.Read(id, "")
	if err != nil {
		return "", fmt.Errorf("read %s: %w", id, err)
	}
	_, bodyStart, found := vlt.ExtractFrontmatter(content)
	if !found {
		return content, nil
	}
	lines := strings.SplitAfter(content, "\n")
	if bodyStart < len(lines) {
		return strings.Join(lines[bodyStart:], ""), nil
	}
	return "", nil
}

// serializeItem converts an entry plus description to frontmatter + body
// markdown. Field order is fixed by manual construction.
func serializeItem(entry *model.RegistryEntry, description string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("id: %s\n", entry.ID))
	sb.WriteString(fmt.Sprintf("type: %s\n", entry.Type))
	sb.WriteString(fmt.Sprintf("title: %q\n", entry.Title))
	sb.WriteString(fmt.Sprintf("status: %s\n", entry.Status))
	if entry.Parent != "" {
		sb.WriteString(fmt.Sprintf("parent: %s\n", entry.Parent))
	}
	sb.WriteString(fmt.Sprintf("created: %s\n", entry.Created))
	sb.WriteString(fmt.Sprintf("updated: %s\n", entry.Updated))
	body := buildBody(description)
	sb.WriteString(fmt.Sprintf("content_hash: %q\n", enforce.ComputeContentHash(body)))
	sb.WriteString("---\n")
	sb.WriteString(body)
	return sb.String()
}

func buildBody(description string) string {
	var sb strings.Builder
	sb.WriteString("\n## Overview\n")
	if description != "" {
		sb.WriteString(description)
		sb.WriteString("\n")
	}
	sb.WriteString("\n## Acceptance Criteria\n\n")
	sb.WriteString("\n## Notes\n")
	return sb.String()
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug reduces a title to a short lowercase directory-name fragment.
func Slug(title string) string {
	s := slugCleanRe.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = strings.Trim(s[:40], "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}
