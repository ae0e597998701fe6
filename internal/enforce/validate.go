package enforce

import (
	"fmt"

	"github.com/RamXX/rollup/internal/idgen"
	"github.com/RamXX/rollup/internal/model"
)

// allowedParents encodes the hierarchy chain:
// Project -> Epic -> Feature -> Story/Bug -> Phase -> Task.
var allowedParents = map[model.WorkItemType][]model.WorkItemType{
	model.TypeEpic:    {model.TypeProject},
	model.TypeFeature: {model.TypeEpic},
	model.TypeStory:   {model.TypeFeature},
	model.TypeBug:     {model.TypeFeature},
	model.TypePhase:   {model.TypeStory, model.TypeBug},
	model.TypeTask:    {model.TypePhase},
}

// ValidateParentType checks that a child of the given type may attach under
// a parent of the given type. Projects take no parent.
func ValidateParentType(child, parent model.WorkItemType) error {
	if child == model.TypeProject {
		return fmt.Errorf("%w: a project cannot have a parent", model.ErrValidation)
	}
	for _, allowed := range allowedParents[child] {
		if parent == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: a %s cannot be created under a %s", model.ErrValidation, child, parent)
}

// ValidateEntry runs structural validation on a registry entry and checks
// that its id prefix agrees with its type.
func ValidateEntry(entry *model.RegistryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	typ, err := idgen.TypeOf(entry.ID)
	if err != nil {
		return err
	}
	if typ != entry.Type {
		return fmt.Errorf("%w: id %s has prefix of type %s but entry type is %s",
			model.ErrValidation, entry.ID, typ, entry.Type)
	}
	return nil
}
