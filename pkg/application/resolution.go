package application

import (
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// Resolution holds the snapshot records a command acts on.
type Resolution struct {
	// Target is the record an update modifies.
	Target *command.ResolvedReference `json:"target,omitempty"`
	// Project is the parent of a new task or the scope of a task query.
	Project *command.ResolvedReference `json:"project,omitempty"`
}

// ResolveEntities maps the references in slots to snapshot records.
//
// A new task always needs a project: an explicit id must exist, otherwise
// the reference (or its absence) falls back to the first project. Updates
// need a reference that matches; queries only scope when asked to.
func ResolveEntities(intent command.Intent, slots command.SlotSet, snapshot planning.Snapshot) (Resolution, error) {
	var res Resolution

	switch intent {
	case command.IntentCreateTask:
		ref, err := resolveProject(slots, snapshot, true)
		if err != nil {
			return res, err
		}
		res.Project = ref

	case command.IntentSearchTask, command.IntentCountTasks:
		if !slots.Has(command.SlotProjectID) && !slots.Has(command.SlotProjectReference) {
			return res, nil
		}
		ref, err := resolveProject(slots, snapshot, false)
		if err != nil {
			return res, err
		}
		res.Project = ref

	case command.IntentUpdateTask:
		reference := slots.Value(command.SlotReferenceText)
		if reference == "" {
			return res, &command.Failure{Kind: command.ErrorExtractionIncomplete, Entity: planning.KindTask, Slot: command.SlotReferenceText}
		}
		ref, ok := command.ResolveTask(reference, snapshot.Tasks)
		if !ok {
			return res, &command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindTask, Reference: reference}
		}
		res.Target = &ref

	case command.IntentUpdateProject:
		reference := slots.Value(command.SlotReferenceText)
		if reference == "" {
			return res, &command.Failure{Kind: command.ErrorExtractionIncomplete, Entity: planning.KindProject, Slot: command.SlotReferenceText}
		}
		ref, ok := command.ResolveProject(reference, snapshot.Projects)
		if !ok {
			return res, &command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindProject, Reference: reference}
		}
		res.Target = &ref
	}

	return res, nil
}

func resolveProject(slots command.SlotSet, snapshot planning.Snapshot, fallback bool) (*command.ResolvedReference, error) {
	if id := slots.Value(command.SlotProjectID); id != "" {
		ref, ok := command.ProjectByID(id, snapshot.Projects)
		if !ok {
			return nil, &command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindProject, Reference: id}
		}
		return &ref, nil
	}

	reference := slots.Value(command.SlotProjectReference)
	var opts []command.ResolveOption
	if fallback {
		opts = append(opts, command.FallbackOnUnmatched())
	}
	ref, ok := command.ResolveProject(reference, snapshot.Projects, opts...)
	if !ok {
		return nil, &command.Failure{Kind: command.ErrorEntityNotFound, Entity: planning.KindProject, Reference: reference}
	}
	return &ref, nil
}
