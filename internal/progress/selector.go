package progress

import (
	"context"
	"fmt"
	"time"
)

// Outcome classifies an event selection.
type Outcome int

const (
	// OutcomeEvents carries a non-empty, ordered event list.
	OutcomeEvents Outcome = iota
	// OutcomeEmpty means events are monitored but none is visible to the viewer.
	OutcomeEmpty
	// OutcomeNone means instances are configured but none is monitored.
	OutcomeNone
	// OutcomeUnconfigured means no instance has a monitor setting yet.
	OutcomeUnconfigured
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeNone:
		return "none"
	case OutcomeUnconfigured:
		return "unconfigured"
	default:
		return "events"
	}
}

// Selection is the result of selecting events for a block.
type Selection struct {
	Outcome      Outcome
	Course       Course
	Events       []Event
	Monitored    int
	Unconfigured int
}

// Selector resolves which events a block monitors and who can see them.
type Selector struct {
	catalog *Catalog
	access  AccessChecker
}

// NewSelector builds a selector.
func NewSelector(catalog *Catalog, access AccessChecker) *Selector {
	return &Selector{catalog: catalog, access: access}
}

// Candidates builds every monitored event of the block regardless of viewer.
// The outcome is OutcomeUnconfigured, OutcomeNone or OutcomeEvents.
func (s *Selector) Candidates(ctx context.Context, cfg BlockConfig, courseID uint, now time.Time) (Selection, error) {
	course, err := s.catalog.store.Course(ctx, courseID)
	if err != nil {
		return Selection{}, err
	}

	types, err := s.catalog.ModulesInUse(ctx, courseID)
	if err != nil {
		return Selection{}, err
	}

	outline, err := s.catalog.LoadOutline(ctx, courseID)
	if err != nil {
		return Selection{}, err
	}

	selection := Selection{Course: course}
	configured := 0
	for _, typeName := range types {
		descriptor, _ := s.catalog.registry.Get(typeName)
		instances, err := s.catalog.Instances(ctx, typeName, courseID, outline)
		if err != nil {
			return Selection{}, err
		}

		for _, instance := range instances {
			settings, ok := cfg.Settings(typeName, instance.ID)
			if !ok || settings.Monitor == nil {
				selection.Unconfigured++
				continue
			}
			configured++
			if !settings.Monitored() {
				continue
			}
			selection.Monitored++
			selection.Events = append(selection.Events, Event{
				Type:           typeName,
				InstanceID:     instance.ID,
				Name:           instance.Name,
				CourseModuleID: instance.Module.ID,
				Expected:       ResolveExpected(descriptor, instance, settings, course, now),
				Section:        instance.Section,
				Position:       instance.Position,
				Action:         descriptor.ResolveAction(settings.Action),
				Module:         instance.Module,
			})
		}
	}

	switch {
	case configured == 0:
		selection.Outcome = OutcomeUnconfigured
		selection.Events = nil
	case selection.Monitored == 0:
		selection.Outcome = OutcomeNone
	default:
		selection.Outcome = OutcomeEvents
		OrderEvents(selection.Events, cfg.OrderBy)
	}
	return selection, nil
}

// ForViewer narrows a candidate selection to the events a user can see. An
// OutcomeEvents selection with nothing visible becomes OutcomeEmpty; other
// outcomes pass through unchanged.
func (s *Selector) ForViewer(ctx context.Context, candidates Selection, userID uint, now time.Time) (Selection, error) {
	if candidates.Outcome != OutcomeEvents {
		return candidates, nil
	}

	visible := make([]Event, 0, len(candidates.Events))
	for _, event := range candidates.Events {
		ok, err := s.access.CanSee(ctx, userID, event.Module, now)
		if err != nil {
			return Selection{}, fmt.Errorf("check visibility of %s: %w", event.Key(), err)
		}
		if ok {
			visible = append(visible, event)
		}
	}

	result := candidates
	result.Events = visible
	if len(visible) == 0 {
		result.Outcome = OutcomeEmpty
	}
	return result, nil
}

// Select returns the ordered events of a block as seen by userID.
func (s *Selector) Select(ctx context.Context, cfg BlockConfig, courseID, userID uint, now time.Time) (Selection, error) {
	candidates, err := s.Candidates(ctx, cfg, courseID, now)
	if err != nil {
		return Selection{}, err
	}
	return s.ForViewer(ctx, candidates, userID, now)
}
