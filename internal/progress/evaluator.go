package progress

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Recorder observes evaluations; implemented by the metrics layer.
type Recorder interface {
	Evaluation(kind ActionKind, status Status)
	ViewCache(hit bool)
}

// Evaluator computes completion statuses for one user at a time.
type Evaluator struct {
	registry Registry
	data     DataSource
	readers  []LogReader
	cache    ViewCache
	recorder Recorder
	logger   zerolog.Logger
}

// NewEvaluator builds an evaluator. readers may be empty and cache or
// recorder may be nil.
func NewEvaluator(registry Registry, data DataSource, readers []LogReader, cache ViewCache, recorder Recorder, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		registry: registry,
		data:     data,
		readers:  readers,
		cache:    cache,
		recorder: recorder,
		logger:   logger.With().Str("component", "progress_evaluator").Logger(),
	}
}

// Pass evaluates events for a single user. The view cache is read when the
// pass opens and written back once by Flush.
type Pass struct {
	evaluator *Evaluator
	courseID  uint
	userID    uint
	views     map[string]bool
	dirty     bool
}

// ForUser opens an evaluation pass. A failing cache read degrades to an
// empty cache.
func (e *Evaluator) ForUser(ctx context.Context, courseID, userID uint) *Pass {
	views := map[string]bool{}
	if e.cache != nil {
		cached, err := e.cache.Get(ctx, userID)
		if err != nil {
			e.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to read view cache")
		} else if cached != nil {
			views = cached
		}
	}
	return &Pass{evaluator: e, courseID: courseID, userID: userID, views: views}
}

// EvaluateAll evaluates every event for a user in one pass, keyed by
// Event.Key.
func (e *Evaluator) EvaluateAll(ctx context.Context, courseID, userID uint, events []Event) (map[string]Status, error) {
	pass := e.ForUser(ctx, courseID, userID)
	statuses := make(map[string]Status, len(events))
	for _, event := range events {
		status, err := pass.Evaluate(ctx, event)
		if err != nil {
			return nil, err
		}
		statuses[event.Key()] = status
	}
	if err := pass.Flush(ctx); err != nil {
		e.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to store view cache")
	}
	return statuses, nil
}

// Evaluate computes the status of one event.
func (p *Pass) Evaluate(ctx context.Context, event Event) (Status, error) {
	descriptor, ok := p.evaluator.registry.Get(event.Type)
	if !ok {
		return StatusNotAttempted, &ConfigurationError{Reason: fmt.Sprintf("unknown activity type %q", event.Type)}
	}

	actionName := descriptor.ResolveAction(event.Action)
	action, _ := descriptor.Action(actionName)
	params := Params{
		CourseID:       p.courseID,
		UserID:         p.userID,
		EventID:        event.InstanceID,
		CourseModuleID: event.CourseModuleID,
	}

	status, err := p.evaluateAction(ctx, event, action, params)
	if err != nil {
		return StatusNotAttempted, fmt.Errorf("evaluate %s %s: %w", event.Key(), actionName, err)
	}

	if descriptor.ShowSubmittedFirst && actionName != ActionSubmitted && !status.Complete() && status != StatusFailed {
		if submitted, ok := descriptor.Actions[ActionSubmitted]; ok {
			bound, err := submitted.Query.Bind(params)
			if err != nil {
				return StatusNotAttempted, err
			}
			hit, err := p.evaluator.data.Exists(ctx, bound)
			if err != nil {
				return StatusNotAttempted, fmt.Errorf("evaluate %s submitted: %w", event.Key(), err)
			}
			if hit {
				status = StatusSubmitted
			}
		}
	}

	if p.evaluator.recorder != nil {
		p.evaluator.recorder.Evaluation(action.Kind, status)
	}
	return status, nil
}

func (p *Pass) evaluateAction(ctx context.Context, event Event, action Action, params Params) (Status, error) {
	switch action.Kind {
	case KindViewed:
		return p.evaluateViewed(ctx, event, action, params)
	case KindGrade:
		bound, err := action.Query.Bind(params)
		if err != nil {
			return StatusNotAttempted, err
		}
		grade, found, err := p.evaluator.data.Grade(ctx, bound)
		if err != nil {
			return StatusNotAttempted, err
		}
		if !found || grade.Final == nil {
			return StatusNotAttempted, nil
		}
		if *grade.Final >= grade.GradePass {
			return StatusPassed, nil
		}
		return StatusFailed, nil
	default:
		bound, err := action.Query.Bind(params)
		if err != nil {
			return StatusNotAttempted, err
		}
		hit, err := p.evaluator.data.Exists(ctx, bound)
		if err != nil {
			return StatusNotAttempted, err
		}
		if hit {
			return StatusCompleted, nil
		}
		return StatusNotAttempted, nil
	}
}

func (p *Pass) evaluateViewed(ctx context.Context, event Event, action Action, params Params) (Status, error) {
	key := event.Key()
	if p.views[key] {
		p.recordCache(true)
		return StatusCompleted, nil
	}
	p.recordCache(false)

	for _, reader := range p.evaluator.readers {
		query, ok := action.ByBackend[reader.Backend()]
		if !ok {
			continue
		}
		bound, err := query.Bind(params)
		if err != nil {
			return StatusNotAttempted, err
		}
		hit, err := reader.Exists(ctx, bound)
		if err != nil {
			return StatusNotAttempted, fmt.Errorf("%s log: %w", reader.Backend(), err)
		}
		if hit {
			p.views[key] = true
			p.dirty = true
			return StatusCompleted, nil
		}
	}
	return StatusNotAttempted, nil
}

func (p *Pass) recordCache(hit bool) {
	if p.evaluator.recorder != nil {
		p.evaluator.recorder.ViewCache(hit)
	}
}

// Flush writes newly confirmed views back to the cache.
func (p *Pass) Flush(ctx context.Context) error {
	if !p.dirty || p.evaluator.cache == nil {
		return nil
	}
	confirmed := make(map[string]bool, len(p.views))
	for key, seen := range p.views {
		if seen {
			confirmed[key] = true
		}
	}
	if err := p.evaluator.cache.Set(ctx, p.userID, confirmed); err != nil {
		return err
	}
	p.dirty = false
	return nil
}
