package progress

import (
	"context"
	"time"
)

// CourseStore reads the host's course outline and activity tables.
type CourseStore interface {
	Course(ctx context.Context, courseID uint) (Course, error)
	HasInstances(ctx context.Context, moduleName string, courseID uint) (bool, error)
	HasField(ctx context.Context, moduleName, field string) bool
	ListInstances(ctx context.Context, moduleName, dueField string, courseID uint) ([]InstanceRow, error)
	CourseModules(ctx context.Context, courseID uint) ([]CourseModule, error)
	Sections(ctx context.Context, courseID uint) ([]Section, error)
}

// DataSource runs completion predicates.
type DataSource interface {
	Exists(ctx context.Context, query BoundQuery) (bool, error)
	Grade(ctx context.Context, query BoundQuery) (Grade, bool, error)
}

// LogReader is one view-event backend.
type LogReader interface {
	Backend() LogBackend
	Exists(ctx context.Context, query BoundQuery) (bool, error)
}

// ViewCache stores positive view confirmations per user.
type ViewCache interface {
	Get(ctx context.Context, userID uint) (map[string]bool, error)
	Set(ctx context.Context, userID uint, views map[string]bool) error
}

// AccessChecker answers visibility and capability questions for a viewer.
type AccessChecker interface {
	CanSee(ctx context.Context, userID uint, module CourseModule, now time.Time) (bool, error)
	HasCapability(ctx context.Context, userID, courseID uint, capability string) (bool, error)
}
