package progress

import (
	"fmt"
	"time"
)

// Course is the subset of course data the engine needs.
type Course struct {
	ID        uint
	FullName  string
	ShortName string
	Format    string
	StartDate time.Time
}

// WeeklyFormat reports whether sections correspond to calendar weeks.
func (c Course) WeeklyFormat() bool {
	switch c.Format {
	case "weeks", "weekscss", "weekcoll":
		return true
	default:
		return false
	}
}

// Section is one entry of the course outline.
type Section struct {
	ID       uint
	Number   int
	Sequence []uint
}

// CourseModule places an activity instance inside a course.
type CourseModule struct {
	ID                 uint
	CourseID           uint
	ModuleName         string
	Instance           uint
	SectionID          uint
	Visible            bool
	AvailableFrom      time.Time
	AvailableUntil     time.Time
	GroupingID         uint
	GroupMembersOnly   bool
	CompletionEnabled  bool
	CompletionExpected time.Time
}

// AvailableAt applies the module's availability window.
func (m CourseModule) AvailableAt(now time.Time) bool {
	if !m.AvailableFrom.IsZero() && now.Before(m.AvailableFrom) {
		return false
	}
	if !m.AvailableUntil.IsZero() && now.After(m.AvailableUntil) {
		return false
	}
	return true
}

// InstanceRow is a raw activity row from the type's own table.
type InstanceRow struct {
	ID   uint
	Name string
	Due  time.Time
}

// ActivityInstance is one activity of a type, positioned in the course.
type ActivityInstance struct {
	Type     string
	ID       uint
	Name     string
	Due      time.Time
	Module   CourseModule
	Section  int
	Position int
}

// Key identifies the instance inside the configuration namespace.
func (i ActivityInstance) Key() string {
	return InstanceKey(i.Type, i.ID)
}

// Event is the per-course unit the engine evaluates and orders.
type Event struct {
	Type           string
	InstanceID     uint
	Name           string
	CourseModuleID uint
	Expected       time.Time
	Section        int
	Position       int
	Action         string
	Module         CourseModule
}

// Key identifies the event inside status maps and the view cache.
func (e Event) Key() string {
	return InstanceKey(e.Type, e.InstanceID)
}

// Status is the per-user completion state of an event.
type Status int

const (
	StatusNotAttempted Status = iota
	StatusSubmitted
	StatusPassed
	StatusFailed
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusCompleted:
		return "completed"
	default:
		return "not_attempted"
	}
}

// Complete reports whether the status counts towards progress.
func (s Status) Complete() bool {
	return s == StatusCompleted || s == StatusPassed
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name; unknown names are rejected.
func (s *Status) UnmarshalText(text []byte) error {
	for candidate := StatusNotAttempted; candidate <= StatusCompleted; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Grade is a final grade with its pass threshold.
type Grade struct {
	Final     *float64
	GradePass float64
}

// Summary is the read-only projection served to external callers.
type Summary struct {
	NumEvents     int
	NumAttempts   int
	ProgressValue int
}
