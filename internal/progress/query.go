package progress

import (
	"regexp"
	"strings"
)

// Placeholder names a value bound into a completion query.
type Placeholder string

// Placeholders understood by every query. They are written as @name in the
// query text and may be repeated.
const (
	PlaceholderCourseID       Placeholder = "courseid"
	PlaceholderUserID         Placeholder = "userid"
	PlaceholderEventID        Placeholder = "eventid"
	PlaceholderCourseModuleID Placeholder = "cmid"
)

var placeholderPattern = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)`)

// Query is a parameterised existence or aggregate check against the host data
// store.
type Query struct {
	Text string
}

// Params carries the values a query may reference.
type Params struct {
	CourseID       uint
	UserID         uint
	EventID        uint
	CourseModuleID uint
}

// BoundQuery is a query whose placeholders are known to resolve.
type BoundQuery struct {
	Text string
	Args map[string]interface{}
}

// Placeholders lists the distinct placeholder names referenced by the query in
// order of first appearance.
func (q Query) Placeholders() []Placeholder {
	matches := placeholderPattern.FindAllStringSubmatch(q.Text, -1)
	seen := make(map[string]struct{}, len(matches))
	result := make([]Placeholder, 0, len(matches))
	for _, match := range matches {
		name := strings.ToLower(match[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, Placeholder(name))
	}
	return result
}

// Validate checks that every placeholder is one of the known names.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return &ConfigurationError{Reason: "empty query"}
	}
	for _, placeholder := range q.Placeholders() {
		if !placeholder.known() {
			return &ConfigurationError{Query: q.Text, Placeholder: string(placeholder)}
		}
	}
	return nil
}

// Bind resolves the query's placeholders by name. Only referenced
// placeholders are passed on as arguments.
func (q Query) Bind(params Params) (BoundQuery, error) {
	if err := q.Validate(); err != nil {
		return BoundQuery{}, err
	}

	args := make(map[string]interface{}, 4)
	for _, placeholder := range q.Placeholders() {
		args[string(placeholder)] = placeholder.value(params)
	}

	return BoundQuery{Text: q.Text, Args: args}, nil
}

func (p Placeholder) known() bool {
	switch p {
	case PlaceholderCourseID, PlaceholderUserID, PlaceholderEventID, PlaceholderCourseModuleID:
		return true
	default:
		return false
	}
}

func (p Placeholder) value(params Params) uint {
	switch p {
	case PlaceholderCourseID:
		return params.CourseID
	case PlaceholderUserID:
		return params.UserID
	case PlaceholderEventID:
		return params.EventID
	default:
		return params.CourseModuleID
	}
}
