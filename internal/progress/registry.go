package progress

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Action names with dedicated evaluation paths.
const (
	ActionActivityCompletion = "activity_completion"
	ActionPassed             = "passed"
	ActionPassedBy           = "passedby"
	ActionViewed             = "viewed"
	ActionSubmitted          = "submitted"
)

// ActionKind selects how an action's predicate is evaluated.
type ActionKind int

const (
	// KindExists completes when the query returns any row.
	KindExists ActionKind = iota
	// KindGrade compares a final grade with the grade to pass.
	KindGrade
	// KindViewed looks for a view event in one of the configured log backends.
	KindViewed
	// KindCompletion reads the host's activity completion state.
	KindCompletion
)

func (k ActionKind) String() string {
	switch k {
	case KindGrade:
		return "grade"
	case KindViewed:
		return "viewed"
	case KindCompletion:
		return "completion"
	default:
		return "exists"
	}
}

// LogBackend identifies a source of view events.
type LogBackend string

const (
	LogBackendLegacy   LogBackend = "legacy"
	LogBackendStandard LogBackend = "standard"
)

// Action is a named completion predicate.
type Action struct {
	Kind      ActionKind
	Query     Query
	ByBackend map[LogBackend]Query
}

// AlternateLink replaces the activity link for viewers holding Capability.
type AlternateLink struct {
	URLTemplate string
	Capability  string
}

// URL renders the template for a course module.
func (l AlternateLink) URL(courseModuleID uint) string {
	return strings.ReplaceAll(l.URLTemplate, "{cmid}", strconv.FormatUint(uint64(courseModuleID), 10))
}

// Descriptor describes one monitorable activity type.
type Descriptor struct {
	Name               string
	DeadlineField      string
	Actions            map[string]Action
	DefaultAction      string
	AlternateLink      *AlternateLink
	ShowSubmittedFirst bool
}

// activityCompletion is available to every descriptor.
var activityCompletion = Action{
	Kind: KindCompletion,
	Query: Query{Text: "SELECT id FROM course_modules_completion " +
		"WHERE userid = @userid AND coursemoduleid = @cmid AND completionstate >= 1"},
}

// Action returns the predicate for name, including activity_completion.
func (d Descriptor) Action(name string) (Action, bool) {
	if name == ActionActivityCompletion {
		return activityCompletion, true
	}
	action, ok := d.Actions[name]
	return action, ok
}

// ResolveAction maps a configured action to one the descriptor can evaluate,
// falling back to the default action.
func (d Descriptor) ResolveAction(configured string) string {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return d.DefaultAction
	}
	if _, ok := d.Action(configured); ok {
		return configured
	}
	return d.DefaultAction
}

// ActionNames lists the descriptor's own actions alphabetically.
func (d Descriptor) ActionNames() []string {
	names := make([]string, 0, len(d.Actions))
	for name := range d.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasDeadline reports whether the type declares a deadline field.
func (d Descriptor) HasDeadline() bool {
	return d.DeadlineField != ""
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return &ConfigurationError{Reason: "descriptor without a name"}
	}
	if _, ok := d.Actions[d.DefaultAction]; !ok {
		return &ConfigurationError{Reason: fmt.Sprintf("%s: default action %q is not defined", d.Name, d.DefaultAction)}
	}
	for name, action := range d.Actions {
		switch name {
		case ActionPassed, ActionPassedBy:
			if action.Kind != KindGrade {
				return &ConfigurationError{Reason: fmt.Sprintf("%s: %s must be a grade predicate", d.Name, name)}
			}
		case ActionViewed:
			if action.Kind != KindViewed {
				return &ConfigurationError{Reason: fmt.Sprintf("%s: viewed must be a log predicate", d.Name)}
			}
		}
		if action.Kind == KindViewed {
			if len(action.ByBackend) == 0 {
				return &ConfigurationError{Reason: fmt.Sprintf("%s.%s: no log backend queries", d.Name, name)}
			}
			for _, query := range action.ByBackend {
				if err := query.Validate(); err != nil {
					return err
				}
			}
			continue
		}
		if err := action.Query.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Registry is an ordered, read-only catalogue of descriptors.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

// NewRegistry validates and indexes descriptors, keeping their order.
func NewRegistry(descriptors ...Descriptor) (Registry, error) {
	registry := Registry{
		order:  make([]string, 0, len(descriptors)),
		byName: make(map[string]Descriptor, len(descriptors)),
	}
	for _, descriptor := range descriptors {
		if err := descriptor.validate(); err != nil {
			return Registry{}, err
		}
		if _, exists := registry.byName[descriptor.Name]; exists {
			return Registry{}, &ConfigurationError{Reason: fmt.Sprintf("duplicate descriptor %q", descriptor.Name)}
		}
		registry.order = append(registry.order, descriptor.Name)
		registry.byName[descriptor.Name] = descriptor
	}
	return registry, nil
}

// MustRegistry panics on invalid descriptors; used for the built-in tables.
func MustRegistry(descriptors ...Descriptor) Registry {
	registry, err := NewRegistry(descriptors...)
	if err != nil {
		panic(err)
	}
	return registry
}

// Get returns the descriptor for a type name.
func (r Registry) Get(name string) (Descriptor, bool) {
	descriptor, ok := r.byName[name]
	return descriptor, ok
}

// Names returns type names in declaration order.
func (r Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len reports the number of descriptors.
func (r Registry) Len() int {
	return len(r.order)
}

// ActionChoices lists the actions an instructor may pick for an instance.
// Grade-based actions need a positive grade to pass and activity completion
// needs completion tracking on the module.
func (r Registry) ActionChoices(typeName string, completionEnabled bool, gradePass float64) []string {
	descriptor, ok := r.Get(typeName)
	if !ok {
		return nil
	}
	choices := make([]string, 0, len(descriptor.Actions)+1)
	for _, name := range descriptor.ActionNames() {
		if descriptor.Actions[name].Kind == KindGrade && gradePass <= 0 {
			continue
		}
		choices = append(choices, name)
	}
	if completionEnabled {
		choices = append(choices, ActionActivityCompletion)
	}
	return choices
}

// PlatformVersion is the host platform release, e.g. 2.3 or 4.1.
type PlatformVersion struct {
	Major int
	Minor int
}

// ParsePlatformVersion reads "major.minor".
func ParsePlatformVersion(value string) (PlatformVersion, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return PlatformVersion{}, fmt.Errorf("invalid platform version %q: %w", value, err)
	}
	version := PlatformVersion{Major: major}
	if len(parts) > 1 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil {
			return PlatformVersion{}, fmt.Errorf("invalid platform version %q: %w", value, err)
		}
		version.Minor = minor
	}
	return version, nil
}

// AtLeast compares versions.
func (v PlatformVersion) AtLeast(other PlatformVersion) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

func (v PlatformVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

type registryStrategy struct {
	since PlatformVersion
	build func() []Descriptor
}

// strategies is ordered newest first.
var strategies = []registryStrategy{
	{since: PlatformVersion{Major: 2, Minor: 3}, build: currentDescriptors},
	{since: PlatformVersion{}, build: legacyDescriptors},
}

// RegistryFor selects the descriptor table for a host platform version.
func RegistryFor(version PlatformVersion) Registry {
	for _, strategy := range strategies {
		if version.AtLeast(strategy.since) {
			return MustRegistry(strategy.build()...)
		}
	}
	return MustRegistry(legacyDescriptors()...)
}
