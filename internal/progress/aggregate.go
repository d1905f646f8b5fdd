package progress

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Percentage is the share of complete events, rounded half away from zero.
func Percentage(events []Event, statuses map[string]Status) int {
	if len(events) == 0 {
		return 0
	}
	return int(math.Round(float64(CountComplete(events, statuses)) * 100 / float64(len(events))))
}

// CountComplete counts events whose status is completed or passed.
func CountComplete(events []Event, statuses map[string]Status) int {
	complete := 0
	for _, event := range events {
		if statuses[event.Key()].Complete() {
			complete++
		}
	}
	return complete
}

// NowMarker is the index of the first event not yet due, which equals the
// number of events already due. Events must be ordered by time.
func NowMarker(events []Event, now time.Time) int {
	for index, event := range events {
		if !event.Expected.Before(now) {
			return index
		}
	}
	return len(events)
}

// Summarize projects an evaluated event list onto the summary figures.
func Summarize(events []Event, statuses map[string]Status) Summary {
	return Summary{
		NumEvents:     len(events),
		NumAttempts:   CountComplete(events, statuses),
		ProgressValue: Percentage(events, statuses),
	}
}

// CellState is how a bar cell is drawn.
type CellState string

const (
	CellAttempted    CellState = "attempted"
	CellSubmitted    CellState = "submitted"
	CellFailed       CellState = "failed"
	CellNotAttempted CellState = "not_attempted"
	CellFuture       CellState = "future"
)

// StateFor maps a status to a cell state. Incomplete events that are not
// yet due are drawn as future.
func StateFor(status Status, expected, now time.Time) CellState {
	switch {
	case status.Complete():
		return CellAttempted
	case status == StatusSubmitted:
		return CellSubmitted
	case status == StatusFailed:
		return CellFailed
	case expected.After(now):
		return CellFuture
	default:
		return CellNotAttempted
	}
}

// Cell is one event on a progress bar.
type Cell struct {
	Type     string    `json:"type"`
	ID       uint      `json:"instance_id"`
	Name     string    `json:"name"`
	Status   Status    `json:"status"`
	State    CellState `json:"state"`
	Expected time.Time `json:"expected"`
	Link     string    `json:"link"`
}

// Bar is a rendered progress bar for one user.
type Bar struct {
	Cells      []Cell   `json:"cells"`
	Rows       [][]Cell `json:"rows"`
	Scroll     bool     `json:"scroll"`
	NowMarker  int      `json:"now_marker"`
	Percentage int      `json:"percentage"`
}

// BarOptions carries the presentation settings of a bar.
type BarOptions struct {
	Now        time.Time
	OrderBy    OrderMode
	DisplayNow bool
	LongBars   LongBars
	WrapAfter  int
	// Capabilities lists the capabilities the viewer holds in the course.
	Capabilities map[string]bool
}

// ActivityURL is the default link of an activity.
func ActivityURL(typeName string, courseModuleID uint) string {
	return fmt.Sprintf("/mod/%s/view.php?id=%d", typeName, courseModuleID)
}

// BuildBar turns ordered events and their statuses into cells and rows. The
// now marker is -1 unless the bar is ordered by time with the marker enabled.
func BuildBar(registry Registry, events []Event, statuses map[string]Status, opts BarOptions) Bar {
	cells := make([]Cell, 0, len(events))
	for _, event := range events {
		status := statuses[event.Key()]
		link := ActivityURL(event.Type, event.CourseModuleID)
		if descriptor, ok := registry.Get(event.Type); ok && descriptor.AlternateLink != nil {
			if opts.Capabilities[descriptor.AlternateLink.Capability] {
				link = descriptor.AlternateLink.URL(event.CourseModuleID)
			}
		}
		cells = append(cells, Cell{
			Type:     event.Type,
			ID:       event.InstanceID,
			Name:     event.Name,
			Status:   status,
			State:    StateFor(status, event.Expected, opts.Now),
			Expected: event.Expected,
			Link:     link,
		})
	}

	bar := Bar{
		Cells:      cells,
		NowMarker:  -1,
		Percentage: Percentage(events, statuses),
	}
	if opts.DisplayNow && opts.OrderBy != OrderByCoursePosition {
		bar.NowMarker = NowMarker(events, opts.Now)
	}
	bar.Rows, bar.Scroll = Layout(cells, opts.LongBars, opts.WrapAfter)
	return bar
}

// Layout splits cells into display rows. Only wrap produces more than one
// row; scroll keeps a single row flagged as scrollable.
func Layout(cells []Cell, mode LongBars, wrapAfter int) ([][]Cell, bool) {
	if len(cells) == 0 {
		return [][]Cell{}, false
	}
	switch mode {
	case LongBarsScroll:
		return [][]Cell{cells}, true
	case LongBarsWrap:
		if wrapAfter <= 0 {
			return [][]Cell{cells}, false
		}
		rows := make([][]Cell, 0, (len(cells)+wrapAfter-1)/wrapAfter)
		for start := 0; start < len(cells); start += wrapAfter {
			end := min(start+wrapAfter, len(cells))
			rows = append(rows, cells[start:end])
		}
		return rows, false
	default:
		return [][]Cell{cells}, false
	}
}

// OverviewRow is one roster member of the overview report.
type OverviewRow struct {
	UserID     uint      `json:"user_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	LastAccess time.Time `json:"last_access"`
	Progress   int       `json:"progress"`
	Bar        Bar       `json:"bar"`
}

// Overview sort fields.
const (
	SortName       = "name"
	SortLastOnline = "lastonline"
	SortProgress   = "progress"
)

// DefaultOverviewSort orders rows by name ascending.
const DefaultOverviewSort = SortName + " asc"

var overviewKeys = map[string][]func(Direction) SortKey[OverviewRow]{
	SortName: {
		func(d Direction) SortKey[OverviewRow] {
			return Key(func(r OverviewRow) string { return strings.ToLower(r.LastName) }, d)
		},
		func(d Direction) SortKey[OverviewRow] {
			return Key(func(r OverviewRow) string { return strings.ToLower(r.FirstName) }, d)
		},
	},
	SortLastOnline: {
		func(d Direction) SortKey[OverviewRow] {
			return Key(func(r OverviewRow) int64 { return r.LastAccess.Unix() }, d)
		},
	},
	SortProgress: {
		func(d Direction) SortKey[OverviewRow] {
			return Key(func(r OverviewRow) int { return r.Progress }, d)
		},
	},
}

// ParseOverviewSort reads a comma separated list of "field [asc|desc]". An
// empty value means DefaultOverviewSort.
func ParseOverviewSort(value string) ([]SortKey[OverviewRow], error) {
	if strings.TrimSpace(value) == "" {
		value = DefaultOverviewSort
	}

	var keys []SortKey[OverviewRow]
	for _, part := range strings.Split(value, ",") {
		fields := strings.Fields(strings.ToLower(part))
		if len(fields) == 0 {
			continue
		}
		builders, ok := overviewKeys[fields[0]]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", fields[0])
		}
		direction := Asc
		if len(fields) > 1 {
			switch fields[1] {
			case "asc":
			case "desc":
				direction = Desc
			default:
				return nil, fmt.Errorf("unknown sort direction %q", fields[1])
			}
		}
		for _, build := range builders {
			keys = append(keys, build(direction))
		}
	}
	// user id keeps equal rows stable between requests
	keys = append(keys, Key(func(r OverviewRow) uint { return r.UserID }, Asc))
	return keys, nil
}
