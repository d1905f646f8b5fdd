package progress

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OrderMode selects how events are sequenced on the bar.
type OrderMode string

const (
	OrderByTime           OrderMode = "orderbytime"
	OrderByCoursePosition OrderMode = "orderbycourse"
)

// ParseOrderMode accepts stored values and their long aliases.
func ParseOrderMode(value string) OrderMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "orderbycourse", "by_course_position", "course":
		return OrderByCoursePosition
	default:
		return OrderByTime
	}
}

// LongBars is the layout used when a bar has many cells.
type LongBars string

const (
	LongBarsSqueeze LongBars = "squeeze"
	LongBarsScroll  LongBars = "scroll"
	LongBarsWrap    LongBars = "wrap"
)

// ParseLongBars returns the layout or fallback when value is unknown.
func ParseLongBars(value string, fallback LongBars) LongBars {
	switch LongBars(strings.ToLower(strings.TrimSpace(value))) {
	case LongBarsSqueeze:
		return LongBarsSqueeze
	case LongBarsScroll:
		return LongBarsScroll
	case LongBarsWrap:
		return LongBarsWrap
	default:
		return fallback
	}
}

// Per-instance key prefixes in the block configuration.
const (
	keyMonitor  = "monitor"
	keyLocked   = "locked"
	keyDateTime = "date_time"
	keyAction   = "action"
)

var instanceKeyPattern = regexp.MustCompile(`^(monitor|locked|date_time|action)_(\D+)(\d+)$`)

// InstanceKey joins a type name and instance id, e.g. quiz12.
func InstanceKey(typeName string, id uint) string {
	return typeName + strconv.FormatUint(uint64(id), 10)
}

// ConfigKey builds a per-instance configuration key, e.g. monitor_quiz12.
func ConfigKey(prefix, typeName string, id uint) string {
	return prefix + "_" + InstanceKey(typeName, id)
}

// InstanceSettings are the four settings stored per monitored instance.
type InstanceSettings struct {
	Monitor  *bool
	Locked   bool
	Expected time.Time
	Action   string
}

// Monitored reports whether monitoring is explicitly on.
func (s InstanceSettings) Monitored() bool {
	return s.Monitor != nil && *s.Monitor
}

// BlockConfig is the read-only configuration of one progress block.
type BlockConfig struct {
	Title          string
	ShowIcons      bool
	OrderBy        OrderMode
	DisplayNow     bool
	ShowPercentage bool
	LongBars       LongBars
	GroupID        uint
	Instances      map[string]InstanceSettings
}

// Settings returns the stored settings for an instance.
func (c BlockConfig) Settings(typeName string, id uint) (InstanceSettings, bool) {
	settings, ok := c.Instances[InstanceKey(typeName, id)]
	return settings, ok
}

// ParseBlockConfig reads the stored key/value configuration. Scalars may be
// booleans, numbers or strings.
func ParseBlockConfig(raw map[string]interface{}) BlockConfig {
	cfg := BlockConfig{
		OrderBy:    OrderByTime,
		DisplayNow: true,
		Instances:  make(map[string]InstanceSettings),
	}

	for key, value := range raw {
		if match := instanceKeyPattern.FindStringSubmatch(key); match != nil {
			id, err := strconv.ParseUint(match[3], 10, 64)
			if err != nil {
				continue
			}
			instanceKey := InstanceKey(match[2], uint(id))
			settings := cfg.Instances[instanceKey]
			switch match[1] {
			case keyMonitor:
				monitored := asBool(value)
				settings.Monitor = &monitored
			case keyLocked:
				settings.Locked = asBool(value)
			case keyDateTime:
				settings.Expected = asTime(value)
			case keyAction:
				settings.Action = asString(value)
			}
			cfg.Instances[instanceKey] = settings
			continue
		}

		switch key {
		case "progressTitle":
			cfg.Title = strings.TrimSpace(asString(value))
		case "progressBarIcons":
			cfg.ShowIcons = asBool(value)
		case "orderby":
			cfg.OrderBy = ParseOrderMode(asString(value))
		case "displayNow":
			cfg.DisplayNow = asBool(value)
		case "showpercentage":
			cfg.ShowPercentage = asBool(value)
		case "longbars":
			cfg.LongBars = ParseLongBars(asString(value), "")
		case "group":
			if group := asInt64(value); group > 0 {
				cfg.GroupID = uint(group)
			}
		}
	}

	return cfg
}

func asBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
		return false
	case nil:
		return false
	default:
		return asInt64(v) != 0
	}
}

func asInt64(value interface{}) int64 {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(math.Round(float64(v)))
	case float64:
		return int64(math.Round(v))
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int64(math.Round(parsed))
	default:
		return 0
	}
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// asTime accepts unix seconds (number or numeric string) and RFC 3339.
func asTime(value interface{}) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return parsed
		}
		if seconds := asInt64(trimmed); seconds > 0 {
			return time.Unix(seconds, 0).UTC()
		}
		return time.Time{}
	default:
		if seconds := asInt64(v); seconds > 0 {
			return time.Unix(seconds, 0).UTC()
		}
		return time.Time{}
	}
}
