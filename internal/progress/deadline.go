package progress

import "time"

const (
	week          = 7 * 24 * time.Hour
	sectionMargin = 5 * time.Minute
)

// ResolveExpected picks the time an instance is expected to be completed:
// the locked deadline, then the configured override, then the default chain
// of DefaultExpected.
func ResolveExpected(descriptor Descriptor, instance ActivityInstance, settings InstanceSettings, course Course, now time.Time) time.Time {
	if descriptor.HasDeadline() && !instance.Due.IsZero() && settings.Locked {
		return instance.Due
	}
	if !settings.Expected.IsZero() {
		return settings.Expected
	}
	return DefaultExpected(instance, course, now)
}

// DefaultExpected is the expectation used when nothing is configured: the
// module's completion-expected date, the end of its week in weekly courses,
// or 23:55 on the coming Sunday.
func DefaultExpected(instance ActivityInstance, course Course, now time.Time) time.Time {
	if !instance.Module.CompletionExpected.IsZero() {
		return instance.Module.CompletionExpected
	}
	if course.WeeklyFormat() && !course.StartDate.IsZero() {
		section := instance.Section
		if section < 1 {
			section = 1
		}
		return course.StartDate.Add(time.Duration(section)*week - sectionMargin)
	}
	return EndOfWeek(now)
}

// EndOfWeek returns 23:55 on the Sunday after now, in now's location. On a
// Sunday it is the following Sunday.
func EndOfWeek(now time.Time) time.Time {
	days := 7 - int(now.Weekday())
	sunday := now.AddDate(0, 0, days)
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 55, 0, 0, now.Location())
}
