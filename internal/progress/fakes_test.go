package progress

import (
	"context"
	"time"
)

type fakeStore struct {
	course    Course
	courseErr error
	instances map[string][]InstanceRow
	fields    map[string]bool
	modules   []CourseModule
	sections  []Section
}

func (s *fakeStore) Course(_ context.Context, courseID uint) (Course, error) {
	if s.courseErr != nil {
		return Course{}, s.courseErr
	}
	if s.course.ID != courseID {
		return Course{}, NewNotFound("course", courseID)
	}
	return s.course, nil
}

func (s *fakeStore) HasInstances(_ context.Context, moduleName string, _ uint) (bool, error) {
	return len(s.instances[moduleName]) > 0, nil
}

func (s *fakeStore) HasField(_ context.Context, moduleName, field string) bool {
	return s.fields[moduleName+"."+field]
}

func (s *fakeStore) ListInstances(_ context.Context, moduleName, dueField string, _ uint) ([]InstanceRow, error) {
	rows := append([]InstanceRow(nil), s.instances[moduleName]...)
	if dueField == "" {
		for i := range rows {
			rows[i].Due = time.Time{}
		}
	}
	return rows, nil
}

func (s *fakeStore) CourseModules(context.Context, uint) ([]CourseModule, error) {
	return s.modules, nil
}

func (s *fakeStore) Sections(context.Context, uint) ([]Section, error) {
	return s.sections, nil
}

type fakeData struct {
	existsFn    func(BoundQuery) bool
	gradeFn     func(BoundQuery) (Grade, bool)
	existsCalls int
}

func (d *fakeData) Exists(_ context.Context, query BoundQuery) (bool, error) {
	d.existsCalls++
	if d.existsFn == nil {
		return false, nil
	}
	return d.existsFn(query), nil
}

func (d *fakeData) Grade(_ context.Context, query BoundQuery) (Grade, bool, error) {
	if d.gradeFn == nil {
		return Grade{}, false, nil
	}
	grade, ok := d.gradeFn(query)
	return grade, ok, nil
}

type fakeReader struct {
	backend LogBackend
	hits    map[uint]bool
	calls   int
}

func (r *fakeReader) Backend() LogBackend { return r.backend }

func (r *fakeReader) Exists(_ context.Context, query BoundQuery) (bool, error) {
	r.calls++
	cmid, _ := query.Args[string(PlaceholderCourseModuleID)].(uint)
	return r.hits[cmid], nil
}

type fakeAccess struct {
	hidden       map[uint]bool
	capabilities map[string]bool
}

func (a *fakeAccess) CanSee(_ context.Context, _ uint, module CourseModule, _ time.Time) (bool, error) {
	return !a.hidden[module.ID], nil
}

func (a *fakeAccess) HasCapability(_ context.Context, _, _ uint, capability string) (bool, error) {
	return a.capabilities[capability], nil
}

type countingRecorder struct {
	evaluations map[string]int
	hits        int
	misses      int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{evaluations: map[string]int{}}
}

func (r *countingRecorder) Evaluation(kind ActionKind, status Status) {
	r.evaluations[kind.String()+":"+status.String()]++
}

func (r *countingRecorder) ViewCache(hit bool) {
	if hit {
		r.hits++
		return
	}
	r.misses++
}

func argUint(query BoundQuery, placeholder Placeholder) uint {
	value, _ := query.Args[string(placeholder)].(uint)
	return value
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }
