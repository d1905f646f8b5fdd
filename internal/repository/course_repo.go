package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/progress"
)

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CourseRepository reads course outlines and activity tables.
type CourseRepository interface {
	progress.CourseStore
}

type courseRepository struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

// NewCourseRepository constructs a repository over the host tables.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db, policy: bluemonday.StrictPolicy()}
}

func (r *courseRepository) Course(ctx context.Context, courseID uint) (progress.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return progress.Course{}, progress.NewNotFound("course", courseID)
		}
		return progress.Course{}, err
	}

	return progress.Course{
		ID:        course.ID,
		FullName:  r.policy.Sanitize(course.FullName),
		ShortName: r.policy.Sanitize(course.ShortName),
		Format:    course.Format,
		StartDate: unixTime(course.StartDate),
	}, nil
}

// HasInstances is false for types whose table is not installed.
func (r *courseRepository) HasInstances(ctx context.Context, moduleName string, courseID uint) (bool, error) {
	if !identifierPattern.MatchString(moduleName) || !r.db.Migrator().HasTable(moduleName) {
		return false, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Table(moduleName).Where("course = ?", courseID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count %s: %w", moduleName, err)
	}
	return count > 0, nil
}

func (r *courseRepository) HasField(_ context.Context, moduleName, field string) bool {
	if !identifierPattern.MatchString(moduleName) || !identifierPattern.MatchString(field) {
		return false
	}
	return r.db.Migrator().HasColumn(moduleName, field)
}

type instanceRow struct {
	ID   uint
	Name string
	Due  int64
}

func (r *courseRepository) ListInstances(ctx context.Context, moduleName, dueField string, courseID uint) ([]progress.InstanceRow, error) {
	if !identifierPattern.MatchString(moduleName) {
		return nil, nil
	}

	columns := "id, name"
	if dueField != "" && identifierPattern.MatchString(dueField) {
		columns += ", " + dueField + " AS due"
	}

	var rows []instanceRow
	err := r.db.WithContext(ctx).
		Table(moduleName).
		Select(columns).
		Where("course = ?", courseID).
		Order("name ASC").
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	instances := make([]progress.InstanceRow, 0, len(rows))
	for _, row := range rows {
		instances = append(instances, progress.InstanceRow{
			ID:   row.ID,
			Name: r.policy.Sanitize(row.Name),
			Due:  unixTime(row.Due),
		})
	}
	return instances, nil
}

func (r *courseRepository) CourseModules(ctx context.Context, courseID uint) ([]progress.CourseModule, error) {
	var rows []models.CourseModule
	if err := r.db.WithContext(ctx).Where("course = ?", courseID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	modules := make([]progress.CourseModule, 0, len(rows))
	for _, row := range rows {
		modules = append(modules, toCourseModule(row))
	}
	return modules, nil
}

func (r *courseRepository) Sections(ctx context.Context, courseID uint) ([]progress.Section, error) {
	var rows []models.CourseSection
	if err := r.db.WithContext(ctx).Where("course = ?", courseID).Order("section ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	sections := make([]progress.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, progress.Section{ID: row.ID, Number: row.Section, Sequence: row.SequenceIDs()})
	}
	return sections, nil
}

func toCourseModule(row models.CourseModule) progress.CourseModule {
	return progress.CourseModule{
		ID:                 row.ID,
		CourseID:           row.CourseID,
		ModuleName:         row.ModuleName,
		Instance:           row.Instance,
		SectionID:          row.SectionID,
		Visible:            row.Visible,
		AvailableFrom:      unixTime(row.AvailableFrom),
		AvailableUntil:     unixTime(row.AvailableUntil),
		GroupingID:         row.GroupingID,
		GroupMembersOnly:   row.GroupMembersOnly,
		CompletionEnabled:  row.Completion > 0,
		CompletionExpected: unixTime(row.CompletionExpected),
	}
}

// unixTime maps unset (zero or negative) timestamps to the zero time.
func unixTime(seconds int64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}
