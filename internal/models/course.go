package models

import (
	"strconv"
	"strings"
)

// Course is a row of the host course table. Timestamps are unix seconds.
type Course struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FullName  string `gorm:"column:fullname;size:254" json:"full_name"`
	ShortName string `gorm:"column:shortname;size:255" json:"short_name"`
	Format    string `gorm:"column:format;size:21;default:topics" json:"format"`
	StartDate int64  `gorm:"column:startdate" json:"start_date"`
}

// TableName maps to the host table.
func (Course) TableName() string { return "course" }

// CourseSection is one section of a course outline.
type CourseSection struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"column:course;index" json:"course_id"`
	Section  int    `gorm:"column:section" json:"section"`
	Sequence string `gorm:"column:sequence;type:text" json:"sequence"`
}

// TableName maps to the host table.
func (CourseSection) TableName() string { return "course_sections" }

// SequenceIDs parses the comma separated course module ids of the section.
func (s CourseSection) SequenceIDs() []uint {
	if strings.TrimSpace(s.Sequence) == "" {
		return nil
	}
	parts := strings.Split(s.Sequence, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// CourseModule places an activity instance in a course section.
type CourseModule struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	CourseID           uint   `gorm:"column:course;index" json:"course_id"`
	ModuleName         string `gorm:"column:modname;size:20;index" json:"module_name"`
	Instance           uint   `gorm:"column:instance" json:"instance"`
	SectionID          uint   `gorm:"column:section" json:"section_id"`
	Visible            bool   `gorm:"column:visible" json:"visible"`
	AvailableFrom      int64  `gorm:"column:availablefrom" json:"available_from"`
	AvailableUntil     int64  `gorm:"column:availableuntil" json:"available_until"`
	GroupingID         uint   `gorm:"column:groupingid" json:"grouping_id"`
	GroupMembersOnly   bool   `gorm:"column:groupmembersonly" json:"group_members_only"`
	Completion         int    `gorm:"column:completion" json:"completion"`
	CompletionExpected int64  `gorm:"column:completionexpected" json:"completion_expected"`
}

// TableName maps to the host table.
func (CourseModule) TableName() string { return "course_modules" }

// CourseModuleCompletion records a user's completion state of a module.
type CourseModuleCompletion struct {
	ID              uint  `gorm:"primaryKey"`
	CourseModuleID  uint  `gorm:"column:coursemoduleid;index"`
	UserID          uint  `gorm:"column:userid;index"`
	CompletionState int   `gorm:"column:completionstate"`
	TimeModified    int64 `gorm:"column:timemodified"`
}

// TableName maps to the host table.
func (CourseModuleCompletion) TableName() string { return "course_modules_completion" }
