package models

// LegacyLogEntry is a row of the legacy log table.
type LegacyLogEntry struct {
	ID     uint   `gorm:"primaryKey"`
	Time   int64  `gorm:"column:time"`
	UserID uint   `gorm:"column:userid;index"`
	Course uint   `gorm:"column:course;index"`
	Module string `gorm:"column:module;size:20"`
	CMID   uint   `gorm:"column:cmid"`
	Action string `gorm:"column:action;size:40"`
}

func (LegacyLogEntry) TableName() string { return "log" }

// StandardLogEntry is a row of the standard log store.
type StandardLogEntry struct {
	ID                uint   `gorm:"primaryKey"`
	EventName         string `gorm:"column:eventname;size:255"`
	Component         string `gorm:"column:component;size:100"`
	Action            string `gorm:"column:action;size:100"`
	CRUD              string `gorm:"column:crud;size:1"`
	ContextLevel      int    `gorm:"column:contextlevel"`
	ContextInstanceID uint   `gorm:"column:contextinstanceid"`
	UserID            uint   `gorm:"column:userid;index"`
	CourseID          uint   `gorm:"column:courseid;index"`
	TimeCreated       int64  `gorm:"column:timecreated"`
}

func (StandardLogEntry) TableName() string { return "logstore_standard_log" }

// ContextLevelModule is the context level of activity pages.
const ContextLevelModule = 70
