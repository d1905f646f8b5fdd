package models

import "gorm.io/datatypes"

// ProgressBlockName is the block name of progress bar instances.
const ProgressBlockName = "progress"

// BlockInstance is a block placed on a course page. ConfigData holds the
// block's key/value configuration.
type BlockInstance struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	BlockName  string            `gorm:"column:blockname;size:40;index" json:"block_name"`
	CourseID   uint              `gorm:"column:courseid;index" json:"course_id"`
	Region     string            `gorm:"column:region;size:16" json:"region"`
	Weight     int               `gorm:"column:weight" json:"weight"`
	ConfigData datatypes.JSONMap `gorm:"column:configdata;type:json" json:"config_data"`
}

// TableName maps to the host table.
func (BlockInstance) TableName() string { return "block_instances" }

// HostModels lists the host tables the progress service reads, in migration
// order.
func HostModels() []interface{} {
	return []interface{}{
		&Course{},
		&CourseSection{},
		&CourseModule{},
		&CourseModuleCompletion{},
		&GradeItem{},
		&GradeGrade{},
		&LegacyLogEntry{},
		&StandardLogEntry{},
		&User{},
		&RoleAssignment{},
		&GroupMember{},
		&GroupingGroup{},
		&BlockInstance{},
	}
}
