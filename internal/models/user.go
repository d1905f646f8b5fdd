package models

// Course roles stored in role assignments.
const (
	RoleStudent        = "student"
	RoleTeacher        = "teacher"
	RoleEditingTeacher = "editingteacher"
	RoleManager        = "manager"
)

// User is a host account.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	FirstName  string `gorm:"column:firstname;size:100" json:"first_name"`
	LastName   string `gorm:"column:lastname;size:100" json:"last_name"`
	Email      string `gorm:"column:email;size:100" json:"email"`
	LastAccess int64  `gorm:"column:lastaccess" json:"last_access"`
}

// TableName maps to the host table.
func (User) TableName() string { return "users" }

// RoleAssignment enrols a user in a course with a role.
type RoleAssignment struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"column:userid;index"`
	CourseID  uint   `gorm:"column:courseid;index"`
	Role      string `gorm:"column:role;size:30"`
	Suspended bool   `gorm:"column:suspended"`
}

// TableName maps to the host table.
func (RoleAssignment) TableName() string { return "role_assignments" }

// GroupMember places a user in a course group.
type GroupMember struct {
	ID      uint `gorm:"primaryKey"`
	GroupID uint `gorm:"column:groupid;index"`
	UserID  uint `gorm:"column:userid;index"`
}

// TableName maps to the host table.
func (GroupMember) TableName() string { return "groups_members" }

// GroupingGroup assigns a group to a grouping.
type GroupingGroup struct {
	ID         uint `gorm:"primaryKey"`
	GroupingID uint `gorm:"column:groupingid;index"`
	GroupID    uint `gorm:"column:groupid"`
}

// TableName maps to the host table.
func (GroupingGroup) TableName() string { return "groupings_groups" }
