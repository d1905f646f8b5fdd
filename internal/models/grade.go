package models

// GradeItem is a gradable item, one per graded activity instance.
type GradeItem struct {
	ID           uint    `gorm:"primaryKey"`
	CourseID     uint    `gorm:"column:courseid;index"`
	ItemType     string  `gorm:"column:itemtype;size:30"`
	ItemModule   string  `gorm:"column:itemmodule;size:30"`
	ItemInstance uint    `gorm:"column:iteminstance"`
	GradePass    float64 `gorm:"column:gradepass"`
}

func (GradeItem) TableName() string { return "grade_items" }

// GradeGrade is a user's grade for an item; FinalGrade is null until graded.
type GradeGrade struct {
	ID           uint     `gorm:"primaryKey"`
	ItemID       uint     `gorm:"column:itemid;index"`
	UserID       uint     `gorm:"column:userid;index"`
	FinalGrade   *float64 `gorm:"column:finalgrade"`
	TimeModified int64    `gorm:"column:timemodified"`
}

func (GradeGrade) TableName() string { return "grade_grades" }
