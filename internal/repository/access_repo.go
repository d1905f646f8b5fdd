package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/progress"
)

// Capabilities granted to course staff.
const (
	CapabilityViewHidden = "moodle/course:viewhiddenactivities"
	CapabilityOverview   = "block/progress:overview"
)

var staffCapabilities = []string{
	CapabilityViewHidden,
	CapabilityOverview,
	"mod/assign:grade",
	"mod/assignment:grade",
	"mod/quiz:viewreports",
}

var roleCapabilities = map[string][]string{
	models.RoleEditingTeacher: staffCapabilities,
	models.RoleTeacher:        staffCapabilities,
	models.RoleManager:        staffCapabilities,
}

// AccessRepository answers visibility and capability checks from role
// assignments and group membership.
type AccessRepository interface {
	progress.AccessChecker
	Capabilities(ctx context.Context, userID, courseID uint) (map[string]bool, error)
}

type accessRepository struct {
	db *gorm.DB
}

// NewAccessRepository constructs the checker.
func NewAccessRepository(db *gorm.DB) AccessRepository {
	return &accessRepository{db: db}
}

func (r *accessRepository) Capabilities(ctx context.Context, userID, courseID uint) (map[string]bool, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&models.RoleAssignment{}).
		Where("userid = ? AND courseid = ? AND suspended = ?", userID, courseID, false).
		Pluck("role", &roles).Error
	if err != nil {
		return nil, err
	}

	capabilities := map[string]bool{}
	for _, role := range roles {
		for _, capability := range roleCapabilities[role] {
			capabilities[capability] = true
		}
	}
	return capabilities, nil
}

func (r *accessRepository) HasCapability(ctx context.Context, userID, courseID uint, capability string) (bool, error) {
	capabilities, err := r.Capabilities(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	return capabilities[capability], nil
}

// CanSee applies module visibility, the availability window and grouping
// restrictions. Staff see hidden and restricted modules.
func (r *accessRepository) CanSee(ctx context.Context, userID uint, module progress.CourseModule, now time.Time) (bool, error) {
	staff, err := r.HasCapability(ctx, userID, module.CourseID, CapabilityViewHidden)
	if err != nil {
		return false, err
	}
	if staff {
		return true, nil
	}

	if !module.Visible || !module.AvailableAt(now) {
		return false, nil
	}
	if !module.GroupMembersOnly || module.GroupingID == 0 {
		return true, nil
	}

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Joins("JOIN groupings_groups gg ON gg.groupid = groups_members.groupid").
		Where("gg.groupingid = ? AND groups_members.userid = ?", module.GroupingID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
