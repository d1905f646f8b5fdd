package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/progress"
)

// RosterFilter narrows the members listed for an overview.
type RosterFilter struct {
	CourseID         uint
	GroupID          uint
	IncludeSuspended bool
}

// RosterRepository reads course members.
type RosterRepository interface {
	ListStudents(ctx context.Context, filter RosterFilter) ([]models.User, error)
	GetUser(ctx context.Context, id uint) (models.User, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository constructs a repository.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) ListStudents(ctx context.Context, filter RosterFilter) ([]models.User, error) {
	assignments := r.db.
		Model(&models.RoleAssignment{}).
		Select("userid").
		Where("courseid = ? AND role = ?", filter.CourseID, models.RoleStudent)
	if !filter.IncludeSuspended {
		assignments = assignments.Where("suspended = ?", false)
	}

	query := r.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", assignments)
	if filter.GroupID > 0 {
		members := r.db.Model(&models.GroupMember{}).Select("userid").Where("groupid = ?", filter.GroupID)
		query = query.Where("id IN (?)", members)
	}

	var users []models.User
	if err := query.Order("lastname ASC").Order("firstname ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *rosterRepository) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, progress.NewNotFound("user", id)
		}
		return models.User{}, err
	}
	return user, nil
}
