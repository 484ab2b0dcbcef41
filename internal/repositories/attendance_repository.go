package repository

import (
	"context"

	"gorm.io/gorm"

	"care-tasks.com/care-tasks/internal/constants"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, record *model.AttendanceRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return apperrors.Persistence(err, "create attendance record")
	}
	return nil
}

// List returns the most recent records first. Role filters on the member's current role.
func (r *AttendanceRepository) List(ctx context.Context, role constants.Role, memberID string, limit int) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord

	query := r.db.WithContext(ctx).Order("recorded_at desc").Limit(limit)
	if memberID != "" {
		query = query.Where("member_id = ?", memberID)
	}
	if role != "" {
		query = query.Where("member_id IN (?)",
			r.db.Model(&model.Member{}).Select("id").Where("role = ?", role),
		)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, apperrors.Persistence(err, "list attendance records")
	}
	return records, nil
}
