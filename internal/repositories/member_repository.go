package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"care-tasks.com/care-tasks/internal/constants"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) FindByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.Persistence(err, "find member")
	}
	return &member, nil
}

func (r *MemberRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Member, error) {
	var members []model.Member
	if len(ids) == 0 {
		return members, nil
	}

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name asc").Find(&members).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "find members")
	}
	return members, nil
}

func (r *MemberRepository) FindByAccountAndName(ctx context.Context, accountID, name string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).First(&member, "account_id = ? AND name = ?", accountID, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.Persistence(err, "find member by name")
	}
	return &member, nil
}

func (r *MemberRepository) ExistsInAccount(ctx context.Context, memberID, accountID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Member{}).
		Where("id = ? AND account_id = ?", memberID, accountID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Persistence(err, "check member account")
	}
	return count > 0, nil
}

// ListByAccount returns the active members of an account ordered by name.
func (r *MemberRepository) ListByAccount(ctx context.Context, accountID string) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND active = ?", accountID, true).
		Order("name asc").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "list account members")
	}
	return members, nil
}

// ListAllByAccount returns every member of an account, inactive ones included.
func (r *MemberRepository) ListAllByAccount(ctx context.Context, accountID string) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&members).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "list account members")
	}
	return members, nil
}

// ListAllNames returns every member name of an account, inactive ones included.
func (r *MemberRepository) ListAllNames(ctx context.Context, accountID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.Member{}).
		Where("account_id = ?", accountID).
		Pluck("name", &names).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "list member names")
	}
	return names, nil
}

func (r *MemberRepository) CountByAccountAndRole(ctx context.Context, accountID string, role constants.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Member{}).
		Where("account_id = ? AND role = ?", accountID, role).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Persistence(err, "count members")
	}
	return count, nil
}

func (r *MemberRepository) ListActiveByRole(ctx context.Context, role constants.Role) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Where("role = ? AND active = ?", role, true).
		Order("name asc").
		Find(&members).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "list members by role")
	}
	return members, nil
}

func (r *MemberRepository) ListActive(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name asc").Find(&members).Error
	if err != nil {
		return nil, apperrors.Persistence(err, "list active members")
	}
	return members, nil
}

// InsertMissing inserts members, skipping any whose (account, name) already exists.
// It returns the number of rows actually inserted.
func (r *MemberRepository) InsertMissing(ctx context.Context, members []model.Member) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&members)
	if res.Error != nil {
		return 0, apperrors.Persistence(res.Error, "insert members")
	}
	return res.RowsAffected, nil
}

func (r *MemberRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Member{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return apperrors.Persistence(res.Error, "update member")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}
