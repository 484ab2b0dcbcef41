package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "care-tasks.com/care-tasks/internal/errors"
	model "care-tasks.com/care-tasks/internal/models"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert inserts the account or refreshes its name and role.
func (r *AccountRepository) Upsert(ctx context.Context, account *model.Account) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "role"}),
	}).Create(account).Error
	if err != nil {
		return apperrors.Persistence(err, "upsert account")
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Persistence(err, "find account")
	}
	return &account, nil
}
