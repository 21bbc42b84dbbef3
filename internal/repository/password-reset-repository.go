package repository

import (
	"errors"

	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PasswordResetRepository interface {
	// UpsertTicket stores the ticket, replacing any live one for the
	// same email.
	UpsertTicket(ticket *domain.PasswordReset) error
	FindByEmail(email string) (*domain.PasswordReset, error)
	// DeleteByEmail consumes the ticket.
	DeleteByEmail(email string) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) UpsertTicket(ticket *domain.PasswordReset) error {
	if ticket == nil {
		return errors.New("nil ticket")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "created_at"}),
	}).Create(ticket).Error
	if err != nil {
		logger.Log.Errorw("upsert reset ticket failed", "err", err)
		return err
	}
	return nil
}

func (r *passwordResetRepository) FindByEmail(email string) (*domain.PasswordReset, error) {
	ticket := &domain.PasswordReset{}

	if err := r.db.First(ticket, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		logger.Log.Errorw("find reset ticket failed", "err", err)
		return nil, err
	}

	return ticket, nil
}

func (r *passwordResetRepository) DeleteByEmail(email string) error {
	if err := r.db.Where("email = ?", email).Delete(&domain.PasswordReset{}).Error; err != nil {
		logger.Log.Errorw("delete reset ticket failed", "err", err)
		return err
	}
	return nil
}
