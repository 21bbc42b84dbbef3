package repository

import (
	"errors"

	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/logger"
	"gorm.io/gorm"
)

type TokenRepository interface {
	CreateToken(token *domain.AuthToken) error
	FindByHash(hash string) (*domain.AuthToken, error)
	// DeleteByHash revokes a token. Revoking an unknown hash is a no-op.
	DeleteByHash(hash string) error
	DeleteAllForUser(userID uint) error
	// Rotate inserts the new token and deletes the old one in a single
	// transaction, issue before revoke.
	Rotate(oldHash string, newToken *domain.AuthToken) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) CreateToken(token *domain.AuthToken) error {
	if token == nil {
		return errors.New("nil token")
	}

	if err := r.db.Create(token).Error; err != nil {
		logger.Log.Errorw("create token failed", "err", err)
		return err
	}
	return nil
}

func (r *tokenRepository) FindByHash(hash string) (*domain.AuthToken, error) {
	token := &domain.AuthToken{}

	if err := r.db.First(token, "token_hash = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		logger.Log.Errorw("find token failed", "err", err)
		return nil, err
	}

	return token, nil
}

func (r *tokenRepository) DeleteByHash(hash string) error {
	if err := r.db.Where("token_hash = ?", hash).Delete(&domain.AuthToken{}).Error; err != nil {
		logger.Log.Errorw("delete token failed", "err", err)
		return err
	}
	return nil
}

func (r *tokenRepository) DeleteAllForUser(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&domain.AuthToken{}).Error; err != nil {
		logger.Log.Errorw("delete user tokens failed", "err", err)
		return err
	}
	return nil
}

func (r *tokenRepository) Rotate(oldHash string, newToken *domain.AuthToken) error {
	if newToken == nil {
		return errors.New("nil token")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(newToken).Error; err != nil {
			return err
		}
		return tx.Where("token_hash = ?", oldHash).Delete(&domain.AuthToken{}).Error
	})
}
