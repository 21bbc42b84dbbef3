package repository

import (
	"errors"

	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaRepository interface {
	FindAvatarByUserID(userID uint) (*domain.Avatar, error)
	// ReplaceAvatar deletes any existing avatar row for the user and
	// inserts the new one in a single transaction. Returns the replaced
	// path, if any, so the caller can release the old blob.
	ReplaceAvatar(avatar *domain.Avatar) (oldPath string, err error)
	FindBackgroundByUserID(userID uint) (*domain.BackgroundImage, error)
	// UpsertBackground creates the row or overwrites path/mime/size in
	// place, keyed on the user_id unique index.
	UpsertBackground(bg *domain.BackgroundImage) (oldPath string, err error)
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) FindAvatarByUserID(userID uint) (*domain.Avatar, error) {
	avatar := &domain.Avatar{}

	if err := r.db.First(avatar, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		logger.Log.Errorw("find avatar failed", "err", err)
		return nil, err
	}

	return avatar, nil
}

func (r *mediaRepository) ReplaceAvatar(avatar *domain.Avatar) (string, error) {
	if avatar == nil {
		return "", errors.New("nil avatar")
	}

	var oldPath string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		existing := &domain.Avatar{}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(existing, "user_id = ?", avatar.UserID).Error
		switch {
		case err == nil:
			oldPath = existing.Path
			if err := tx.Delete(existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first upload
		default:
			return err
		}

		return tx.Create(avatar).Error
	})
	if err != nil {
		logger.Log.Errorw("replace avatar failed", "err", err)
		return "", err
	}

	return oldPath, nil
}

func (r *mediaRepository) FindBackgroundByUserID(userID uint) (*domain.BackgroundImage, error) {
	bg := &domain.BackgroundImage{}

	if err := r.db.First(bg, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		logger.Log.Errorw("find background failed", "err", err)
		return nil, err
	}

	return bg, nil
}

func (r *mediaRepository) UpsertBackground(bg *domain.BackgroundImage) (string, error) {
	if bg == nil {
		return "", errors.New("nil background")
	}

	var oldPath string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		existing := &domain.BackgroundImage{}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(existing, "user_id = ?", bg.UserID).Error
		if err == nil {
			oldPath = existing.Path
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"path", "mime_type", "size", "updated_at"}),
		}).Create(bg).Error
	})
	if err != nil {
		logger.Log.Errorw("upsert background failed", "err", err)
		return "", err
	}

	return oldPath, nil
}
