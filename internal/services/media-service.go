package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/wavely/account-service/internal/domain"
	"github.com/wavely/account-service/internal/dto"
	"github.com/wavely/account-service/internal/interfaces"
	"github.com/wavely/account-service/internal/logger"
	"github.com/wavely/account-service/internal/repository"
)

const (
	MaxImageBytes = 4096 * 1024

	avatarFolder     = "avatars"
	backgroundFolder = "backgrounds"
)

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// MediaURLConfig controls how stored paths resolve to public URLs.
type MediaURLConfig struct {
	PublicBaseURL    string
	DefaultAvatarURL string
	DefaultBgURL     string
}

type MediaService interface {
	UploadAvatar(ctx context.Context, userID uint, file dto.MediaUpload) (*dto.AvatarResponse, error)
	UploadBackground(ctx context.Context, userID uint, file dto.MediaUpload) (*dto.BackgroundResponse, error)
	AvatarURL(path string) string
	BackgroundURL(path string) string
}

type mediaService struct {
	media    repository.MediaRepository
	uploader interfaces.Uploader
	urls     MediaURLConfig
}

func NewMediaService(
	media repository.MediaRepository,
	uploader interfaces.Uploader,
	urls MediaURLConfig,
) MediaService {
	return &mediaService{
		media:    media,
		uploader: uploader,
		urls:     urls,
	}
}

func (s *mediaService) UploadAvatar(ctx context.Context, userID uint, file dto.MediaUpload) (*dto.AvatarResponse, error) {
	if err := validateImage("avatar", file); err != nil {
		return nil, err
	}

	path, err := s.storeBlob(ctx, avatarFolder, file)
	if err != nil {
		return nil, err
	}

	avatar := &domain.Avatar{
		UserID:      userID,
		Path:        path,
		MimeType:    file.MimeType,
		Size:        file.Size,
		Description: file.Description,
	}

	// metadata commits first; the replaced blob is released after, so a
	// crash in between leaves an orphaned blob, never a dangling record
	oldPath, err := s.media.ReplaceAvatar(avatar)
	if err != nil {
		return nil, err
	}
	s.releaseBlob(ctx, oldPath)

	return &dto.AvatarResponse{
		URL:         s.AvatarURL(avatar.Path),
		Path:        avatar.Path,
		MimeType:    avatar.MimeType,
		Size:        avatar.Size,
		Description: avatar.Description,
	}, nil
}

func (s *mediaService) UploadBackground(ctx context.Context, userID uint, file dto.MediaUpload) (*dto.BackgroundResponse, error) {
	if err := validateImage("background", file); err != nil {
		return nil, err
	}

	path, err := s.storeBlob(ctx, backgroundFolder, file)
	if err != nil {
		return nil, err
	}

	bg := &domain.BackgroundImage{
		UserID:   userID,
		Path:     path,
		MimeType: file.MimeType,
		Size:     file.Size,
	}

	oldPath, err := s.media.UpsertBackground(bg)
	if err != nil {
		return nil, err
	}
	s.releaseBlob(ctx, oldPath)

	return &dto.BackgroundResponse{
		URL:      s.BackgroundURL(bg.Path),
		Path:     bg.Path,
		MimeType: bg.MimeType,
		Size:     bg.Size,
	}, nil
}

func (s *mediaService) AvatarURL(path string) string {
	return s.resolveURL(path, s.urls.DefaultAvatarURL)
}

func (s *mediaService) BackgroundURL(path string) string {
	return s.resolveURL(path, s.urls.DefaultBgURL)
}

func (s *mediaService) resolveURL(path, fallback string) string {
	if path == "" || s.urls.PublicBaseURL == "" {
		return fallback
	}
	return strings.TrimSuffix(s.urls.PublicBaseURL, "/") + "/" + path
}

func (s *mediaService) storeBlob(ctx context.Context, folder string, file dto.MediaUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := uuid.NewString() + ext

	if _, err := s.uploader.UploadBytes(ctx, folder, filename, file.Data); err != nil {
		logger.Log.Errorw("blob upload failed", "folder", folder, "err", err)
		return "", err
	}

	return folder + "/" + filename, nil
}

func (s *mediaService) releaseBlob(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.uploader.Delete(ctx, path); err != nil {
		logger.Log.Warnw("old blob not released", "path", path, "err", err)
	}
}

func validateImage(field string, file dto.MediaUpload) error {
	v := &ValidationErrors{}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	isImage := strings.HasPrefix(file.MimeType, "image/") && allowedImageExts[ext]
	if len(file.Data) == 0 {
		v.add(field, "The "+field+" field is required.")
	} else if !isImage {
		v.add(field, "The "+field+" must be an image.")
	}

	if file.Size > MaxImageBytes || int64(len(file.Data)) > MaxImageBytes {
		v.add(field, "The "+field+" may not be greater than 4096 kilobytes.")
	}

	if v.any() {
		return v
	}
	return nil
}
