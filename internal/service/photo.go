package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mirotrak/mirotrak/internal/metrics"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
)

// Photo service errors.
var (
	ErrStorageDisabled  = errors.New("object storage is not configured")
	ErrInvalidImageType = errors.New("unsupported image type")
	ErrBulkLimit        = errors.New("bulk request size out of range")
)

const (
	photoKeyPrefix = "ai-photos/"
	presignTTL     = 5 * time.Minute
)

// imageTypes maps accepted content types to the extension used in object keys.
var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStorage stores photo files.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	URL(key string) string
}

// PhotoStore is the persistence needed by PhotoService.
type PhotoStore interface {
	GetAiPhoto(ctx context.Context, id int64) (*model.AiPhoto, error)
	UpdateAiPhoto(ctx context.Context, p *model.AiPhoto) error
	CreateAiPhotos(ctx context.Context, photos []*model.AiPhoto) error
}

// PhotoService handles AI photo uploads and batch creation.
type PhotoService struct {
	store     PhotoStore
	storage   ObjectStorage
	bulkLimit int
	metrics   metrics.Recorder
}

// NewPhotoService creates a new PhotoService. A nil storage disables uploads.
func NewPhotoService(store PhotoStore, storage ObjectStorage, bulkLimit int, recorder metrics.Recorder) *PhotoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if bulkLimit <= 0 {
		bulkLimit = 5
	}
	return &PhotoService{
		store:     store,
		storage:   storage,
		bulkLimit: bulkLimit,
		metrics:   recorder,
	}
}

// BulkLimit returns the maximum number of photos per bulk request.
func (s *PhotoService) BulkLimit() int {
	return s.bulkLimit
}

// PresignResult is a direct-upload grant.
type PresignResult struct {
	UploadURL  string `json:"uploadUrl"`
	StorageKey string `json:"storageKey"`
	ImageURL   string `json:"imageUrl"`
	ExpiresIn  int    `json:"expiresIn"`
}

// Presign reserves an object key and returns a pre-signed PUT URL for it.
func (s *PhotoService) Presign(ctx context.Context, filename, contentType string) (*PresignResult, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	key, err := objectKey(filename, contentType)
	if err != nil {
		return nil, err
	}

	uploadURL, err := s.storage.PresignPut(ctx, key, contentType, presignTTL)
	if err != nil {
		return nil, err
	}

	return &PresignResult{
		UploadURL:  uploadURL,
		StorageKey: key,
		ImageURL:   s.storage.URL(key),
		ExpiresIn:  int(presignTTL.Seconds()),
	}, nil
}

// UploadImageInput describes a file attached to an existing photo.
type UploadImageInput struct {
	PhotoID     int64
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadImage stores the file and points the photo at it. The previous
// object, if any, is removed afterwards.
func (s *PhotoService) UploadImage(ctx context.Context, input UploadImageInput) (*model.AiPhoto, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	photo, err := s.store.GetAiPhoto(ctx, input.PhotoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ai photo: %w", err)
	}

	key, err := objectKey(input.Filename, input.ContentType)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Put(ctx, key, input.ContentType, input.Body, input.Size); err != nil {
		return nil, err
	}

	previous := photo.StorageKey
	photo.StorageKey = key
	photo.ImageURL = s.storage.URL(key)
	if err := s.store.UpdateAiPhoto(ctx, photo); err != nil {
		_ = s.storage.Delete(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update ai photo: %w", err)
	}

	s.metrics.IncPhotoUploaded()

	if previous != "" && previous != key {
		_ = s.storage.Delete(ctx, previous)
	}
	return photo, nil
}

// RemoveObject deletes a stored file. Photos without a storage key, or
// a service without storage, are a no-op.
func (s *PhotoService) RemoveObject(ctx context.Context, photo *model.AiPhoto) error {
	if s.storage == nil || photo == nil || photo.StorageKey == "" {
		return nil
	}
	return s.storage.Delete(ctx, photo.StorageKey)
}

// CreateBulk validates and inserts photos in one transaction.
func (s *PhotoService) CreateBulk(ctx context.Context, photos []*model.AiPhoto) ([]*model.AiPhoto, error) {
	if len(photos) == 0 || len(photos) > s.bulkLimit {
		return nil, ErrBulkLimit
	}

	for i, p := range photos {
		if p == nil {
			return nil, &model.ValidationError{Field: fmt.Sprintf("photos[%d]", i), Message: "is required"}
		}
		p.SetID(0)
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateAiPhotos(ctx, photos); err != nil {
		return nil, fmt.Errorf("failed to create ai photos: %w", err)
	}

	for range photos {
		s.metrics.IncRecordCreated(model.TableAiPhotos)
	}
	return photos, nil
}

// objectKey builds "ai-photos/<ULID><ext>" for an accepted image type.
func objectKey(filename, contentType string) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	ext, ok := imageTypes[contentType]
	if !ok {
		return "", ErrInvalidImageType
	}
	if fileExt := strings.ToLower(path.Ext(filename)); (fileExt == ".jpeg" && ext == ".jpg") || fileExt == ext {
		ext = fileExt
	}

	return photoKeyPrefix + ulid.Make().String() + ext, nil
}
