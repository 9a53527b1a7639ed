package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ats-ng/scmc-video-upload-api/internal/model"
	"github.com/ats-ng/scmc-video-upload-api/internal/repository"
	"github.com/ats-ng/scmc-video-upload-api/internal/storage"
)

var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("media not found")
	ErrReaderNil      = errors.New("reader is nil")
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

// MediaListResult is the service-level DTO for paginated media descriptors.
type MediaListResult struct {
	Items []model.Media `json:"media"`
	Total int           `json:"total"`
}

// MediaService defines the use cases for handling media objects.
type MediaService interface {
	// Upload streams the content to object storage, then records the descriptor.
	// The object is written first so a crash between the two steps can only
	// leave an orphaned blob, never a descriptor pointing at nothing; a failed
	// descriptor insert rolls the object back.
	Upload(ctx context.Context, r io.Reader, originalFilename string, declaredContentType string, size int64) (*model.Media, error)

	// List returns media descriptors in insertion order using limit/offset
	// and a total count.
	List(ctx context.Context, limit, offset int) (*MediaListResult, error)

	// Get returns a single media descriptor by its ID.
	Get(ctx context.Context, id string) (*model.Media, error)

	// Delete removes a media object from storage first, then its descriptor.
	// Success is only reported once both are gone.
	Delete(ctx context.Context, id string) error

	// OpenRange opens a streaming reader over the inclusive byte range
	// [start, end] of the media object. The descriptor pins the storage key,
	// so a concurrent delete cannot redirect an in-flight stream; if the
	// backend invalidates the object mid-read, the reader errors and the
	// stream aborts cleanly.
	OpenRange(ctx context.Context, m *model.Media, start, end int64) (io.ReadCloser, error)
}

// mediaService is a concrete implementation of MediaService.
type mediaService struct {
	store storage.Storage
	repo  repository.MediaRepository
}

// NewMediaService constructs a new MediaService.
func NewMediaService(store storage.Storage, repo repository.MediaRepository) MediaService {
	return &mediaService{store: store, repo: repo}
}

func (s *mediaService) Upload(ctx context.Context, r io.Reader, originalFilename string, declaredContentType string, size int64) (*model.Media, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !isAllowedFile(originalFilename) {
		return nil, ErrTypeNotAllowed
	}

	contentType := declaredContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(originalFilename)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(originalFilename))
	key := "media/" + id + ext

	// Write the object first; the descriptor is only visible once the bytes
	// are durably stored.
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	// The descriptor must carry the store's authoritative byte length; the
	// streaming path trusts it for Content-Length and range validation.
	objInfo, err := s.store.Stat(ctx, key)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("stat after upload failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("stat after upload failed: %w", err)
	}

	m := &model.Media{
		ID:          id,
		Filename:    originalFilename,
		StoragePath: key,
		Size:        objInfo.Size,
		ContentType: contentType,
		MediaType:   classifyMedia(contentType, originalFilename),
		UploadTime:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, m)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated media descriptors without exposing repository types.
func (s *mediaService) List(ctx context.Context, limit, offset int) (*MediaListResult, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &MediaListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a media descriptor by ID.
func (s *mediaService) Get(ctx context.Context, id string) (*model.Media, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// Delete removes a media object from storage, then deletes its descriptor.
func (s *mediaService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete the object first; if this fails, the descriptor stays so the
	// media remains listed instead of dangling without a backing object.
	if err := s.store.Delete(ctx, m.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// OpenRange opens the underlying object bytes for streaming. The storage key
// comes from the descriptor the caller already holds, so no extra registry
// read happens on the hot path.
func (s *mediaService) OpenRange(ctx context.Context, m *model.Media, start, end int64) (io.ReadCloser, error) {
	if m == nil || m.StoragePath == "" {
		return nil, ErrIDRequired
	}
	return s.store.GetRange(ctx, m.StoragePath, start, end)
}
