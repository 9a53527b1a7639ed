package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ats-ng/scmc-video-upload-api/internal/model"
	"github.com/ats-ng/scmc-video-upload-api/internal/repository"
	repoMocks "github.com/ats-ng/scmc-video-upload-api/internal/repository/mocks"
	"github.com/ats-ng/scmc-video-upload-api/internal/storage"
	storeMocks "github.com/ats-ng/scmc-video-upload-api/internal/storage/mocks"
)

func TestMediaService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		originalFilename string
		contentType      string
		size             int64
		setupMocks       func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			originalFilename: "clip.mp4",
			contentType:      "video/mp4",
			size:             11,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader {
				r := strings.NewReader("hello world")
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "media/") && strings.HasSuffix(key, ".mp4")
				}), r, storage.PutObjectOptions{
					Size:        11,
					ContentType: "video/mp4",
					Metadata:    map[string]string{"original-filename": "clip.mp4"},
				}).Return(storage.ObjectInfo{Size: 11, ContentType: "video/mp4"}, nil)

				mStore.On("Stat", ctx, mock.Anything).
					Return(storage.ObjectInfo{Size: 11, ContentType: "video/mp4"}, nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(m *model.Media) bool {
					return m.Filename == "clip.mp4" &&
						m.MediaType == model.MediaTypeVideo &&
						m.Size == 11 &&
						strings.HasPrefix(m.StoragePath, "media/")
				})).Return(&model.Media{ID: "gen-id"}, nil)

				return r
			},
			wantErr: nil,
		},
		{
			name:             "validation error - nil reader",
			originalFilename: "clip.mp4",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:             "validation error - extension not allowed",
			originalFilename: "notes.txt",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader {
				return strings.NewReader("hello")
			},
			wantErr: ErrTypeNotAllowed,
		},
		{
			name:             "storage error",
			originalFilename: "clip.mp4",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return r
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:             "stat error with successful rollback",
			originalFilename: "clip.mp4",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Size: 5}, nil)
				mStore.On("Stat", ctx, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("stat fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return r
			},
			wantErrMsg: "stat after upload failed: stat fail",
		},
		{
			name:             "repository error with successful rollback",
			originalFilename: "clip.mp4",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Size: 5}, nil)
				mStore.On("Stat", ctx, mock.Anything).
					Return(storage.ObjectInfo{Size: 5}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "repository error with failed rollback",
			originalFilename: "clip.mp4",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockMediaRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Size: 5}, nil)
				mStore.On("Stat", ctx, mock.Anything).
					Return(storage.ObjectInfo{Size: 5}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockMediaRepository)
			svc := NewMediaService(mStore, mRepo)

			r := tt.setupMocks(mStore, mRepo)

			got, err := svc.Upload(ctx, r, tt.originalFilename, tt.contentType, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, got)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestMediaService_UploadContentTypeFallback(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockMediaRepository)
	svc := NewMediaService(mStore, mRepo)

	r := strings.NewReader("data")
	mStore.On("Put", ctx, mock.Anything, r, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
		return strings.HasPrefix(opt.ContentType, "video/")
	})).Return(storage.ObjectInfo{Size: 4}, nil)
	mStore.On("Stat", ctx, mock.Anything).Return(storage.ObjectInfo{Size: 4}, nil)
	mRepo.On("Create", ctx, mock.MatchedBy(func(m *model.Media) bool {
		return m.MediaType == model.MediaTypeVideo
	})).Return(&model.Media{ID: "gen-id"}, nil)

	// No declared content type: inferred from the .mp4 extension.
	_, err := svc.Upload(ctx, r, "movie.mp4", "", 4)
	assert.NoError(t, err)
	mStore.AssertExpectations(t)
}

func TestMediaService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockMediaRepository)
		svc := NewMediaService(mStore, mRepo)

		want := &model.Media{ID: "id-1", Filename: "clip.mp4"}
		mRepo.On("FindByID", ctx, "id-1").Return(want, nil)

		got, err := svc.Get(ctx, "id-1")
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockMediaRepository)
		svc := NewMediaService(mStore, mRepo)

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		got, err := svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewMediaService(new(storeMocks.MockStorage), new(repoMocks.MockMediaRepository))
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestMediaService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes object before descriptor", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockMediaRepository)
		svc := NewMediaService(mStore, mRepo)

		m := &model.Media{ID: "id-1", StoragePath: "media/id-1.mp4"}
		mRepo.On("FindByID", ctx, "id-1").Return(m, nil)
		mStore.On("Delete", ctx, "media/id-1.mp4").Return(nil)
		mRepo.On("Delete", ctx, "id-1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "id-1"))
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("keeps descriptor when object delete fails", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockMediaRepository)
		svc := NewMediaService(mStore, mRepo)

		m := &model.Media{ID: "id-1", StoragePath: "media/id-1.mp4"}
		mRepo.On("FindByID", ctx, "id-1").Return(m, nil)
		mStore.On("Delete", ctx, "media/id-1.mp4").Return(errors.New("store down"))

		err := svc.Delete(ctx, "id-1")
		assert.Error(t, err)
		mRepo.AssertNotCalled(t, "Delete", ctx, "id-1")
	})

	t.Run("not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockMediaRepository)
		svc := NewMediaService(mStore, mRepo)

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
	})
}

func TestMediaService_List(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockMediaRepository)
	svc := NewMediaService(mStore, mRepo)

	mRepo.On("List", ctx, repository.PageQuery{Limit: 100, Offset: 0}).
		Return(&repository.PageResult[model.Media]{
			Items: []model.Media{{ID: "id-1"}},
			Total: 1,
		}, nil)

	// Non-positive limit falls back to the default page size.
	res, err := svc.List(ctx, 0, -5)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
}

func TestMediaService_OpenRange(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockMediaRepository)
	svc := NewMediaService(mStore, mRepo)

	m := &model.Media{ID: "id-1", StoragePath: "media/id-1.mp4", Size: 100}
	rc := io.NopCloser(strings.NewReader("bytes"))
	mStore.On("GetRange", ctx, "media/id-1.mp4", int64(10), int64(19)).Return(rc, nil)

	got, err := svc.OpenRange(ctx, m, 10, 19)
	assert.NoError(t, err)
	assert.Equal(t, rc, got)

	_, err = svc.OpenRange(ctx, nil, 0, 0)
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        model.MediaType
	}{
		{"video/mp4", "clip.mp4", model.MediaTypeVideo},
		{"audio/mpeg", "song.mp3", model.MediaTypeAudio},
		{"image/png", "pic.png", model.MediaTypeImage},
		// Content type is authoritative when it disagrees with the extension.
		{"audio/mpeg", "clip.mp4", model.MediaTypeAudio},
		// Generic content type falls back to the extension table.
		{"application/octet-stream", "clip.webm", model.MediaTypeVideo},
		{"application/octet-stream", "track.flac", model.MediaTypeAudio},
		{"", "photo.JPG", model.MediaTypeImage},
		{"application/octet-stream", "data.bin", model.MediaTypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyMedia(tt.contentType, tt.filename),
			"contentType=%q filename=%q", tt.contentType, tt.filename)
	}
}

func TestIsAllowedFile(t *testing.T) {
	assert.True(t, isAllowedFile("clip.mp4"))
	assert.True(t, isAllowedFile("CLIP.MP4"))
	assert.True(t, isAllowedFile("song.flac"))
	assert.False(t, isAllowedFile("document.pdf"))
	assert.False(t, isAllowedFile("noextension"))
}
