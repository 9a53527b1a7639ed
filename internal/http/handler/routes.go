package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ats-ng/scmc-video-upload-api/internal/model"
	"github.com/ats-ng/scmc-video-upload-api/internal/service"
	"github.com/ats-ng/scmc-video-upload-api/internal/stream"
)

// uploadResponse is returned by the upload endpoint.
type uploadResponse struct {
	Success     bool   `json:"success"`
	MediaID     string `json:"media_id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	StreamURL   string `json:"stream_url"`
}

// mediaResponse is a media descriptor plus its streaming endpoint.
type mediaResponse struct {
	model.Media
	StreamURL string `json:"stream_url"`
}

type listResponse struct {
	Total int             `json:"total"`
	Media []mediaResponse `json:"media"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func toMediaResponse(m model.Media) mediaResponse {
	return mediaResponse{Media: m, StreamURL: "/stream/" + m.ID}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// chunkBytes tunes the streaming read chunk size; zero means the default.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.MediaService, chunkBytes int) {
	app.Get("/", Root())
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/upload", UploadMedia(svc))
	app.Get("/stream/:id", StreamMedia(svc, chunkBytes))

	// /media/list must be registered before the :id route.
	app.Get("/media/list", ListMedia(svc))
	app.Get("/media/:id", GetMedia(svc))
	app.Delete("/media/:id", DeleteMedia(svc))
}

// Root returns the service banner with the available endpoints.
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Media Upload & Streaming API",
			"endpoints": []string{
				"/upload",
				"/stream/{media_id}",
				"/media/{media_id}",
				"/media/list",
				"/media/{media_id} [DELETE]",
			},
		})
	}
}

// HealthCheck verifies DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadMedia accepts a multipart upload (field name: file) and stores it.
//
// @Summary Upload a media file
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "media file"
// @Success 200 {object} uploadResponse
// @Router /upload [post]
func UploadMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		m, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrTypeNotAllowed) {
				return writeError(c, fiber.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "file type not allowed")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(uploadResponse{
			Success:     true,
			MediaID:     m.ID,
			Filename:    m.Filename,
			Size:        m.Size,
			ContentType: m.ContentType,
			StreamURL:   "/stream/" + m.ID,
		})
	}
}

// StreamMedia serves media bytes with HTTP range support (200/206/416) and
// inline-only response headers.
//
// @Summary Stream a media file
// @Produce octet-stream
// @Param id path string true "media id"
// @Param Range header string false "byte range, e.g. bytes=0-1023"
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Router /stream/{id} [get]
func StreamMedia(svc service.MediaService, chunkBytes int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		m, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "media not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		opt := stream.Options{
			ContentType: m.ContentType,
			Size:        m.Size,
			ChunkBytes:  chunkBytes,
		}
		err = stream.Serve(c, opt, c.Get(fiber.HeaderRange), func(start, end int64) (io.ReadCloser, error) {
			return svc.OpenRange(c.UserContext(), m, start, end)
		})
		if err != nil {
			// The object range could not be opened; nothing was written yet.
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "media backend unavailable")
		}
		return nil
	}
}

// GetMedia returns a media descriptor by ID.
//
// @Summary Get media metadata
// @Produce json
// @Param id path string true "media id"
// @Success 200 {object} mediaResponse
// @Router /media/{id} [get]
func GetMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		m, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "media not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(toMediaResponse(*m))
	}
}

// ListMedia returns media descriptors in insertion order.
//
// @Summary List media
// @Produce json
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} listResponse
// @Router /media/list [get]
func ListMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "100"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		media := make([]mediaResponse, 0, len(res.Items))
		for _, m := range res.Items {
			media = append(media, toMediaResponse(m))
		}
		return c.JSON(listResponse{Total: res.Total, Media: media})
	}
}

// DeleteMedia removes a media object and its descriptor.
//
// @Summary Delete media
// @Produce json
// @Param id path string true "media id"
// @Success 200 {object} deleteResponse
// @Router /media/{id} [delete]
func DeleteMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "media not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(deleteResponse{Success: true, Message: "media deleted successfully"})
	}
}
