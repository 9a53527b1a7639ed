package postgres

import (
	"context"
	"database/sql"

	"github.com/ats-ng/scmc-video-upload-api/internal/model"
	"github.com/ats-ng/scmc-video-upload-api/internal/repository"
)

// MediaPostgres is a PostgreSQL implementation of repository.MediaRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type MediaPostgres struct {
	db *sql.DB
}

// NewMediaPostgres creates a new MediaPostgres repository.
func NewMediaPostgres(db *sql.DB) *MediaPostgres {
	return &MediaPostgres{db: db}
}

var _ repository.MediaRepository = (*MediaPostgres)(nil)

// Create inserts a new media row and returns the stored record.
func (r *MediaPostgres) Create(ctx context.Context, m *model.Media) (*model.Media, error) {
	const q = `
		INSERT INTO media (id, filename, storage_path, size, content_type, media_type, upload_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, filename, storage_path, size, content_type, media_type, upload_time
	`
	row := r.db.QueryRowContext(ctx, q,
		m.ID,
		m.Filename,
		m.StoragePath,
		m.Size,
		m.ContentType,
		m.MediaType,
		m.UploadTime,
	)
	var out model.Media
	if err := row.Scan(
		&out.ID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ContentType,
		&out.MediaType,
		&out.UploadTime,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single media descriptor by its ID.
func (r *MediaPostgres) FindByID(ctx context.Context, id string) (*model.Media, error) {
	const q = `
		SELECT id, filename, storage_path, size, content_type, media_type, upload_time
		FROM media
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var m model.Media
	if err := row.Scan(
		&m.ID,
		&m.Filename,
		&m.StoragePath,
		&m.Size,
		&m.ContentType,
		&m.MediaType,
		&m.UploadTime,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns media rows in insertion order using LIMIT/OFFSET pagination
// and a total count. Insertion order is upload_time ASC with id ASC as a
// stable tie-breaker.
func (r *MediaPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Media], error) {
	const qCount = `SELECT COUNT(*) FROM media`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, filename, storage_path, size, content_type, media_type, upload_time
		FROM media
		ORDER BY upload_time ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Media, 0)
	for rows.Next() {
		var m model.Media
		if err := rows.Scan(
			&m.ID,
			&m.Filename,
			&m.StoragePath,
			&m.Size,
			&m.ContentType,
			&m.MediaType,
			&m.UploadTime,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Media]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a media row by ID. It does not return an error if the row does not exist;
// existence checks belong to the service layer.
func (r *MediaPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM media WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
