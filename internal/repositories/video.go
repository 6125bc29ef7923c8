package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/shared"
)

// VideoRepository persists cached video records.
type VideoRepository struct {
	db *sql.DB
}

var _ models.Repository[models.CachedVideo] = (*VideoRepository)(nil)

// NewVideoRepository creates a repository over an open database.
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, sequence, remote_id, name, upload_path, processed_path,
	thumbnail_url, status, created_at, updated_at, deleted_at`

// Create inserts a new cache row, assigning its id and sequence.
func (r *VideoRepository) Create(video models.CachedVideo) (models.CachedVideo, error) {
	sequence, err := NextSequence(r.db)
	if err != nil {
		return models.CachedVideo{}, err
	}

	now := time.Now().UTC()
	video.ID = shared.GenerateID()
	video.Sequence = sequence
	video.CreatedAt = now
	video.UpdatedAt = now

	_, err = r.db.Exec(`
		INSERT INTO videos (id, sequence, remote_id, name, upload_path, processed_path,
			thumbnail_url, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.Sequence, video.RemoteID, video.Name, video.UploadPath,
		video.ProcessedPath, video.ThumbnailURL, video.Status, video.CreatedAt, video.UpdatedAt,
	)
	if err != nil {
		return models.CachedVideo{}, fmt.Errorf("failed to insert video: %w", err)
	}
	return video, nil
}

// Get fetches a cache row by its local id. Soft-deleted rows are invisible.
func (r *VideoRepository) Get(id string) (models.CachedVideo, error) {
	row := r.db.QueryRow(
		"SELECT "+videoColumns+" FROM videos WHERE id = ? AND deleted_at IS NULL", id)
	return scanVideo(row)
}

// GetByRemoteID fetches a cache row by the backend's record id.
func (r *VideoRepository) GetByRemoteID(remoteID int64) (models.CachedVideo, error) {
	row := r.db.QueryRow(
		"SELECT "+videoColumns+" FROM videos WHERE remote_id = ? AND deleted_at IS NULL", remoteID)
	return scanVideo(row)
}

// List returns every live cache row in sequence order, newest first.
func (r *VideoRepository) List() ([]models.CachedVideo, error) {
	rows, err := r.db.Query(
		"SELECT " + videoColumns + " FROM videos WHERE deleted_at IS NULL ORDER BY sequence DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []models.CachedVideo
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// Update rewrites a cache row's mutable fields.
func (r *VideoRepository) Update(video models.CachedVideo) (models.CachedVideo, error) {
	video.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE videos
		SET name = ?, upload_path = ?, processed_path = ?, thumbnail_url = ?,
			status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		video.Name, video.UploadPath, video.ProcessedPath, video.ThumbnailURL,
		video.Status, video.UpdatedAt, video.ID,
	)
	if err != nil {
		return models.CachedVideo{}, fmt.Errorf("failed to update video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.CachedVideo{}, err
	}
	if affected == 0 {
		return models.CachedVideo{}, shared.ErrNotFound
	}
	return video, nil
}

// Delete soft-deletes a cache row.
func (r *VideoRepository) Delete(id string) error {
	result, err := r.db.Exec(
		"UPDATE videos SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SyncFromBackend reconciles the cache with the backend's collection. Known
// records are updated in place, new records inserted, and records the
// backend no longer reports are soft-deleted.
func (r *VideoRepository) SyncFromBackend(records []models.VideoRecord) error {
	seen := make(map[int64]bool, len(records))

	for _, record := range records {
		seen[record.ID] = true

		existing, err := r.GetByRemoteID(record.ID)
		switch {
		case err == nil:
			existing.Name = record.Name
			existing.UploadPath = record.UploadPath
			existing.ProcessedPath = record.ProcessedPath
			existing.ThumbnailURL = record.ThumbnailURL
			existing.Status = record.Status
			if _, err := r.Update(existing); err != nil {
				return err
			}
		case errors.Is(err, shared.ErrNotFound):
			if _, err := r.Create(models.NewCachedVideo(record)); err != nil {
				return err
			}
		default:
			return err
		}
	}

	cached, err := r.List()
	if err != nil {
		return err
	}
	for _, video := range cached {
		if !seen[video.RemoteID] {
			if err := r.Delete(video.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (models.CachedVideo, error) {
	var video models.CachedVideo
	var deletedAt sql.NullTime
	err := row.Scan(
		&video.ID, &video.Sequence, &video.RemoteID, &video.Name, &video.UploadPath,
		&video.ProcessedPath, &video.ThumbnailURL, &video.Status,
		&video.CreatedAt, &video.UpdatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedVideo{}, shared.ErrNotFound
	}
	if err != nil {
		return models.CachedVideo{}, fmt.Errorf("failed to scan video: %w", err)
	}
	if deletedAt.Valid {
		video.DeletedAt = &deletedAt.Time
	}
	return video, nil
}
