package models

// CachedVideo is a locally persisted copy of a backend video record, kept in
// the sqlite cache so the library can be browsed offline.
type CachedVideo struct {
	ID            string `json:"id"`
	Sequence      int64  `json:"sequence"`
	RemoteID      int64  `json:"remote_id"`
	Name          string `json:"name"`
	UploadPath    string `json:"upload_path"`
	ProcessedPath string `json:"processed_path"`
	ThumbnailURL  string `json:"thumbnail_url"`
	Status        string `json:"status"`
	Timestamps
}

func (CachedVideo) TableName() string {
	return "videos"
}

func (CachedVideo) PrimaryKey() string {
	return "id"
}

// Record converts the cached row back to the wire-level video record.
func (c CachedVideo) Record() VideoRecord {
	return VideoRecord{
		ID:            c.RemoteID,
		Name:          c.Name,
		UploadPath:    c.UploadPath,
		ProcessedPath: c.ProcessedPath,
		ThumbnailURL:  c.ThumbnailURL,
		Status:        c.Status,
	}
}

// NewCachedVideo builds a cache row from a backend record. The caller assigns
// the local id and sequence.
func NewCachedVideo(record VideoRecord) CachedVideo {
	return CachedVideo{
		RemoteID:      record.ID,
		Name:          record.Name,
		UploadPath:    record.UploadPath,
		ProcessedPath: record.ProcessedPath,
		ThumbnailURL:  record.ThumbnailURL,
		Status:        record.Status,
	}
}
