package models

import "time"

// Model is the interface all persisted entities implement.
type Model interface {
	TableName() string
	PrimaryKey() string
}

// Repository defines generic CRUD operations for a persisted entity.
type Repository[T Model] interface {
	Create(entity T) (T, error)
	Get(id string) (T, error)
	List() ([]T, error)
	Update(entity T) (T, error)
	Delete(id string) error
}

// Timestamps holds the audit columns shared by persisted entities.
type Timestamps struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
