package models

import (
	"time"

	"gorm.io/gorm"
)

// StoredScore is a score source saved by a user, with the shape of the
// parsed result cached for listings
type StoredScore struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PublicID string  `gorm:"uniqueIndex;not null;size:36" json:"id"`
	OwnerID  string  `gorm:"not null;index" json:"owner_id"`
	Title    string  `gorm:"size:200" json:"title"`
	Source   string  `gorm:"type:text;not null" json:"source"`
	Bars     int     `gorm:"not null" json:"bars"`
	Beats    int     `gorm:"not null" json:"beats"`
	TotalMs  float64 `gorm:"not null" json:"total_ms"`
}

// ParseLog tracks every score submitted to the parse and render endpoints
type ParseLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	OwnerID    string    `gorm:"index" json:"owner_id"`
	RequestID  string    `gorm:"index" json:"request_id"`
	Success    bool      `gorm:"not null" json:"success"`
	ErrorKind  string    `gorm:"size:16" json:"error_kind,omitempty"`
	ErrorCode  string    `gorm:"size:32" json:"error_code,omitempty"`
	SourceSize int       `gorm:"not null" json:"source_size"`
	Bars       int       `gorm:"default:0" json:"bars"`
	Beats      int       `gorm:"default:0" json:"beats"`
	DurationUS int64     `gorm:"not null" json:"duration_us"`
}
