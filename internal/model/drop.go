package model

import (
	"time"
)

// DateLayout is the day-granularity format used for drop dates, both in the
// database and on the wire. No timezone is stored.
const DateLayout = "2006-01-02"

// Drop represents a single day's published content for one tenant.
// At most one Drop exists per (tenant_id, date); the composite unique index
// backs the conditional upsert used by publish.
type Drop struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_date"`
	Date         string    `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_tenant_date"`
	Title        string    `json:"title" gorm:"type:varchar(255)"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	VideoURL     string    `json:"video_url" gorm:"type:text"` // embeddable-player URL, not validated server-side
	ResourceLink string    `json:"link" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
