package models

import "time"

// Photo moderation states.
const (
	PhotoPending  = "PENDING"
	PhotoApproved = "APPROVED"
	PhotoRejected = "REJECTED"
)

// Photo is guest-shared media awaiting couple moderation. Only the storage key
// is persisted; the blob itself lives in external object storage.
type Photo struct {
	BaseModel

	WeddingID string `gorm:"type:uuid;not null;index" json:"wedding_id"`

	UploaderName string `gorm:"type:varchar(255)" json:"uploader_name,omitempty"`
	StorageKey   string `gorm:"type:varchar(512);not null" json:"storage_key"`
	Caption      string `gorm:"type:varchar(500)" json:"caption,omitempty"`

	Status     string     `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}
