package models

import "time"

// Broadcast lifecycle states. PENDING is the only cancellable state; SENT,
// CANCELLED and FAILED are terminal and never retried.
const (
	BroadcastPending   = "PENDING"
	BroadcastSent      = "SENT"
	BroadcastCancelled = "CANCELLED"
	BroadcastFailed    = "FAILED"
)

// BroadcastMessage is an email sent (or scheduled) to every guest of a wedding
// that has an email address on file.
type BroadcastMessage struct {
	BaseModel

	WeddingID string `gorm:"type:uuid;not null;index" json:"wedding_id"`

	Subject string `gorm:"type:varchar(255);not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`
	CTALink string `gorm:"type:text" json:"cta_link,omitempty"`

	Status       string     `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	ScheduledFor *time.Time `gorm:"index" json:"scheduled_for,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`

	RecipientCount int    `gorm:"default:0" json:"recipient_count"`
	FailureReason  string `gorm:"type:text" json:"failure_reason,omitempty"`
}

// IsTerminal reports whether the message reached a final state.
func (b *BroadcastMessage) IsTerminal() bool {
	return b.Status != BroadcastPending
}

// CanCancel reports whether the user may still cancel the message.
func (b *BroadcastMessage) CanCancel() bool {
	return b.Status == BroadcastPending
}
