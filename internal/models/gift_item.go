package models

import "time"

// GiftItem is a registry entry guests can claim. Claiming is monotonic in the
// guest-facing flow: unclaimed -> claimed, never back. The couple may release
// a claim from their dashboard.
type GiftItem struct {
	BaseModel

	WeddingID string `gorm:"type:uuid;not null;index" json:"wedding_id"`

	Name              string `gorm:"type:varchar(255);not null" json:"name"`
	Description       string `gorm:"type:text" json:"description,omitempty"`
	TargetAmountCents int64  `gorm:"default:0" json:"target_amount_cents"`

	// Payment details rendered as an EPC QR code for contribution gifts.
	PaymentIBAN string `gorm:"type:varchar(64)" json:"payment_iban,omitempty"`
	PaymentBIC  string `gorm:"type:varchar(16)" json:"payment_bic,omitempty"`

	IsClaimed bool       `gorm:"default:false;index" json:"is_claimed"`
	ClaimedBy string     `gorm:"type:varchar(255)" json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}
