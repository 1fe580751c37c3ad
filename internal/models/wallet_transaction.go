package models

import "time"

// WalletTransaction is an append-only ledger entry. Rows are created inside
// the same DB transaction as the balance mutation they describe and are
// never updated or deleted.
type WalletTransaction struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;index" json:"reference"`

	UserID uint `gorm:"index" json:"user_id"`

	Type   string `gorm:"size:30;not null" json:"type"`
	Amount int64  `json:"amount"` // signed, whole PKR

	AppointmentID *uint  `json:"appointment_id"`
	Description   string `gorm:"size:255" json:"description"`

	CreatedAt time.Time `json:"created_at"`
}
