package models

import "time"

// Roles. Customers and admins carry no barbershop.
const (
	RoleOwner    = "owner"
	RoleBarber   = "barber"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	BarbershopID *uint       `json:"barbershop_id"`
	Barbershop   *Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barbershop,omitempty"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'owner'" json:"role"`
	Active       bool   `gorm:"default:true" json:"active"`

	// Wallet balances in whole PKR and loyalty coins. Mutated only through
	// the wallet repository's transactions.
	WalletBalance int64 `gorm:"default:0" json:"wallet_balance"`
	Coins         int64 `gorm:"default:0" json:"coins"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
