package models

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	FirstName        string    `gorm:"size:64;index"                 json:"first_name"`
	LastName         string    `gorm:"size:64;index"                 json:"last_name"`
	Email            string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"size:128;not null"             json:"-"`
	Role             string    `gorm:"not null;default:customer"     json:"role"`
	RegisteredOn     time.Time `json:"registered_on"`
	SquareCustomerID string    `gorm:"size:64"                       json:"-"`
}

// TokenRecord is one row per issued JWT, keyed by the token's jti claim.
// The row carries no user reference: its only job is the jti -> revoked
// lookup, the account identity lives inside the token itself.
type TokenRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	JTI       string    `gorm:"size:36;uniqueIndex;not null" json:"jti"`
	TokenType string    `gorm:"size:10;not null"             json:"token_type"`
	Revoked   bool      `gorm:"not null;default:false"       json:"revoked"`
	ExpiresAt time.Time `gorm:"not null"                     json:"expires_at"`
}

type Feedback struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:64;not null"         json:"name"`
	Email     string    `gorm:"size:120;not null"        json:"email"`
	Text      string    `gorm:"not null"                 json:"text"`
	Resolved  bool      `gorm:"not null;default:false"   json:"resolved"`
	Timestamp time.Time `json:"timestamp"`
}
