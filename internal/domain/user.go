package domain

import "time"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                  // Primary key
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`                            // Unique, lower-cased email
	FullName  string    `gorm:"size:255;not null" json:"full_name"`                                    // Display name
	Password  string    `gorm:"not null" json:"-"`                                                     // Hashed password
	Role      string    `gorm:"size:16;default:user" json:"role"`                                      // Role: user or admin
	Wallet    *Wallet   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"wallet,omitempty"` // One-to-one relationship with Wallet
	CreatedAt time.Time `json:"created_at"`                                                            // Registration time
}

// Principal is the caller resolved once per inbound request. It is passed
// explicitly to every ledger and history operation.
type Principal struct {
	UserID uint
	Email  string
	Name   string
}

// PrincipalOf builds the principal for a stored user.
func PrincipalOf(u *User) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Name: u.FullName}
}
