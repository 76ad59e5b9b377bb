package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account record. PasswordHash always holds the bcrypt hash of the
// most recently set password; plaintext is never stored.
type User struct {
	ID           primitive.ObjectID
	Name         string
	Email        string
	PasswordHash string
	Role         string // "user" or "admin"
	IsVerified   bool

	// VerificationToken is present only while email verification is pending.
	// It is cleared exactly once, on successful verification.
	VerificationToken string

	// ResetPasswordToken and ResetPasswordExpires are set together by a
	// forgot-password request and cleared together when the password changes.
	ResetPasswordToken   string
	ResetPasswordExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
