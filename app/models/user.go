package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Address is the optional saved delivery address on a user profile.
type Address struct {
	Address        string `bson:"address" json:"address"`
	AdditionalInfo string `bson:"additionalInfo,omitempty" json:"additionalInfo,omitempty"`
}

// User is an account document. The login key is phoneNumber; the store does
// NOT enforce uniqueness on it, so duplicate accounts per phone number are
// possible and signin resolves to whichever document the store returns
// first. Kept as-is deliberately — see DESIGN.md.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PhoneNumber   string             `bson:"phoneNumber" json:"phoneNumber"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Password      string             `bson:"password" json:"-"` // bcrypt hash of the 4-digit PIN
	Role          string             `bson:"role" json:"role"`
	EmailVerified bool               `bson:"emailVerified,omitempty" json:"emailVerified,omitempty"`
	VerifyToken   string             `bson:"verifyToken,omitempty" json:"-"`
	Address       *Address           `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user may reach /api/admin routes.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Public returns a copy shaped for API responses (no credential fields).
func (u User) Public() User {
	u.Password = ""
	u.VerifyToken = ""
	return u
}
