package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a buyer account. Password holds the bcrypt hash and is only loaded
// by credential checks.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"`
	PhoneNumber string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Addresses   []Address          `bson:"addresses" json:"addresses"`
	Role        string             `bson:"role" json:"role"`
	Avatar      Image              `bson:"avatar" json:"avatar"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Address is a saved delivery address. AddressType is unique per user.
type Address struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Country     string             `bson:"country" json:"country"`
	City        string             `bson:"city" json:"city"`
	Address1    string             `bson:"address1" json:"address1"`
	Address2    string             `bson:"address2" json:"address2"`
	ZipCode     string             `bson:"zipCode" json:"zipCode"`
	AddressType string             `bson:"addressType" json:"addressType"`
}

// PendingUser is the candidate record carried inside an activation token
// until the owner of the email confirms it.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	Avatar       Image  `json:"avatar"`
}

// IsAdmin reports whether the user holds the Admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// AddressByType returns the index of the address with the given type, or -1.
func (u *User) AddressByType(t string) int {
	for i, a := range u.Addresses {
		if a.AddressType == t {
			return i
		}
	}
	return -1
}
