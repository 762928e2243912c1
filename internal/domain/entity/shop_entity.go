package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shop is a seller account.
type Shop struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password,omitempty" json:"-"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Address          string             `bson:"address" json:"address"`
	PhoneNumber      string             `bson:"phoneNumber" json:"phoneNumber"`
	Role             string             `bson:"role" json:"role"`
	Avatar           Image              `bson:"avatar" json:"avatar"`
	ZipCode          string             `bson:"zipCode" json:"zipCode"`
	IsActivated      bool               `bson:"isActivated" json:"isActivated"`
	WithdrawMethod   map[string]any     `bson:"withdrawMethod" json:"withdrawMethod"`
	AvailableBalance float64            `bson:"availableBalance" json:"availableBalance"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// PendingShop is the candidate shop carried inside an activation token.
type PendingShop struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	Avatar       Image  `json:"avatar"`
	Address      string `json:"address"`
	PhoneNumber  string `json:"phoneNumber"`
	ZipCode      string `json:"zipCode"`
}

// ShopSnapshot is a copy of a shop's public fields stored on products.
// It is taken once at write time and never refreshed, so it can drift
// from the live Shop document.
type ShopSnapshot struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Avatar    Image              `bson:"avatar" json:"avatar"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Snapshot returns the denormalized view of the shop.
func (s *Shop) Snapshot() ShopSnapshot {
	return ShopSnapshot{ID: s.ID, Name: s.Name, Avatar: s.Avatar, CreatedAt: s.CreatedAt}
}
