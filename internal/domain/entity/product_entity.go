package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImageCount is the exact number of images a product carries.
const ProductImageCount = 5

// Beneficiary categories
const (
	BeneficiaryChildren  = "children"
	BeneficiaryWomen     = "women"
	BeneficiaryElderly   = "elderly"
	BeneficiaryCommunity = "community"
)

// Beneficiaries lists the accepted beneficiary categories.
var Beneficiaries = []string{BeneficiaryChildren, BeneficiaryWomen, BeneficiaryElderly, BeneficiaryCommunity}

// IsBeneficiary reports whether v is an accepted beneficiary category.
func IsBeneficiary(v string) bool {
	for _, b := range Beneficiaries {
		if b == v {
			return true
		}
	}
	return false
}

// Product is a catalog item owned by a shop.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Tags          string             `bson:"tags,omitempty" json:"tags,omitempty"`
	OriginalPrice float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	DiscountPrice float64            `bson:"discountPrice" json:"discountPrice"`
	Stock         int                `bson:"stock" json:"stock"`
	Images        []Image            `bson:"images" json:"images"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
	Ratings       float64            `bson:"ratings" json:"ratings"`
	ShopID        primitive.ObjectID `bson:"shopId" json:"shopId"`
	Shop          ShopSnapshot       `bson:"shop" json:"shop"`
	SoldOut       int                `bson:"sold_out" json:"sold_out"`
	Beneficiary   string             `bson:"beneficiary" json:"beneficiary"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// ReviewerSnapshot is the reviewer's public profile at the time of review.
// Like ShopSnapshot it is never refreshed.
type ReviewerSnapshot struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Name   string             `bson:"name" json:"name"`
	Avatar Image              `bson:"avatar" json:"avatar"`
}

// Review is a single rating left by a user on a product.
type Review struct {
	User      ReviewerSnapshot   `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UpsertReview replaces the review left by the same user, or appends a new
// one, then recomputes the aggregate rating.
func (p *Product) UpsertReview(r Review) {
	replaced := false
	for i := range p.Reviews {
		if p.Reviews[i].User.ID == r.User.ID {
			p.Reviews[i].Rating = r.Rating
			p.Reviews[i].Comment = r.Comment
			p.Reviews[i].User = r.User
			replaced = true
			break
		}
	}
	if !replaced {
		p.Reviews = append(p.Reviews, r)
	}
	p.Ratings = averageRating(p.Reviews)
}

func averageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
