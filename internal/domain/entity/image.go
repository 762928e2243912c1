package entity

// Image is the opaque-id/URL pair returned by the media host.
type Image struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// IsZero reports whether no asset is referenced.
func (i Image) IsZero() bool { return i.PublicID == "" }
