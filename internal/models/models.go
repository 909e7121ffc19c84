package models

import "time"

// RatingMin and RatingMax bound garment and outfit ratings. 0 means unrated.
const (
	RatingMin = 0
	RatingMax = 5
)

// User represents a locally cached user profile. The password hash never
// leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	PhotoURL     *string   `json:"photo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Garment represents a single clothing item owned by a user.
type Garment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory *string   `json:"subcategory,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Season      *string   `json:"season,omitempty"`
	ImageURL    string    `json:"image_url"`
	Favorite    bool      `json:"favorite"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Outfit represents a named collection of garments with a derived rating.
// GarmentIDs holds the referenced garment ids in their serialized form; use
// DecodeGarmentIDs to read them.
type Outfit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	GarmentIDs  string    `json:"garment_ids"`
	Occasion    *string   `json:"occasion,omitempty"`
	Season      *string   `json:"season,omitempty"`
	Rating      int       `json:"rating"`
	Favorite    bool      `json:"favorite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClampRating forces a rating into [RatingMin, RatingMax]. Rating input only
// ever comes from a bounded UI control, so this is the whole validation.
func ClampRating(rating int) int {
	if rating < RatingMin {
		return RatingMin
	}
	if rating > RatingMax {
		return RatingMax
	}
	return rating
}
