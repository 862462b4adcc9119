package model

import "time"

// UserProfile holds the display fields of a signed-in user.
type UserProfile struct {
	UserID    string           `json:"userId"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Address   *ShippingAddress `json:"address,omitempty"`
	IsAdmin   bool             `json:"isAdmin"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ProfileRequest is the payload for saving a profile.
type ProfileRequest struct {
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Phone   string           `json:"phone,omitempty"`
	Address *ShippingAddress `json:"address,omitempty"`
}

// Identity is the caller resolved from the identity provider token.
// A nil *Identity means an anonymous shopper.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// ContactRequest is the payload of the contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
