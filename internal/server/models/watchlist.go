package models

import "time"

// Watchlist is an owned, optionally public collection. Only the owner may
// mutate Name and IsPublic; IsPublic gates read access for non-owners.
type Watchlist struct {
	ID        string    `json:"listId"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"listName"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}
