// Package models holds the persistence-level records shared by repositories
// and services.
package models

import "time"

// Friend is one edge of the undirected friendship relation, embedded
// redundantly in both parties' records.
type Friend struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// User is the stored identity record. PasswordHash is never serialized.
type User struct {
	ID                 string    `json:"userId"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	IsAdmin            bool      `json:"isAdmin"`
	IsBanned           bool      `json:"isBanned"`
	ProfilePicture     string    `json:"profilePicture"`
	Biography          string    `json:"biography"`
	PreferredGenres    []string  `json:"preferredGenres"`
	Friends            []Friend  `json:"friends"`
	RecentlyAdded      []string  `json:"recentlyAdded,omitempty"`
	CollaborativeLists []string  `json:"collaborativeLists,omitempty"`
	LikedLists         []string  `json:"likedLists,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// FriendSummary is the reduced projection returned by the friends listing.
type FriendSummary struct {
	UserID          string   `json:"userId"`
	Username        string   `json:"username"`
	ProfilePicture  string   `json:"profilePicture"`
	Biography       string   `json:"biography"`
	PreferredGenres []string `json:"preferredGenres"`
}

// HasFriend reports whether the user's friend set already contains userID.
func (u *User) HasFriend(userID string) bool {
	for _, f := range u.Friends {
		if f.UserID == userID {
			return true
		}
	}
	return false
}
