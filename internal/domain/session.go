package domain

import "time"

// Session is one remote inspection session with its own view over the
// loaded frames.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Commands  int       `json:"commands"`
	View      View      `json:"view"`
}
