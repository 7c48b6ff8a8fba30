package model

import (
	"strings"
	"time"
)

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a game participant
type Player struct {
	ID          PlayerID  `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Label returns the name shown to other players.
// Falls back to the username when no display name was given.
func (p *Player) Label() string {
	if strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	return p.Username
}

// NewPlayer holds the caller-supplied fields for creating a player
type NewPlayer struct {
	Username    string
	DisplayName string
}

// Validate trims the input and checks that a username is present
func (n NewPlayer) Validate() (NewPlayer, error) {
	n.Username = strings.TrimSpace(n.Username)
	n.DisplayName = strings.TrimSpace(n.DisplayName)
	if n.Username == "" {
		return n, ErrUsernameRequired
	}
	return n, nil
}
