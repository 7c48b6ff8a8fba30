package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoomID uniquely identifies a room
type RoomID string

// RoomStatus is the externally visible lifecycle state of a room
type RoomStatus string

const (
	RoomStatusWaiting       RoomStatus = "waiting"
	RoomStatusRolesAssigned RoomStatus = "roles_assigned"
	// RoomStatusGuessSubmitted is part of the published enumeration but is never
	// stored: a guess is resolved in the same transition that records it.
	RoomStatusGuessSubmitted RoomStatus = "guess_submitted"
	RoomStatusResult         RoomStatus = "result"
)

// RoomMember is one entry of the roster
type RoomMember struct {
	PlayerID PlayerID  `json:"player_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Guess is the Mantri's accusation
type Guess struct {
	By      PlayerID `json:"by"`
	Guessed PlayerID `json:"guessed"`
}

// RoundResult is the scoring outcome of a resolved guess
type RoundResult struct {
	Correct bool             `json:"correct"`
	Note    string           `json:"note"`
	Points  map[PlayerID]int `json:"points"`
}

// Clone returns an independent copy
func (r RoundResult) Clone() RoundResult {
	points := make(map[PlayerID]int, len(r.Points))
	for pid, p := range r.Points {
		points[pid] = p
	}
	r.Points = points
	return r
}

// Phase is the tagged lifecycle variant of a room. Only the variants below
// implement it; data that exists in a later phase is unreachable from an
// earlier one.
type Phase interface {
	Status() RoomStatus
	isPhase()
}

// WaitingPhase: the roster is still filling up
type WaitingPhase struct{}

// RolesAssignedPhase: roles are dealt and the Mantri has not guessed yet
type RolesAssignedPhase struct {
	Roles Roles
}

// ResolvedPhase: the guess is recorded and scored. Terminal.
type ResolvedPhase struct {
	Roles  Roles
	Guess  Guess
	Result RoundResult
}

func (WaitingPhase) Status() RoomStatus       { return RoomStatusWaiting }
func (RolesAssignedPhase) Status() RoomStatus { return RoomStatusRolesAssigned }
func (ResolvedPhase) Status() RoomStatus      { return RoomStatusResult }

func (WaitingPhase) isPhase()       {}
func (RolesAssignedPhase) isPhase() {}
func (ResolvedPhase) isPhase()      {}

// Room is the aggregate root of a single game round
type Room struct {
	ID        RoomID
	CreatorID PlayerID
	Members   []RoomMember // join order
	Phase     Phase
	Round     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status returns the lifecycle status derived from the phase
func (r *Room) Status() RoomStatus {
	if r.Phase == nil {
		return RoomStatusWaiting
	}
	return r.Phase.Status()
}

// AssignedRoles returns the role mapping once roles have been dealt
func (r *Room) AssignedRoles() (Roles, bool) {
	switch p := r.Phase.(type) {
	case RolesAssignedPhase:
		return p.Roles, len(p.Roles) > 0
	case ResolvedPhase:
		return p.Roles, len(p.Roles) > 0
	default:
		return nil, false
	}
}

// GetMember returns the roster entry for a player, or nil if not a member
func (r *Room) GetMember(playerID PlayerID) *RoomMember {
	for i := range r.Members {
		if r.Members[i].PlayerID == playerID {
			return &r.Members[i]
		}
	}
	return nil
}

// HasMember reports whether the player is on the roster
func (r *Room) HasMember(playerID PlayerID) bool {
	return r.GetMember(playerID) != nil
}

// MemberIDs returns the roster in join order
func (r *Room) MemberIDs() []PlayerID {
	ids := make([]PlayerID, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.PlayerID
	}
	return ids
}

// IsFull reports whether the roster has reached capacity
func (r *Room) IsFull() bool {
	return len(r.Members) >= RoomCapacity
}

// Clone returns a deep copy so readers never observe a later mutation
func (r *Room) Clone() *Room {
	out := *r
	out.Members = make([]RoomMember, len(r.Members))
	copy(out.Members, r.Members)
	switch p := r.Phase.(type) {
	case RolesAssignedPhase:
		out.Phase = RolesAssignedPhase{Roles: p.Roles.Clone()}
	case ResolvedPhase:
		out.Phase = ResolvedPhase{Roles: p.Roles.Clone(), Guess: p.Guess, Result: p.Result.Clone()}
	}
	return &out
}

// RoomRecord is the flat persisted shape of a room
type RoomRecord struct {
	ID          RoomID       `json:"id"`
	CreatorID   PlayerID     `json:"creator_id"`
	Status      RoomStatus   `json:"status"`
	Members     []RoomMember `json:"members"`
	Roles       Roles        `json:"roles,omitempty"`
	MantriGuess *Guess       `json:"mantri_guess,omitempty"`
	RoundResult *RoundResult `json:"round_result,omitempty"`
	Round       int          `json:"round"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Record flattens the room for storage
func (r *Room) Record() RoomRecord {
	rec := RoomRecord{
		ID:        r.ID,
		CreatorID: r.CreatorID,
		Status:    r.Status(),
		Members:   r.Members,
		Round:     r.Round,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	switch p := r.Phase.(type) {
	case RolesAssignedPhase:
		rec.Roles = p.Roles
	case ResolvedPhase:
		guess := p.Guess
		result := p.Result
		rec.Roles = p.Roles
		rec.MantriGuess = &guess
		rec.RoundResult = &result
	}
	if rec.Members == nil {
		rec.Members = []RoomMember{}
	}
	return rec
}

// RoomFromRecord rebuilds a room, rejecting records whose fields do not
// match their status
func RoomFromRecord(rec RoomRecord) (*Room, error) {
	room := &Room{
		ID:        rec.ID,
		CreatorID: rec.CreatorID,
		Members:   rec.Members,
		Round:     rec.Round,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if room.Members == nil {
		room.Members = []RoomMember{}
	}

	switch rec.Status {
	case RoomStatusWaiting, "":
		room.Phase = WaitingPhase{}
	case RoomStatusRolesAssigned:
		if len(rec.Roles) == 0 {
			return nil, fmt.Errorf("room %s: status %s without roles", rec.ID, rec.Status)
		}
		room.Phase = RolesAssignedPhase{Roles: rec.Roles}
	case RoomStatusResult:
		if len(rec.Roles) == 0 || rec.MantriGuess == nil || rec.RoundResult == nil {
			return nil, fmt.Errorf("room %s: status %s without roles, guess or result", rec.ID, rec.Status)
		}
		room.Phase = ResolvedPhase{Roles: rec.Roles, Guess: *rec.MantriGuess, Result: *rec.RoundResult}
	default:
		return nil, fmt.Errorf("room %s: unsupported status %q", rec.ID, rec.Status)
	}

	return room, nil
}

// MarshalJSON encodes the room as its flat record
func (r *Room) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Record())
}

// UnmarshalJSON decodes a flat record and restores the phase
func (r *Room) UnmarshalJSON(data []byte) error {
	var rec RoomRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	room, err := RoomFromRecord(rec)
	if err != nil {
		return err
	}
	*r = *room
	return nil
}
