package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies business errors so transports can map them uniformly
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindInvalidRoomState ErrorKind = "invalid_room_state"
	KindForbidden        ErrorKind = "forbidden"
	KindAlreadySubmitted ErrorKind = "already_submitted"
	KindInvalidTarget    ErrorKind = "invalid_target"
	KindCapacity         ErrorKind = "capacity"
	KindValidation       ErrorKind = "validation"
	KindRepository       ErrorKind = "repository"
	KindUnknown          ErrorKind = "unknown"
)

// Error is a business rule violation. Values are compared by identity with errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Common errors used across the application
var (
	// Lookup errors
	ErrPlayerNotFound = &Error{KindNotFound, "player not found"}
	ErrRoomNotFound   = &Error{KindNotFound, "room not found"}
	ErrRoleNotFound   = &Error{KindNotFound, "role not found for this player"}

	// Lifecycle errors
	ErrRoomNotJoinable  = &Error{KindInvalidRoomState, "room not accepting players"}
	ErrCannotAssign     = &Error{KindInvalidRoomState, "cannot assign roles now"}
	ErrNotEnoughPlayers = &Error{KindInvalidRoomState, "need 4 players to assign roles"}
	ErrRolesNotAssigned = &Error{KindInvalidRoomState, "roles not yet assigned"}
	ErrGuessNotAccepted = &Error{KindInvalidRoomState, "cannot accept guess in current room state"}
	ErrResultNotReady   = &Error{KindInvalidRoomState, "result not ready"}

	// Permission errors
	ErrNotMantri = &Error{KindForbidden, "only Mantri can submit guess"}
	ErrNotInRoom = &Error{KindForbidden, "player not in room"}

	// Guess errors
	ErrAlreadySubmitted = &Error{KindAlreadySubmitted, "mantri already guessed"}
	ErrInvalidTarget    = &Error{KindInvalidTarget, "guessed player not in this room"}

	// Roster errors
	ErrRoomFull      = &Error{KindCapacity, "room full"}
	ErrAlreadyInRoom = &Error{KindValidation, "player is already in room"}

	// Input errors
	ErrUsernameRequired    = &Error{KindValidation, "username required"}
	ErrRoomIDRequired      = &Error{KindValidation, "room_id required"}
	ErrPlayerIDRequired    = &Error{KindValidation, "player_id required"}
	ErrGuessFieldsRequired = &Error{KindValidation, "player_id and guessed_player_id required"}
)

// RepositoryError wraps a storage failure that is not a business error.
// It is the only error category a caller might reasonably retry.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// WrapRepository passes business errors through untouched and wraps
// everything else in a RepositoryError
func WrapRepository(op string, err error) error {
	if err == nil {
		return nil
	}
	var me *Error
	if errors.As(err, &me) {
		return err
	}
	var re *RepositoryError
	if errors.As(err, &re) {
		return err
	}
	return &RepositoryError{Op: op, Err: err}
}

// KindOf classifies any error
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	var re *RepositoryError
	if errors.As(err, &re) {
		return KindRepository
	}
	return KindUnknown
}
