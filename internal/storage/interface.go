package storage

import (
	"context"

	"github.com/mcoot/rajamantri/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// GetPlayers returns the players that exist; unknown IDs are omitted
	GetPlayers(ctx context.Context, ids []model.PlayerID) (map[model.PlayerID]*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)

	Locker
}

// Locker serializes mutations of a single room. Every read-modify-write of a
// room must happen between LockRoom and the returned unlock.
type Locker interface {
	// LockRoom blocks until the room's lock is held or ctx is done.
	// The returned function releases the lock and is safe to call more than once.
	LockRoom(ctx context.Context, id model.RoomID) (unlock func(), err error)
}
