package redis

import (
	"fmt"

	"github.com/mcoot/rajamantri/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "rmcs"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomLockKey returns the Redis key guarding mutations of a Room
func roomLockKey(id model.RoomID) string {
	return fmt.Sprintf("%s:lock:room:%s", keyPrefix, id)
}
