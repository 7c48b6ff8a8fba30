package model

// Role is one of the four secret roles dealt each round
type Role string

const (
	RoleRaja   Role = "Raja"   // King
	RoleMantri Role = "Mantri" // Minister, the only player who guesses
	RoleChor   Role = "Chor"   // Thief
	RoleSipahi Role = "Sipahi" // Soldier
)

// RoomCapacity is fixed by the size of the role set
const RoomCapacity = 4

var (
	allRoles = [RoomCapacity]Role{RoleRaja, RoleMantri, RoleChor, RoleSipahi}

	basePoints = map[Role]int{
		RoleRaja:   1000,
		RoleMantri: 800,
		RoleSipahi: 500,
		RoleChor:   0,
	}
)

// AllRoles returns the fixed role set in canonical order.
// The returned slice is a fresh copy and may be shuffled by the caller.
func AllRoles() []Role {
	roles := make([]Role, len(allRoles))
	copy(roles, allRoles[:])
	return roles
}

// BasePoints returns the per-round holding for a role, 0 for unknown roles
func BasePoints(r Role) int {
	return basePoints[r]
}

// IsValid reports whether r is one of the four roles
func (r Role) IsValid() bool {
	_, ok := basePoints[r]
	return ok
}

// String returns the role label
func (r Role) String() string {
	return string(r)
}

// Roles maps each room member to the role they were dealt
type Roles map[PlayerID]Role

// HolderOf returns the player holding the given role
func (r Roles) HolderOf(role Role) (PlayerID, bool) {
	for pid, held := range r {
		if held == role {
			return pid, true
		}
	}
	return "", false
}

// Clone returns an independent copy
func (r Roles) Clone() Roles {
	if r == nil {
		return nil
	}
	out := make(Roles, len(r))
	for pid, role := range r {
		out[pid] = role
	}
	return out
}

// IsBijection reports whether every member holds exactly one role
// and every role is held by exactly one member
func (r Roles) IsBijection(members []PlayerID) bool {
	if len(r) != len(members) || len(members) != RoomCapacity {
		return false
	}
	seen := make(map[Role]bool, RoomCapacity)
	for _, pid := range members {
		role, ok := r[pid]
		if !ok || !role.IsValid() || seen[role] {
			return false
		}
		seen[role] = true
	}
	return true
}
