package round

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/rajamantri/internal/dependencies/clock"
	"github.com/mcoot/rajamantri/internal/dependencies/random"
	"github.com/mcoot/rajamantri/internal/metrics"
	"github.com/mcoot/rajamantri/internal/model"
	"github.com/mcoot/rajamantri/internal/services/scoring"
	"github.com/mcoot/rajamantri/internal/storage"
)

// UnknownUsername labels roled players whose record has gone missing
const UnknownUsername = "unknown"

// Controller runs a room through role assignment and guess resolution
type Controller struct {
	storage        storage.Storage
	scoringService *scoring.Service
	clock          clock.Clock
	random         random.Random
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewController creates a new round Controller
func NewController(
	storage storage.Storage,
	scoringService *scoring.Service,
	clock clock.Clock,
	random random.Random,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:        storage,
		scoringService: scoringService,
		clock:          clock,
		random:         random,
		metrics:        metrics,
		logger:         logger,
	}
}

// SubmitResult is the outcome of an accepted guess
type SubmitResult struct {
	Guess   model.Guess
	Correct bool
	Result  model.RoundResult
}

// PlayerLabel is how a player is shown in a result
type PlayerLabel struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ResultView is the public record of a resolved round
type ResultView struct {
	RoomID  model.RoomID
	Roles   model.Roles
	Players map[model.PlayerID]PlayerLabel
	Guess   model.Guess
	Result  model.RoundResult
}

// LeaderboardEntry is one member's standing. LastRoundPoints is nil until the round resolves.
type LeaderboardEntry struct {
	PlayerID        model.PlayerID
	Username        string
	DisplayName     string
	LastRoundPoints *int
}

// AssignRoles deals the four roles to a full waiting room
func (c *Controller) AssignRoles(ctx context.Context, roomID model.RoomID) (model.Roles, error) {
	roomID = model.RoomID(strings.TrimSpace(string(roomID)))
	if roomID == "" {
		return nil, model.ErrRoomIDRequired
	}

	unlock, err := c.storage.LockRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("lock room", err)
	}
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("get room", err)
	}

	return c.AssignRolesLocked(ctx, room, metrics.TriggerManual)
}

// AssignRolesLocked deals roles to an already loaded room and persists it.
// The caller must hold the room's lock. On success room is updated in place.
func (c *Controller) AssignRolesLocked(ctx context.Context, room *model.Room, trigger string) (model.Roles, error) {
	if room.Status() != model.RoomStatusWaiting {
		return nil, model.ErrCannotAssign
	}
	if len(room.Members) != model.RoomCapacity {
		return nil, model.ErrNotEnoughPlayers
	}

	dealt := model.AllRoles()
	random.Shuffle(c.random, dealt)

	roles := make(model.Roles, len(room.Members))
	for i, member := range room.Members {
		roles[member.PlayerID] = dealt[i]
	}

	previous, previousUpdated := room.Phase, room.UpdatedAt
	room.Phase = model.RolesAssignedPhase{Roles: roles}
	room.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		room.Phase, room.UpdatedAt = previous, previousUpdated
		c.logger.Error("failed to save room",
			slog.String("room_id", string(room.ID)),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapRepository("save room", err)
	}

	c.metrics.RolesDealt(trigger)
	c.logger.Info("roles assigned",
		slog.String("room_id", string(room.ID)),
		slog.String("trigger", trigger),
	)

	return roles.Clone(), nil
}

// SubmitGuess records the Mantri's accusation and resolves the round in one step
func (c *Controller) SubmitGuess(ctx context.Context, roomID model.RoomID, by, guessed model.PlayerID) (*SubmitResult, error) {
	roomID = model.RoomID(strings.TrimSpace(string(roomID)))
	by = model.PlayerID(strings.TrimSpace(string(by)))
	guessed = model.PlayerID(strings.TrimSpace(string(guessed)))
	if roomID == "" {
		return nil, model.ErrRoomIDRequired
	}
	if by == "" || guessed == "" {
		return nil, model.ErrGuessFieldsRequired
	}

	unlock, err := c.storage.LockRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("lock room", err)
	}
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("get room", err)
	}

	// A resolved room falls through so that a repeat guess reports AlreadySubmitted
	var roles model.Roles
	resolved := false
	switch phase := room.Phase.(type) {
	case model.RolesAssignedPhase:
		roles = phase.Roles
	case model.ResolvedPhase:
		roles = phase.Roles
		resolved = true
	default:
		return nil, model.ErrGuessNotAccepted
	}

	if len(roles) == 0 {
		return nil, model.ErrRolesNotAssigned
	}
	if roles[by] != model.RoleMantri {
		return nil, model.ErrNotMantri
	}
	if resolved {
		return nil, model.ErrAlreadySubmitted
	}
	if _, ok := roles[guessed]; !ok || !room.HasMember(guessed) {
		return nil, model.ErrInvalidTarget
	}

	guess := model.Guess{By: by, Guessed: guessed}
	result := c.scoringService.Score(roles, by, guessed)

	room.Phase = model.ResolvedPhase{Roles: roles, Guess: guess, Result: result}
	room.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room",
			slog.String("room_id", string(room.ID)),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapRepository("save room", err)
	}

	c.metrics.RoundResolved(roles, result)
	c.logger.Info("guess resolved",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(by)),
		slog.String("guessed_player_id", string(guessed)),
		slog.Bool("correct", result.Correct),
	)

	return &SubmitResult{
		Guess:   guess,
		Correct: result.Correct,
		Result:  result.Clone(),
	}, nil
}

// GetMyRole reveals a member's own role
func (c *Controller) GetMyRole(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (model.Role, error) {
	if strings.TrimSpace(string(roomID)) == "" {
		return "", model.ErrRoomIDRequired
	}
	if strings.TrimSpace(string(playerID)) == "" {
		return "", model.ErrPlayerIDRequired
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return "", model.WrapRepository("get room", err)
	}

	if !room.HasMember(playerID) {
		return "", model.ErrNotInRoom
	}
	roles, ok := room.AssignedRoles()
	if !ok {
		return "", model.ErrRolesNotAssigned
	}
	role, ok := roles[playerID]
	if !ok {
		// Roster and roles disagree
		c.logger.Warn("member has no role",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
		)
		return "", model.ErrRoleNotFound
	}
	return role, nil
}

// GetResult returns the resolved round, with every roled player labelled
func (c *Controller) GetResult(ctx context.Context, roomID model.RoomID) (*ResultView, error) {
	if strings.TrimSpace(string(roomID)) == "" {
		return nil, model.ErrRoomIDRequired
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("get room", err)
	}

	phase, ok := room.Phase.(model.ResolvedPhase)
	if !ok {
		return nil, model.ErrResultNotReady
	}

	ids := make([]model.PlayerID, 0, len(phase.Roles))
	for pid := range phase.Roles {
		ids = append(ids, pid)
	}
	players, err := c.storage.GetPlayers(ctx, ids)
	if err != nil {
		return nil, model.WrapRepository("get players", err)
	}

	labels := make(map[model.PlayerID]PlayerLabel, len(ids))
	for _, pid := range ids {
		if p, ok := players[pid]; ok {
			labels[pid] = PlayerLabel{Username: p.Username, DisplayName: p.DisplayName}
		} else {
			labels[pid] = PlayerLabel{Username: UnknownUsername}
		}
	}

	return &ResultView{
		RoomID:  room.ID,
		Roles:   phase.Roles.Clone(),
		Players: labels,
		Guess:   phase.Guess,
		Result:  phase.Result.Clone(),
	}, nil
}

// GetLeaderboard lists members in join order with their points from the last resolved round
func (c *Controller) GetLeaderboard(ctx context.Context, roomID model.RoomID) ([]LeaderboardEntry, error) {
	if strings.TrimSpace(string(roomID)) == "" {
		return nil, model.ErrRoomIDRequired
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("get room", err)
	}

	players, err := c.storage.GetPlayers(ctx, room.MemberIDs())
	if err != nil {
		return nil, model.WrapRepository("get players", err)
	}

	var points map[model.PlayerID]int
	if phase, ok := room.Phase.(model.ResolvedPhase); ok {
		points = phase.Result.Points
	}

	entries := make([]LeaderboardEntry, 0, len(room.Members))
	for _, member := range room.Members {
		entry := LeaderboardEntry{PlayerID: member.PlayerID, Username: UnknownUsername}
		if p, ok := players[member.PlayerID]; ok {
			entry.Username = p.Username
			entry.DisplayName = p.Label()
		}
		if pts, ok := points[member.PlayerID]; ok {
			entry.LastRoundPoints = &pts
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
