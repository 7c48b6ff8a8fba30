package roster

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/rajamantri/internal/dependencies/clock"
	"github.com/mcoot/rajamantri/internal/dependencies/identity"
	"github.com/mcoot/rajamantri/internal/metrics"
	"github.com/mcoot/rajamantri/internal/model"
	"github.com/mcoot/rajamantri/internal/services/round"
	"github.com/mcoot/rajamantri/internal/storage"
)

// Controller manages room creation and membership
type Controller struct {
	storage         storage.Storage
	roundController *round.Controller
	ids             identity.Generator
	clock           clock.Clock
	metrics         *metrics.Metrics
	logger          *slog.Logger

	autoAssign bool
}

// NewController creates a new roster Controller. When autoAssign is set the
// join that fills a room also deals its roles.
func NewController(
	storage storage.Storage,
	roundController *round.Controller,
	ids identity.Generator,
	clock clock.Clock,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	autoAssign bool,
) *Controller {
	return &Controller{
		storage:         storage,
		roundController: roundController,
		ids:             ids,
		clock:           clock,
		metrics:         metrics,
		logger:          logger,
		autoAssign:      autoAssign,
	}
}

// JoinResult describes an accepted join
type JoinResult struct {
	Room        *model.Room
	Player      *model.Player
	MemberCount int
	// Roles is set when this join filled the room and triggered assignment
	Roles model.Roles
}

// MemberView is a roster entry as shown to players
type MemberView struct {
	PlayerID    model.PlayerID
	Username    string
	DisplayName string
}

// CreateRoom creates a waiting room with a new player as its creator and first member
func (c *Controller) CreateRoom(ctx context.Context, input model.NewPlayer) (*model.Room, *model.Player, error) {
	input, err := input.Validate()
	if err != nil {
		return nil, nil, err
	}

	player, err := c.createPlayer(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	now := c.clock.Now()
	room := &model.Room{
		ID:        model.RoomID(c.ids.NewID()),
		CreatorID: player.ID,
		Members: []model.RoomMember{
			{PlayerID: player.ID, JoinedAt: now},
		},
		Phase:     model.WaitingPhase{},
		Round:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room",
			slog.String("room_id", string(room.ID)),
			slog.String("error", err.Error()),
		)
		return nil, nil, model.WrapRepository("save room", err)
	}

	c.metrics.RoomCreated()
	c.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(player.ID)),
	)

	return room, player, nil
}

// JoinRoom creates a new player and admits them to a waiting room
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, input model.NewPlayer) (*JoinResult, error) {
	roomID = model.RoomID(strings.TrimSpace(string(roomID)))
	if roomID == "" {
		return nil, model.ErrRoomIDRequired
	}
	input, err := input.Validate()
	if err != nil {
		return nil, err
	}

	return c.admit(ctx, roomID, func(ctx context.Context) (*model.Player, error) {
		return c.createPlayer(ctx, input)
	})
}

// Join admits an existing player to a waiting room
func (c *Controller) Join(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*JoinResult, error) {
	roomID = model.RoomID(strings.TrimSpace(string(roomID)))
	if roomID == "" {
		return nil, model.ErrRoomIDRequired
	}
	if strings.TrimSpace(string(playerID)) == "" {
		return nil, model.ErrPlayerIDRequired
	}

	return c.admit(ctx, roomID, func(ctx context.Context) (*model.Player, error) {
		player, err := c.storage.GetPlayer(ctx, playerID)
		if err != nil {
			return nil, model.WrapRepository("get player", err)
		}
		return player, nil
	})
}

// admit runs the join under the room lock. The player is resolved only once
// the room is known to have a free seat.
func (c *Controller) admit(
	ctx context.Context,
	roomID model.RoomID,
	resolvePlayer func(context.Context) (*model.Player, error),
) (*JoinResult, error) {
	unlock, err := c.storage.LockRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("lock room", err)
	}
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("get room", err)
	}

	if room.Status() != model.RoomStatusWaiting {
		return nil, model.ErrRoomNotJoinable
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	player, err := resolvePlayer(ctx)
	if err != nil {
		return nil, err
	}
	if room.HasMember(player.ID) {
		return nil, model.ErrAlreadyInRoom
	}

	now := c.clock.Now()
	room.Members = append(room.Members, model.RoomMember{PlayerID: player.ID, JoinedAt: now})
	room.UpdatedAt = now

	result := &JoinResult{
		Room:        room,
		Player:      player,
		MemberCount: len(room.Members),
	}

	if c.autoAssign && room.IsFull() {
		// Assignment persists the room together with the new member
		roles, err := c.roundController.AssignRolesLocked(ctx, room, metrics.TriggerAuto)
		if err != nil {
			return nil, err
		}
		result.Roles = roles
	} else if err := c.storage.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room",
			slog.String("room_id", string(room.ID)),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapRepository("save room", err)
	}

	c.metrics.PlayerJoined()
	c.logger.Info("player joined room",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(player.ID)),
		slog.Int("member_count", result.MemberCount),
	)

	return result, nil
}

// ListMembers returns the roster in join order
func (c *Controller) ListMembers(ctx context.Context, roomID model.RoomID) ([]MemberView, error) {
	room, err := c.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	players, err := c.storage.GetPlayers(ctx, room.MemberIDs())
	if err != nil {
		return nil, model.WrapRepository("get players", err)
	}

	views := make([]MemberView, 0, len(room.Members))
	for _, member := range room.Members {
		view := MemberView{PlayerID: member.PlayerID, Username: round.UnknownUsername}
		if p, ok := players[member.PlayerID]; ok {
			view.Username = p.Username
			view.DisplayName = p.Label()
		}
		views = append(views, view)
	}
	return views, nil
}

// GetRoom retrieves a room by ID
func (c *Controller) GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	roomID = model.RoomID(strings.TrimSpace(string(roomID)))
	if roomID == "" {
		return nil, model.ErrRoomIDRequired
	}
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, model.WrapRepository("get room", err)
	}
	return room, nil
}

func (c *Controller) createPlayer(ctx context.Context, input model.NewPlayer) (*model.Player, error) {
	player := &model.Player{
		ID:          model.PlayerID(c.ids.NewID()),
		Username:    input.Username,
		DisplayName: input.DisplayName,
		CreatedAt:   c.clock.Now(),
	}
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		c.logger.Error("failed to save player",
			slog.String("player_id", string(player.ID)),
			slog.String("error", err.Error()),
		)
		return nil, model.WrapRepository("save player", err)
	}
	return player, nil
}
