package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/rajamantri/internal/api/request"
	"github.com/mcoot/rajamantri/internal/api/response"
	"github.com/mcoot/rajamantri/internal/dependencies/identity"
	"github.com/mcoot/rajamantri/internal/model"
	"github.com/mcoot/rajamantri/internal/services/roster"
	"github.com/mcoot/rajamantri/internal/services/round"
)

// RoomHandler handles room, role and round endpoints
type RoomHandler struct {
	rosterController *roster.Controller
	roundController  *round.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rosterController *roster.Controller, roundController *round.Controller) *RoomHandler {
	return &RoomHandler{
		rosterController: rosterController,
		roundController:  roundController,
	}
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst zeroed.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return NewInvalidRequestError("Invalid JSON body")
	}
	return nil
}

func roomIDVar(r *http.Request) model.RoomID {
	return model.RoomID(mux.Vars(r)["room_id"])
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	room, player, err := h.rosterController.CreateRoom(r.Context(), model.NewPlayer{
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateRoomResponse{
		RoomID:   string(room.ID),
		PlayerID: string(player.ID),
		Status:   string(room.Status()),
	})
}

// Join handles POST /api/v1/rooms/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" || strings.TrimSpace(req.Username) == "" {
		WriteError(w, NewInvalidRequestError("room_id and username required"))
		return
	}
	if !identity.IsValid(roomID) {
		WriteError(w, NewInvalidRequestError("invalid room_id format (must be UUID)"))
		return
	}

	result, err := h.rosterController.JoinRoom(r.Context(), model.RoomID(roomID), model.NewPlayer{
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinRoomFromResult(result))
}

// Get handles GET /api/v1/rooms/{room_id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.rosterController.GetRoom(r.Context(), roomIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Players handles GET /api/v1/rooms/{room_id}/players
func (h *RoomHandler) Players(w http.ResponseWriter, r *http.Request) {
	members, err := h.rosterController.ListMembers(r.Context(), roomIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayersFromViews(members))
}

// Assign handles POST /api/v1/rooms/{room_id}/assign
func (h *RoomHandler) Assign(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roundController.AssignRoles(r.Context(), roomIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AssignResponse{
		Assigned:             true,
		RolesAssignedToCount: len(roles),
	})
}

// Role handles GET /api/v1/rooms/{room_id}/role/{player_id}
func (h *RoomHandler) Role(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	role, err := h.roundController.GetMyRole(r.Context(), roomIDVar(r), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoleResponse{Role: role.String()})
}

// Guess handles POST /api/v1/rooms/{room_id}/guess
func (h *RoomHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitGuessRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.roundController.SubmitGuess(r.Context(), roomIDVar(r),
		model.PlayerID(req.PlayerID), model.PlayerID(req.GuessedPlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuessFromResult(result))
}

// Result handles GET /api/v1/rooms/{room_id}/result
func (h *RoomHandler) Result(w http.ResponseWriter, r *http.Request) {
	view, err := h.roundController.GetResult(r.Context(), roomIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResultFromView(view))
}

// Leaderboard handles GET /api/v1/rooms/{room_id}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.roundController.GetLeaderboard(r.Context(), roomIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromEntries(entries))
}
