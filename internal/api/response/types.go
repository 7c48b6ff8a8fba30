package response

import (
	"time"

	"github.com/mcoot/rajamantri/internal/model"
	"github.com/mcoot/rajamantri/internal/services/roster"
	"github.com/mcoot/rajamantri/internal/services/round"
)

// CreateRoomResponse is the response for creating a room
type CreateRoomResponse struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
}

// JoinRoomResponse is the response for joining a room
type JoinRoomResponse struct {
	RoomID       string `json:"room_id"`
	PlayerID     string `json:"player_id"`
	PlayersCount int    `json:"players_count"`
}

// JoinRoomFromResult converts a roster.JoinResult
func JoinRoomFromResult(r *roster.JoinResult) JoinRoomResponse {
	return JoinRoomResponse{
		RoomID:       string(r.Room.ID),
		PlayerID:     string(r.Player.ID),
		PlayersCount: r.MemberCount,
	}
}

// Member is a roster entry in API responses
type Member struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// PlayersResponse lists a room's members in join order
type PlayersResponse struct {
	Players []Member `json:"players"`
}

// PlayersFromViews converts roster member views
func PlayersFromViews(views []roster.MemberView) PlayersResponse {
	players := make([]Member, len(views))
	for i, v := range views {
		players[i] = Member{
			PlayerID:    string(v.PlayerID),
			Username:    v.Username,
			DisplayName: v.DisplayName,
		}
	}
	return PlayersResponse{Players: players}
}

// AssignResponse is the response for manual role assignment
type AssignResponse struct {
	Assigned             bool `json:"assigned"`
	RolesAssignedToCount int  `json:"roles_assigned_to_count"`
}

// RoleResponse reveals a player's own role
type RoleResponse struct {
	Role string `json:"role"`
}

// Guess is the Mantri's accusation in API responses
type Guess struct {
	By      string `json:"by"`
	Guessed string `json:"guessed"`
}

// RoundResult is the scored outcome in API responses
type RoundResult struct {
	Correct bool           `json:"correct"`
	Note    string         `json:"note"`
	Points  map[string]int `json:"points"`
}

func guessFromModel(g model.Guess) Guess {
	return Guess{By: string(g.By), Guessed: string(g.Guessed)}
}

func roundResultFromModel(r model.RoundResult) RoundResult {
	points := make(map[string]int, len(r.Points))
	for pid, p := range r.Points {
		points[string(pid)] = p
	}
	return RoundResult{Correct: r.Correct, Note: r.Note, Points: points}
}

// GuessResponse is the response for an accepted guess
type GuessResponse struct {
	MantriGuess Guess       `json:"mantri_guess"`
	Correct     bool        `json:"correct"`
	RoundResult RoundResult `json:"round_result"`
}

// GuessFromResult converts a round.SubmitResult
func GuessFromResult(r *round.SubmitResult) GuessResponse {
	return GuessResponse{
		MantriGuess: guessFromModel(r.Guess),
		Correct:     r.Correct,
		RoundResult: roundResultFromModel(r.Result),
	}
}

// ResultResponse is the public record of a resolved round
type ResultResponse struct {
	Roles       map[string]string            `json:"roles"`
	Players     map[string]round.PlayerLabel `json:"players"`
	MantriGuess Guess                        `json:"mantri_guess"`
	RoundResult RoundResult                  `json:"round_result"`
}

// ResultFromView converts a round.ResultView
func ResultFromView(v *round.ResultView) ResultResponse {
	roles := make(map[string]string, len(v.Roles))
	for pid, role := range v.Roles {
		roles[string(pid)] = role.String()
	}
	players := make(map[string]round.PlayerLabel, len(v.Players))
	for pid, label := range v.Players {
		players[string(pid)] = label
	}
	return ResultResponse{
		Roles:       roles,
		Players:     players,
		MantriGuess: guessFromModel(v.Guess),
		RoundResult: roundResultFromModel(v.Result),
	}
}

// LeaderboardEntry is one member's standing
type LeaderboardEntry struct {
	PlayerID        string `json:"player_id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	LastRoundPoints *int   `json:"last_round_points"`
}

// LeaderboardResponse lists members in join order
type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardFromEntries converts round leaderboard entries
func LeaderboardFromEntries(entries []round.LeaderboardEntry) LeaderboardResponse {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			PlayerID:        string(e.PlayerID),
			Username:        e.Username,
			DisplayName:     e.DisplayName,
			LastRoundPoints: e.LastRoundPoints,
		}
	}
	return LeaderboardResponse{Leaderboard: out}
}

// RoomResponse is a room summary
type RoomResponse struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id"`
	Status       string    `json:"status"`
	Round        int       `json:"round"`
	PlayersCount int       `json:"players_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) RoomResponse {
	return RoomResponse{
		ID:           string(r.ID),
		CreatorID:    string(r.CreatorID),
		Status:       string(r.Status()),
		Round:        r.Round,
		PlayersCount: len(r.Members),
		CreatedAt:    r.CreatedAt,
	}
}
