package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CreateRoomResult:
		o.printCreateRoom(v)
	case JoinRoomResult:
		o.printJoinRoom(v)
	case Room:
		o.printRoom(v)
	case PlayersResult:
		o.printPlayers(v)
	case AssignResult:
		o.printAssign(v)
	case RoleResult:
		fmt.Printf("Your role: %s\n", v.Role)
	case GuessResult:
		o.printGuess(v)
	case RoundOutcome:
		o.printOutcome(v)
	case LeaderboardResult:
		o.printLeaderboard(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// CreateRoomResult response type (matches API)
type CreateRoomResult struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
}

// JoinRoomResult response type
type JoinRoomResult struct {
	RoomID       string `json:"room_id"`
	PlayerID     string `json:"player_id"`
	PlayersCount int    `json:"players_count"`
}

// Room response type
type Room struct {
	ID           string `json:"id"`
	CreatorID    string `json:"creator_id"`
	Status       string `json:"status"`
	Round        int    `json:"round"`
	PlayersCount int    `json:"players_count"`
}

// Member response type
type Member struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// PlayersResult response type
type PlayersResult struct {
	Players []Member `json:"players"`
}

// AssignResult response type
type AssignResult struct {
	Assigned             bool `json:"assigned"`
	RolesAssignedToCount int  `json:"roles_assigned_to_count"`
}

// RoleResult response type
type RoleResult struct {
	Role string `json:"role"`
}

// Guess response type
type Guess struct {
	By      string `json:"by"`
	Guessed string `json:"guessed"`
}

// RoundResult response type
type RoundResult struct {
	Correct bool           `json:"correct"`
	Note    string         `json:"note"`
	Points  map[string]int `json:"points"`
}

// GuessResult response type
type GuessResult struct {
	MantriGuess Guess       `json:"mantri_guess"`
	Correct     bool        `json:"correct"`
	RoundResult RoundResult `json:"round_result"`
}

// PlayerLabel response type
type PlayerLabel struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// RoundOutcome is the public result of a resolved room
type RoundOutcome struct {
	Roles       map[string]string      `json:"roles"`
	Players     map[string]PlayerLabel `json:"players"`
	MantriGuess Guess                  `json:"mantri_guess"`
	RoundResult RoundResult            `json:"round_result"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	PlayerID        string `json:"player_id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	LastRoundPoints *int   `json:"last_round_points"`
}

// LeaderboardResult response type
type LeaderboardResult struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printCreateRoom(r CreateRoomResult) {
	fmt.Printf("Room: %s\n", r.RoomID)
	fmt.Printf("Player: %s\n", r.PlayerID)
	fmt.Printf("Status: %s\n", r.Status)
}

func (o *Output) printJoinRoom(r JoinRoomResult) {
	fmt.Printf("Joined room %s as %s\n", r.RoomID, r.PlayerID)
	fmt.Printf("Players: %d/4\n", r.PlayersCount)
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.ID)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Round: %d\n", r.Round)
	fmt.Printf("Creator: %s\n", r.CreatorID)
	fmt.Printf("Players: %d/4\n", r.PlayersCount)
}

func (o *Output) printPlayers(p PlayersResult) {
	fmt.Printf("Players (%d):\n", len(p.Players))
	for _, m := range p.Players {
		fmt.Printf("  - %s (%s)\n", m.DisplayName, m.PlayerID)
	}
}

func (o *Output) printAssign(a AssignResult) {
	if a.Assigned {
		fmt.Printf("Roles assigned to %d players\n", a.RolesAssignedToCount)
	}
}

func (o *Output) printGuess(g GuessResult) {
	if g.Correct {
		fmt.Println("Correct! The Chor was caught.")
	} else {
		fmt.Println("Wrong! The Chor got away.")
	}
	o.printPoints(g.RoundResult.Points, nil)
}

func (o *Output) printOutcome(r RoundOutcome) {
	fmt.Printf("Mantri %s guessed %s\n", labelOf(r.Players, r.MantriGuess.By), labelOf(r.Players, r.MantriGuess.Guessed))
	fmt.Printf("Result: %s\n", r.RoundResult.Note)
	fmt.Println("Roles:")
	for _, pid := range sortedKeys(r.Roles) {
		fmt.Printf("  %s: %s\n", labelOf(r.Players, pid), r.Roles[pid])
	}
	o.printPoints(r.RoundResult.Points, r.Players)
}

func (o *Output) printPoints(points map[string]int, players map[string]PlayerLabel) {
	fmt.Println("Points:")
	for _, pid := range sortedKeys(points) {
		fmt.Printf("  %s: %d\n", labelOf(players, pid), points[pid])
	}
}

func (o *Output) printLeaderboard(l LeaderboardResult) {
	fmt.Println("Leaderboard:")
	for _, e := range l.Leaderboard {
		points := "-"
		if e.LastRoundPoints != nil {
			points = fmt.Sprintf("%d", *e.LastRoundPoints)
		}
		fmt.Printf("  %s: %s\n", e.DisplayName, points)
	}
}

func labelOf(players map[string]PlayerLabel, pid string) string {
	if label, ok := players[pid]; ok && label.DisplayName != "" {
		return label.DisplayName
	}
	return pid
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
