package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	RoomID      string `json:"room_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// SubmitGuessRequest is the request body for the Mantri's guess
type SubmitGuessRequest struct {
	PlayerID        string `json:"player_id"`
	GuessedPlayerID string `json:"guessed_player_id"`
}
