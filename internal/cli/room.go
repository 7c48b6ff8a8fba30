package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// roomFlags override the session's room and player
type roomFlags struct {
	roomID   string
	playerID string
}

func newRoomCmd() *cobra.Command {
	flags := &roomFlags{}

	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room and round commands",
	}

	cmd.PersistentFlags().StringVar(&flags.roomID, "room", "", "Room id (default: from session)")
	cmd.PersistentFlags().StringVar(&flags.playerID, "player", "", "Player id (default: from session)")

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomGetCmd(flags))
	cmd.AddCommand(newRoomPlayersCmd(flags))
	cmd.AddCommand(newRoomAssignCmd(flags))
	cmd.AddCommand(newRoomRoleCmd(flags))
	cmd.AddCommand(newRoomGuessCmd(flags))
	cmd.AddCommand(newRoomResultCmd(flags))
	cmd.AddCommand(newRoomLeaderboardCmd(flags))

	return cmd
}

// room returns the room id from the flag or the session
func (f *roomFlags) room() (string, error) {
	if f.roomID != "" {
		return f.roomID, nil
	}
	s, err := cfg.LoadSession()
	if err != nil {
		return "", err
	}
	if s.RoomID == "" {
		return "", errors.New("no room selected: pass --room or create/join a room first")
	}
	return s.RoomID, nil
}

// player returns the player id from the flag or the session
func (f *roomFlags) player() (string, error) {
	if f.playerID != "" {
		return f.playerID, nil
	}
	s, err := cfg.LoadSession()
	if err != nil {
		return "", err
	}
	if s.PlayerID == "" {
		return "", errors.New("no player selected: pass --player or create/join a room first")
	}
	return s.PlayerID, nil
}

func newRoomCreateCmd() *cobra.Command {
	var username, displayName string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room and join it",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username":     username,
				"display_name": displayName,
			}

			var result CreateRoomResult

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveSession(Session{RoomID: result.RoomID, PlayerID: result.PlayerID}); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (default: username)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var username, displayName string

	cmd := &cobra.Command{
		Use:   "join <room_id>",
		Short: "Join an existing room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"room_id":      args[0],
				"username":     username,
				"display_name": displayName,
			}

			var result JoinRoomResult

			if err := client.Post("/api/v1/rooms/join", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveSession(Session{RoomID: result.RoomID, PlayerID: result.PlayerID}); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (default: username)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newRoomGetCmd(flags *roomFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Get room details",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := flags.room()
			if err != nil {
				return err
			}

			var result Room

			if err := client.Get(roomPath(roomID), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomPlayersCmd(flags *roomFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List the room's players in join order",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := flags.room()
			if err != nil {
				return err
			}

			var result PlayersResult

			if err := client.Get(roomPath(roomID, "players"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomAssignCmd(flags *roomFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "assign",
		Short: "Deal roles once the room is full",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := flags.room()
			if err != nil {
				return err
			}

			var result AssignResult

			if err := client.Post(roomPath(roomID, "assign"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomRoleCmd(flags *roomFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "role",
		Short: "Show your secret role",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := flags.room()
			if err != nil {
				return err
			}
			playerID, err := flags.player()
			if err != nil {
				return err
			}

			var result RoleResult

			if err := client.Get(roomPath(roomID, "role", playerID), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomGuessCmd(flags *roomFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "guess <guessed_player_id>",
		Short: "As Mantri, accuse a player of being the Chor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := flags.room()
			if err != nil {
				return err
			}
			playerID, err := flags.player()
			if err != nil {
				return err
			}

			req := map[string]string{
				"player_id":         playerID,
				"guessed_player_id": args[0],
			}

			var result GuessResult

			if err := client.Post(roomPath(roomID, "guess"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomResultCmd(flags *roomFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "result",
		Short: "Show the round result",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := flags.room()
			if err != nil {
				return err
			}

			var result RoundOutcome

			if err := client.Get(roomPath(roomID, "result"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomLeaderboardCmd(flags *roomFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show points from the last round",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := flags.room()
			if err != nil {
				return err
			}

			var result LeaderboardResult

			if err := client.Get(roomPath(roomID, "leaderboard"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
