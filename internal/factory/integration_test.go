package factory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rajamantri/internal/model"
	redisstorage "github.com/mcoot/rajamantri/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// fillRoom creates a room and joins three more players, returning the
// player IDs in join order (Raja, Mantri, Chor, Sipahi with the mock random)
func (s *IntegrationSuite) fillRoom(app *App) (model.RoomID, []model.PlayerID) {
	room, creator, err := app.RosterController.CreateRoom(s.ctx, model.NewPlayer{Username: "alice"})
	s.Require().NoError(err)

	ids := []model.PlayerID{creator.ID}
	for _, name := range []string{"bob", "carol", "dave"} {
		result, err := app.RosterController.JoinRoom(s.ctx, room.ID, model.NewPlayer{Username: name})
		s.Require().NoError(err)
		ids = append(ids, result.Player.ID)
	}
	return room.ID, ids
}

// Test: Complete round from room creation to leaderboard
func (s *IntegrationSuite) TestCompleteRoundCorrectGuess() {
	roomID, ids := s.fillRoom(s.app.App)
	raja, mantri, chor, sipahi := ids[0], ids[1], ids[2], ids[3]

	// Step 1: Room auto-assigned on the fourth join
	room, err := s.app.RosterController.GetRoom(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusRolesAssigned, room.Status())

	// Step 2: Each player sees their own role
	for pid, want := range map[model.PlayerID]model.Role{
		raja: model.RoleRaja, mantri: model.RoleMantri, chor: model.RoleChor, sipahi: model.RoleSipahi,
	} {
		role, err := s.app.RoundController.GetMyRole(s.ctx, roomID, pid)
		s.Require().NoError(err)
		s.Equal(want, role)
	}

	// Step 3: Mantri accuses the Chor
	result, err := s.app.RoundController.SubmitGuess(s.ctx, roomID, mantri, chor)
	s.Require().NoError(err)
	s.True(result.Correct)

	// Step 4: Result is public
	view, err := s.app.RoundController.GetResult(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(map[model.PlayerID]int{raja: 1000, mantri: 800, chor: 0, sipahi: 500}, view.Result.Points)
	s.Equal("carol", view.Players[chor].Username)

	// Step 5: Leaderboard in join order
	board, err := s.app.RoundController.GetLeaderboard(s.ctx, roomID)
	s.Require().NoError(err)
	s.Require().Len(board, 4)
	s.Equal(raja, board[0].PlayerID)
	s.Equal(1000, *board[0].LastRoundPoints)

	s.Equal(1.0, testutil.ToFloat64(s.app.Metrics.GuessesResolved.WithLabelValues("correct")))
	s.Equal(4.0, testutil.ToFloat64(s.app.Metrics.PlayersJoined))
}

// Test: Wrong guess moves the Mantri's points to the Chor
func (s *IntegrationSuite) TestCompleteRoundWrongGuess() {
	roomID, ids := s.fillRoom(s.app.App)
	mantri, chor, sipahi := ids[1], ids[2], ids[3]

	result, err := s.app.RoundController.SubmitGuess(s.ctx, roomID, mantri, sipahi)
	s.Require().NoError(err)
	s.False(result.Correct)
	s.Equal(0, result.Result.Points[mantri])
	s.Equal(800, result.Result.Points[chor])

	_, err = s.app.RoundController.SubmitGuess(s.ctx, roomID, mantri, chor)
	s.ErrorIs(err, model.ErrAlreadySubmitted)
}

// Test: Manual assignment when auto-assign is off
func (s *IntegrationSuite) TestManualAssignment() {
	app := NewTestAppWithoutAutoAssign()
	roomID, _ := s.fillRoom(app.App)

	room, _ := app.RosterController.GetRoom(s.ctx, roomID)
	s.Equal(model.RoomStatusWaiting, room.Status())

	_, err := app.RosterController.JoinRoom(s.ctx, roomID, model.NewPlayer{Username: "eve"})
	s.ErrorIs(err, model.ErrRoomFull)

	roles, err := app.RoundController.AssignRoles(s.ctx, roomID)
	s.Require().NoError(err)
	s.Len(roles, 4)
}

// Test: Many rooms filled concurrently each end up with a valid deal
func (s *IntegrationSuite) TestConcurrentRooms() {
	const rooms = 8
	roomIDs := make([]model.RoomID, rooms)
	for i := range roomIDs {
		room, _, err := s.app.RosterController.CreateRoom(s.ctx, model.NewPlayer{Username: fmt.Sprintf("host%d", i)})
		s.Require().NoError(err)
		roomIDs[i] = room.ID
	}

	var wg sync.WaitGroup
	for _, roomID := range roomIDs {
		for j := 0; j < 5; j++ {
			wg.Add(1)
			go func(roomID model.RoomID, j int) {
				defer wg.Done()
				_, _ = s.app.RosterController.JoinRoom(s.ctx, roomID, model.NewPlayer{Username: fmt.Sprintf("p%d", j)})
			}(roomID, j)
		}
	}
	wg.Wait()

	for _, roomID := range roomIDs {
		room, err := s.app.RosterController.GetRoom(s.ctx, roomID)
		s.Require().NoError(err)
		s.Len(room.Members, 4)
		roles, ok := room.AssignedRoles()
		s.Require().True(ok)
		s.True(roles.IsBijection(room.MemberIDs()))
	}
}

// Factory construction

func (s *IntegrationSuite) TestNewDefaultsToMemory() {
	app, err := New(Config{})
	s.Require().NoError(err)

	room, _, err := app.RosterController.CreateRoom(s.ctx, model.NewPlayer{Username: "alice"})
	s.Require().NoError(err)
	s.True(len(room.ID) == 36, "room ids are UUIDs")
}

func (s *IntegrationSuite) TestNewRejectsUnknownStorage() {
	_, err := New(Config{StorageType: "sqlite"})
	s.Error(err)

	_, err = New(Config{StorageType: StorageTypeRedis})
	s.Error(err)

	_, err = New(Config{StorageType: StorageTypePostgres})
	s.Error(err)
}

func (s *IntegrationSuite) TestNewWithRedisStorage() {
	mini := miniredis.RunT(s.T())
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mini.Addr()

	registry := prometheus.NewRegistry()
	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg, Registerer: registry, Seed: 7})
	s.Require().NoError(err)

	roomID, _ := s.fillRoom(app)

	room, err := app.RosterController.GetRoom(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusRolesAssigned, room.Status())
	s.Equal(1.0, testutil.ToFloat64(app.Metrics.RoomsCreated))
}
