package round

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rajamantri/internal/dependencies/mocks"
	"github.com/mcoot/rajamantri/internal/dependencies/random"
	"github.com/mcoot/rajamantri/internal/metrics"
	"github.com/mcoot/rajamantri/internal/model"
	"github.com/mcoot/rajamantri/internal/services/scoring"
	"github.com/mcoot/rajamantri/internal/storage/memory"
	"github.com/mcoot/rajamantri/internal/testutil"
)

var errSaveFailed = errors.New("disk on fire")

// failingStorage rejects every room save
type failingStorage struct {
	*memory.Storage
}

func (f *failingStorage) SaveRoom(ctx context.Context, room *model.Room) error {
	return errSaveFailed
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	metrics    *metrics.Metrics
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.controller = NewController(s.storage, scoring.New(), s.clock, s.random, s.metrics, testutil.NopLogger())
	s.ctx = context.Background()
}

// seedRoom stores a waiting room whose members are the given usernames, in order.
// Player IDs equal their usernames.
func (s *ControllerSuite) seedRoom(id model.RoomID, usernames ...string) *model.Room {
	room := &model.Room{
		ID:        id,
		Phase:     model.WaitingPhase{},
		Round:     1,
		CreatedAt: s.clock.Now(),
		UpdatedAt: s.clock.Now(),
	}
	for i, name := range usernames {
		pid := model.PlayerID(name)
		s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{
			ID:          pid,
			Username:    name,
			DisplayName: strings.ToUpper(name),
			CreatedAt:   s.clock.Now(),
		}))
		room.Members = append(room.Members, model.RoomMember{
			PlayerID: pid,
			JoinedAt: s.clock.Now().Add(time.Duration(i) * time.Second),
		})
	}
	if len(room.Members) > 0 {
		room.CreatorID = room.Members[0].PlayerID
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	return room
}

// assignedRoom seeds a full room and deals roles in join order:
// a=Raja, b=Mantri, c=Chor, d=Sipahi
func (s *ControllerSuite) assignedRoom() model.RoomID {
	s.seedRoom("room-1", "a", "b", "c", "d")
	s.random.QueueIdentityShuffle(model.RoomCapacity)
	_, err := s.controller.AssignRoles(s.ctx, "room-1")
	s.Require().NoError(err)
	return "room-1"
}

// AssignRoles tests

func (s *ControllerSuite) TestAssignRolesZipsShuffleWithJoinOrder() {
	s.seedRoom("room-1", "a", "b", "c", "d")
	s.random.QueueIdentityShuffle(model.RoomCapacity)

	roles, err := s.controller.AssignRoles(s.ctx, "room-1")
	s.Require().NoError(err)

	s.Equal(model.Roles{
		"a": model.RoleRaja,
		"b": model.RoleMantri,
		"c": model.RoleChor,
		"d": model.RoleSipahi,
	}, roles)
}

func (s *ControllerSuite) TestAssignRolesUsesRandomSource() {
	s.seedRoom("room-1", "a", "b", "c", "d")
	// [Raja Mantri Chor Sipahi] -> swap(3,0) -> swap(2,2) -> swap(1,0)
	s.random.QueueIntn(0, 2, 0)

	roles, err := s.controller.AssignRoles(s.ctx, "room-1")
	s.Require().NoError(err)

	s.Equal(model.RoleMantri, roles["a"])
	s.Equal(model.RoleSipahi, roles["b"])
	s.Equal(model.RoleChor, roles["c"])
	s.Equal(model.RoleRaja, roles["d"])
}

func (s *ControllerSuite) TestAssignRolesPersistsPhase() {
	roomID := s.assignedRoom()

	room, err := s.storage.GetRoom(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusRolesAssigned, room.Status())

	roles, ok := room.AssignedRoles()
	s.Require().True(ok)
	s.True(roles.IsBijection(room.MemberIDs()))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.RolesAssigned.WithLabelValues(metrics.TriggerManual)))
}

func (s *ControllerSuite) TestAssignRolesTwiceFails() {
	roomID := s.assignedRoom()

	_, err := s.controller.AssignRoles(s.ctx, roomID)
	s.ErrorIs(err, model.ErrCannotAssign)
}

func (s *ControllerSuite) TestAssignRolesNeedsFourPlayers() {
	s.seedRoom("room-1", "a", "b", "c")

	_, err := s.controller.AssignRoles(s.ctx, "room-1")
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
	s.Equal(model.KindInvalidRoomState, model.KindOf(err))

	room, _ := s.storage.GetRoom(s.ctx, "room-1")
	s.Equal(model.RoomStatusWaiting, room.Status())
}

func (s *ControllerSuite) TestAssignRolesRoomNotFound() {
	_, err := s.controller.AssignRoles(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestAssignRolesBlankRoomID() {
	_, err := s.controller.AssignRoles(s.ctx, "  ")
	s.ErrorIs(err, model.ErrRoomIDRequired)
}

func (s *ControllerSuite) TestAssignRolesSaveFailureIsRepositoryError() {
	s.seedRoom("room-1", "a", "b", "c", "d")
	controller := NewController(&failingStorage{s.storage}, scoring.New(), s.clock, s.random, nil, testutil.NopLogger())

	_, err := controller.AssignRoles(s.ctx, "room-1")
	s.Require().Error(err)
	s.Equal(model.KindRepository, model.KindOf(err))
	s.ErrorIs(err, errSaveFailed)
}

func (s *ControllerSuite) TestAssignRolesLockedRestoresPhaseOnSaveFailure() {
	room := s.seedRoom("room-1", "a", "b", "c", "d")
	controller := NewController(&failingStorage{s.storage}, scoring.New(), s.clock, s.random, nil, testutil.NopLogger())

	_, err := controller.AssignRolesLocked(s.ctx, room, metrics.TriggerAuto)
	s.Require().Error(err)
	s.Equal(model.RoomStatusWaiting, room.Status())
}

// SubmitGuess tests

func (s *ControllerSuite) TestSubmitGuessCorrect() {
	roomID := s.assignedRoom()

	result, err := s.controller.SubmitGuess(s.ctx, roomID, "b", "c")
	s.Require().NoError(err)

	s.True(result.Correct)
	s.Equal(model.Guess{By: "b", Guessed: "c"}, result.Guess)
	s.Equal(map[model.PlayerID]int{"a": 1000, "b": 800, "c": 0, "d": 500}, result.Result.Points)
	s.Equal(scoring.NoteCorrect, result.Result.Note)
}

func (s *ControllerSuite) TestSubmitGuessWrong() {
	roomID := s.assignedRoom()

	result, err := s.controller.SubmitGuess(s.ctx, roomID, "b", "d")
	s.Require().NoError(err)

	s.False(result.Correct)
	s.Equal(map[model.PlayerID]int{"a": 1000, "b": 0, "c": 800, "d": 500}, result.Result.Points)
	s.Equal(scoring.NoteWrong, result.Result.Note)
}

func (s *ControllerSuite) TestSubmitGuessResolvesRoom() {
	roomID := s.assignedRoom()
	s.clock.Advance(time.Minute)

	_, err := s.controller.SubmitGuess(s.ctx, roomID, "b", "c")
	s.Require().NoError(err)

	room, err := s.storage.GetRoom(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusResult, room.Status())
	s.Equal(s.clock.Now(), room.UpdatedAt)
	phase, ok := room.Phase.(model.ResolvedPhase)
	s.Require().True(ok)
	s.Equal(model.PlayerID("c"), phase.Guess.Guessed)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.GuessesResolved.WithLabelValues("correct")))
}

func (s *ControllerSuite) TestSubmitGuessByNonMantriIsForbidden() {
	roomID := s.assignedRoom()

	_, err := s.controller.SubmitGuess(s.ctx, roomID, "a", "c")
	s.ErrorIs(err, model.ErrNotMantri)
	s.Equal(model.KindForbidden, model.KindOf(err))

	room, _ := s.storage.GetRoom(s.ctx, roomID)
	s.Equal(model.RoomStatusRolesAssigned, room.Status())
}

func (s *ControllerSuite) TestSubmitGuessByOutsiderIsForbidden() {
	roomID := s.assignedRoom()

	_, err := s.controller.SubmitGuess(s.ctx, roomID, "stranger", "c")
	s.ErrorIs(err, model.ErrNotMantri)
}

func (s *ControllerSuite) TestSubmitGuessTwiceFails() {
	roomID := s.assignedRoom()

	_, err := s.controller.SubmitGuess(s.ctx, roomID, "b", "d")
	s.Require().NoError(err)

	_, err = s.controller.SubmitGuess(s.ctx, roomID, "b", "c")
	s.ErrorIs(err, model.ErrAlreadySubmitted)

	// The first result stands
	room, _ := s.storage.GetRoom(s.ctx, roomID)
	phase := room.Phase.(model.ResolvedPhase)
	s.Equal(model.PlayerID("d"), phase.Guess.Guessed)
	s.False(phase.Result.Correct)
}

func (s *ControllerSuite) TestSubmitGuessAfterResolutionByNonMantriIsForbidden() {
	roomID := s.assignedRoom()
	_, err := s.controller.SubmitGuess(s.ctx, roomID, "b", "c")
	s.Require().NoError(err)

	_, err = s.controller.SubmitGuess(s.ctx, roomID, "a", "c")
	s.ErrorIs(err, model.ErrNotMantri)
}

func (s *ControllerSuite) TestSubmitGuessTargetOutsideRoom() {
	roomID := s.assignedRoom()

	_, err := s.controller.SubmitGuess(s.ctx, roomID, "b", "stranger")
	s.ErrorIs(err, model.ErrInvalidTarget)

	room, _ := s.storage.GetRoom(s.ctx, roomID)
	s.Equal(model.RoomStatusRolesAssigned, room.Status())
}

func (s *ControllerSuite) TestSubmitGuessBeforeAssignment() {
	s.seedRoom("room-1", "a", "b", "c", "d")

	_, err := s.controller.SubmitGuess(s.ctx, "room-1", "b", "c")
	s.ErrorIs(err, model.ErrGuessNotAccepted)
	s.Equal(model.KindInvalidRoomState, model.KindOf(err))
}

func (s *ControllerSuite) TestSubmitGuessMissingFields() {
	roomID := s.assignedRoom()

	_, err := s.controller.SubmitGuess(s.ctx, roomID, "", "c")
	s.ErrorIs(err, model.ErrGuessFieldsRequired)

	_, err = s.controller.SubmitGuess(s.ctx, roomID, "b", " ")
	s.ErrorIs(err, model.ErrGuessFieldsRequired)
}

func (s *ControllerSuite) TestSubmitGuessValidatesBeforeLookup() {
	_, err := s.controller.SubmitGuess(s.ctx, "ghost", "", "")
	s.ErrorIs(err, model.ErrGuessFieldsRequired)
}

func (s *ControllerSuite) TestSubmitGuessRoomNotFound() {
	_, err := s.controller.SubmitGuess(s.ctx, "ghost", "b", "c")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestConcurrentGuessesResolveOnce() {
	roomID := s.assignedRoom()

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := model.PlayerID("c")
			if i%2 == 1 {
				target = "d"
			}
			_, errs[i] = s.controller.SubmitGuess(s.ctx, roomID, "b", target)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			s.ErrorIs(err, model.ErrAlreadySubmitted)
		}
	}
	s.Equal(1, successes)
}

// GetMyRole tests

func (s *ControllerSuite) TestGetMyRole() {
	roomID := s.assignedRoom()

	role, err := s.controller.GetMyRole(s.ctx, roomID, "c")
	s.Require().NoError(err)
	s.Equal(model.RoleChor, role)
}

func (s *ControllerSuite) TestGetMyRoleBeforeAssignment() {
	s.seedRoom("room-1", "a", "b")

	_, err := s.controller.GetMyRole(s.ctx, "room-1", "a")
	s.ErrorIs(err, model.ErrRolesNotAssigned)
}

func (s *ControllerSuite) TestGetMyRoleNonMemberIsForbidden() {
	roomID := s.assignedRoom()

	_, err := s.controller.GetMyRole(s.ctx, roomID, "stranger")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *ControllerSuite) TestGetMyRoleNonMemberBeforeAssignmentIsForbidden() {
	s.seedRoom("room-1", "a", "b")

	_, err := s.controller.GetMyRole(s.ctx, "room-1", "stranger")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *ControllerSuite) TestGetMyRoleMissingRoleIsNotFound() {
	room := s.seedRoom("room-1", "a", "b", "c", "d")
	room.Phase = model.RolesAssignedPhase{Roles: model.Roles{"a": model.RoleRaja, "b": model.RoleMantri, "c": model.RoleChor}}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	_, err := s.controller.GetMyRole(s.ctx, "room-1", "d")
	s.ErrorIs(err, model.ErrRoleNotFound)
	s.Equal(model.KindNotFound, model.KindOf(err))
}

func (s *ControllerSuite) TestGetMyRoleStillVisibleAfterResult() {
	roomID := s.assignedRoom()
	_, _ = s.controller.SubmitGuess(s.ctx, roomID, "b", "c")

	role, err := s.controller.GetMyRole(s.ctx, roomID, "a")
	s.Require().NoError(err)
	s.Equal(model.RoleRaja, role)
}

// GetResult tests

func (s *ControllerSuite) TestGetResultNotReady() {
	roomID := s.assignedRoom()

	_, err := s.controller.GetResult(s.ctx, roomID)
	s.ErrorIs(err, model.ErrResultNotReady)
}

func (s *ControllerSuite) TestGetResultLabelsPlayers() {
	roomID := s.assignedRoom()
	_, err := s.controller.SubmitGuess(s.ctx, roomID, "b", "d")
	s.Require().NoError(err)

	view, err := s.controller.GetResult(s.ctx, roomID)
	s.Require().NoError(err)

	s.Equal(model.RoleChor, view.Roles["c"])
	s.Equal(PlayerLabel{Username: "a", DisplayName: "A"}, view.Players["a"])
	s.Equal(model.Guess{By: "b", Guessed: "d"}, view.Guess)
	s.Equal(800, view.Result.Points["c"])
}

func (s *ControllerSuite) TestGetResultUnknownPlayer() {
	roomID := s.assignedRoom()
	_, _ = s.controller.SubmitGuess(s.ctx, roomID, "b", "c")
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "d"))

	view, err := s.controller.GetResult(s.ctx, roomID)
	s.Require().NoError(err)
	s.Equal(PlayerLabel{Username: UnknownUsername}, view.Players["d"])
	s.Len(view.Players, 4)
}

// GetLeaderboard tests

func (s *ControllerSuite) TestLeaderboardBeforeResult() {
	roomID := s.assignedRoom()

	entries, err := s.controller.GetLeaderboard(s.ctx, roomID)
	s.Require().NoError(err)

	s.Len(entries, 4)
	for i, name := range []string{"a", "b", "c", "d"} {
		s.Equal(model.PlayerID(name), entries[i].PlayerID)
		s.Nil(entries[i].LastRoundPoints)
	}
}

func (s *ControllerSuite) TestLeaderboardAfterResult() {
	roomID := s.assignedRoom()
	_, _ = s.controller.SubmitGuess(s.ctx, roomID, "b", "d")

	entries, err := s.controller.GetLeaderboard(s.ctx, roomID)
	s.Require().NoError(err)

	expected := []int{1000, 0, 800, 500}
	for i, entry := range entries {
		s.Require().NotNil(entry.LastRoundPoints)
		s.Equal(expected[i], *entry.LastRoundPoints)
	}
	s.Equal("B", entries[1].DisplayName)
}

func (s *ControllerSuite) TestLeaderboardRoomNotFound() {
	_, err := s.controller.GetLeaderboard(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// Distribution

func (s *ControllerSuite) TestRoleAssignmentIsUniform() {
	controller := NewController(s.storage, scoring.New(), s.clock, random.NewSeeded(20240101), nil, testutil.NopLogger())

	const trials = 4800
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		roomID := model.RoomID(fmt.Sprintf("room-%d", i))
		s.seedRoom(roomID, "a", "b", "c", "d")

		roles, err := controller.AssignRoles(s.ctx, roomID)
		s.Require().NoError(err)

		key := fmt.Sprintf("%s/%s/%s/%s", roles["a"], roles["b"], roles["c"], roles["d"])
		counts[key]++
	}

	// 24 permutations, 23 degrees of freedom; 60 is well past p=0.001
	s.Len(counts, 24)
	expected := float64(trials) / 24
	chiSquare := 0.0
	for _, observed := range counts {
		d := float64(observed) - expected
		chiSquare += d * d / expected
	}
	s.Less(chiSquare, 60.0)
}
