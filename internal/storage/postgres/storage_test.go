package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/rajamantri/internal/model"
)

const (
	postgresImage   = "postgres"
	postgresTag     = "16-alpine"
	postgresPort    = "5432/tcp"
	expireSeconds   = 120
	maxWaitDuration = 120 * time.Second
)

type StorageSuite struct {
	suite.Suite
	pool     *dockertest.Pool
	resource *dockertest.Resource
	storage  *Storage
	ctx      context.Context
}

func TestStorageSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container tests in short mode")
	}
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupSuite() {
	pool, err := dockertest.NewPool("")
	if err != nil {
		s.T().Skipf("could not connect to docker: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		s.T().Skipf("docker not available: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=rajamantri",
		},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	s.Require().NoError(err, "could not start postgres")

	// never returns error
	_ = resource.Expire(expireSeconds)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s/rajamantri?sslmode=disable", resource.GetHostPort(postgresPort))

	pool.MaxWait = maxWaitDuration
	var db *gorm.DB
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(pgdriver.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if openErr != nil {
			return openErr
		}
		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}
		return sqlDB.Ping()
	})
	if err != nil {
		_ = pool.Purge(resource)
		s.Require().NoError(err, "could not connect to postgres")
	}

	s.pool = pool
	s.resource = resource
	s.storage, err = NewWithDB(db)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownSuite() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.pool != nil && s.resource != nil {
		_ = s.pool.Purge(s.resource)
	}
}

func (s *StorageSuite) SetupTest() {
	s.Require().NoError(s.storage.db.Exec("TRUNCATE room_members, rooms, players").Error)
}

func (s *StorageSuite) TestSaveAndGetPlayer() {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	player := &model.Player{ID: "p1", Username: "alice", DisplayName: "Alice", CreatedAt: created}

	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	retrieved, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal("Alice", retrieved.DisplayName)
	s.True(created.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestSavePlayerUpserts() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p1", Username: "alice"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p1", Username: "alice", DisplayName: "Al"}))

	retrieved, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Al", retrieved.DisplayName)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayers() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "p1", Username: "alice"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: "p2", Username: "bob"})

	players, err := s.storage.GetPlayers(s.ctx, []model.PlayerID{"p1", "p2", "ghost"})
	s.Require().NoError(err)
	s.Len(players, 2)
	s.Equal("bob", players["p2"].Username)
}

func (s *StorageSuite) TestRoomLifecycleRoundTrip() {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	room := &model.Room{
		ID:        "room-1",
		CreatorID: "p1",
		Members:   []model.RoomMember{{PlayerID: "p1", JoinedAt: now}},
		Phase:     model.WaitingPhase{},
		Round:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	// Grow the roster out of insertion-id order and resolve the round
	room.Members = append(room.Members,
		model.RoomMember{PlayerID: "p4", JoinedAt: now.Add(time.Second)},
		model.RoomMember{PlayerID: "p2", JoinedAt: now.Add(2 * time.Second)},
		model.RoomMember{PlayerID: "p3", JoinedAt: now.Add(3 * time.Second)},
	)
	room.Phase = model.ResolvedPhase{
		Roles: model.Roles{"p1": model.RoleRaja, "p4": model.RoleMantri, "p2": model.RoleChor, "p3": model.RoleSipahi},
		Guess: model.Guess{By: "p4", Guessed: "p2"},
		Result: model.RoundResult{
			Correct: true,
			Note:    "Mantri guessed correctly",
			Points:  map[model.PlayerID]int{"p1": 1000, "p4": 800, "p2": 0, "p3": 500},
		},
	}
	room.UpdatedAt = now.Add(time.Minute)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p1", "p4", "p2", "p3"}, retrieved.MemberIDs())
	s.Equal(model.RoomStatusResult, retrieved.Status())
	s.True(room.UpdatedAt.Equal(retrieved.UpdatedAt))

	phase, ok := retrieved.Phase.(model.ResolvedPhase)
	s.Require().True(ok)
	s.Equal(model.PlayerID("p2"), phase.Guess.Guessed)
	s.True(phase.Result.Correct)
	s.Equal(500, phase.Result.Points["p3"])
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExistsAndDelete() {
	room := &model.Room{ID: "room-1", CreatorID: "p1", Members: []model.RoomMember{{PlayerID: "p1"}}, Phase: model.WaitingPhase{}, Round: 1}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	exists, err := s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "room-1"))

	exists, err = s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.False(exists)
}
