package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/rajamantri/internal/model"
	"github.com/mcoot/rajamantri/internal/storage"
	"github.com/mcoot/rajamantri/internal/storage/lock"
)

// Storage is a PostgreSQL implementation of the storage interface backed by GORM.
// Room locks are held in-process, so a database may only be served by one instance.
type Storage struct {
	db    *gorm.DB
	locks *lock.Keyed[model.RoomID]
}

// New opens a connection pool and migrates the schema
func New(cfg Config) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return NewWithDB(db)
}

// NewWithDB wraps an existing GORM handle and migrates the schema
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&playerRow{}, &roomRow{}, &roomMemberRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Storage{
		db:    db,
		locks: lock.NewKeyed[model.RoomID](),
	}, nil
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	row := playerToRow(player)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) GetPlayers(ctx context.Context, ids []model.PlayerID) (map[model.PlayerID]*model.Player, error) {
	result := make(map[model.PlayerID]*model.Player, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}

	var rows []playerRow
	if err := s.db.WithContext(ctx).Where("id IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[model.PlayerID(row.ID)] = row.toModel()
	}
	return result, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.db.WithContext(ctx).Delete(&playerRow{}, "id = ?", string(id)).Error
}

// Room operations

// SaveRoom upserts the room and replaces its roster in one transaction
func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	row := roomToRow(room)
	members := row.Members
	row.Members = nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&row).Error
		if err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", row.ID).Delete(&roomMemberRow{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	var row roomRow
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq")
		}).
		First(&row, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}
	return row.toModel()
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", string(id)).Delete(&roomMemberRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&roomRow{}, "id = ?", string(id)).Error
	})
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&roomRow{}).Where("id = ?", string(id)).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Locking

func (s *Storage) LockRoom(ctx context.Context, id model.RoomID) (func(), error) {
	return s.locks.Lock(ctx, id)
}
