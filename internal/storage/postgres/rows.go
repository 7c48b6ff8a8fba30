package postgres

import (
	"time"

	"github.com/mcoot/rajamantri/internal/model"
)

type playerRow struct {
	ID          string    `gorm:"primaryKey"`
	Username    string    `gorm:"not null"`
	DisplayName string    `gorm:"not null;default:''"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
}

func (playerRow) TableName() string { return "players" }

type roomRow struct {
	ID          string             `gorm:"primaryKey"`
	CreatorID   string             `gorm:"not null"`
	Status      string             `gorm:"not null;index"`
	Roles       model.Roles        `gorm:"type:jsonb;serializer:json"`
	MantriGuess *model.Guess       `gorm:"type:jsonb;serializer:json"`
	RoundResult *model.RoundResult `gorm:"type:jsonb;serializer:json"`
	Round       int                `gorm:"not null;default:1"`
	Members     []roomMemberRow    `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime:false"`
}

func (roomRow) TableName() string { return "rooms" }

// roomMemberRow is one roster entry; Seq preserves join order
type roomMemberRow struct {
	ID       uint      `gorm:"primaryKey"`
	RoomID   string    `gorm:"not null;uniqueIndex:idx_room_member"`
	PlayerID string    `gorm:"not null;uniqueIndex:idx_room_member"`
	Seq      int       `gorm:"not null"`
	JoinedAt time.Time `gorm:"not null"`
}

func (roomMemberRow) TableName() string { return "room_members" }

func playerToRow(p *model.Player) playerRow {
	return playerRow{
		ID:          string(p.ID),
		Username:    p.Username,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}
}

func (r playerRow) toModel() *model.Player {
	return &model.Player{
		ID:          model.PlayerID(r.ID),
		Username:    r.Username,
		DisplayName: r.DisplayName,
		CreatedAt:   r.CreatedAt,
	}
}

func roomToRow(room *model.Room) roomRow {
	rec := room.Record()
	row := roomRow{
		ID:          string(rec.ID),
		CreatorID:   string(rec.CreatorID),
		Status:      string(rec.Status),
		Roles:       rec.Roles,
		MantriGuess: rec.MantriGuess,
		RoundResult: rec.RoundResult,
		Round:       rec.Round,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Members:     make([]roomMemberRow, len(rec.Members)),
	}
	for i, m := range rec.Members {
		row.Members[i] = roomMemberRow{
			RoomID:   row.ID,
			PlayerID: string(m.PlayerID),
			Seq:      i,
			JoinedAt: m.JoinedAt,
		}
	}
	return row
}

func (r roomRow) toModel() (*model.Room, error) {
	rec := model.RoomRecord{
		ID:          model.RoomID(r.ID),
		CreatorID:   model.PlayerID(r.CreatorID),
		Status:      model.RoomStatus(r.Status),
		Members:     make([]model.RoomMember, len(r.Members)),
		Roles:       r.Roles,
		MantriGuess: r.MantriGuess,
		RoundResult: r.RoundResult,
		Round:       r.Round,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for i, m := range r.Members {
		rec.Members[i] = model.RoomMember{PlayerID: model.PlayerID(m.PlayerID), JoinedAt: m.JoinedAt}
	}
	return model.RoomFromRecord(rec)
}
