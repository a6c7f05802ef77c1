package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// stateRow maps the app_state table created by the goose migrations
type stateRow struct {
	SlotKey   string    `gorm:"column:slot_key;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (stateRow) TableName() string {
	return "app_state"
}

// GormSlot stores the payload as one row of app_state in SQLite or PostgreSQL
type GormSlot struct {
	db  *gorm.DB
	key string
	now func() time.Time
}

// NewGormSlot creates a slot over an already migrated database
func NewGormSlot(db *gorm.DB, key string) *GormSlot {
	return &GormSlot{
		db:  db,
		key: key,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Read implements Slot
func (s *GormSlot) Read(ctx context.Context) ([]byte, bool, error) {
	var row stateRow
	err := s.db.WithContext(ctx).Where("slot_key = ?", s.key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read slot %s: %w", s.key, err)
	}
	return []byte(row.Payload), true, nil
}

// Write implements Slot
func (s *GormSlot) Write(ctx context.Context, payload []byte) error {
	row := stateRow{
		SlotKey:   s.key,
		Payload:   string(payload),
		UpdatedAt: s.now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", s.key, err)
	}
	return nil
}

// Ping implements Pinger
func (s *GormSlot) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close implements Slot
func (s *GormSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
