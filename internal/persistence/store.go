// Package persistence is the durable client-side storage: a single-row
// sqlite database holding the session. It is the only state that survives
// a process restart.
package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chirp/internal/core"
)

// SessionRecord mirrors core.Session on disk.
type SessionRecord struct {
	ID        int64 `gorm:"primaryKey"`
	Token     string
	UserID    int64
	Username  string
	IsAdmin   bool
	UpdatedAt time.Time
}

func (SessionRecord) TableName() string {
	return "session"
}

type Store struct {
	Config *core.Config

	db *gorm.DB
}

func (s *Store) Init(_ context.Context) error {
	if err := os.MkdirAll(s.Config.StateDir, 0o700); err != nil {
		return err
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(s.Config.StateDir, "chirp.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}
	s.db = db

	return s.db.AutoMigrate(&SessionRecord{})
}

func (s *Store) Shutdown(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}

func (s *Store) Load(ctx context.Context) (*core.Session, error) {
	var record SessionRecord

	err := s.db.WithContext(ctx).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &core.Session{
		Token:    record.Token,
		UserID:   record.UserID,
		Username: record.Username,
		IsAdmin:  record.IsAdmin,
	}, nil
}

// Save replaces whatever is stored in one transaction, so a crash can
// never leave fields from two different sessions mixed.
func (s *Store) Save(ctx context.Context, session core.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&SessionRecord{}).Error; err != nil {
			return err
		}

		return tx.Create(&SessionRecord{
			ID:       1,
			Token:    session.Token,
			UserID:   session.UserID,
			Username: session.Username,
			IsAdmin:  session.IsAdmin,
		}).Error
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&SessionRecord{}).Error
}
