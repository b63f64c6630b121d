package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type sessionRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Phase     string    `gorm:"size:16;index"`
	Version   int       `gorm:"not null"`
	State     []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (sessionRecord) TableName() string { return "game_sessions" }

type PostgresStore struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// OpenPostgres connects a pgx pool and layers gorm on top of it.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("gorm: %w", err)
	}

	s, err := NewPostgresStore(ctx, db)
	if err != nil {
		pool.Close()
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// NewPostgresStore wraps an existing gorm handle and migrates the snapshot
// table.
func NewPostgresStore(ctx context.Context, db *gorm.DB) (*PostgresStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Put(ctx context.Context, snap Snapshot) error {
	state, err := json.Marshal(snap.State)
	if err != nil {
		return err
	}
	rec := sessionRecord{
		ID:        snap.SessionID,
		Phase:     string(snap.Phase),
		Version:   snap.Version,
		State:     state,
		UpdatedAt: snap.SavedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rec).Error
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{SessionID: rec.ID, Version: rec.Version, SavedAt: rec.UpdatedAt}
	if err := json.Unmarshal(rec.State, &snap.State); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", sessionID, err)
	}
	snap.Phase = snap.State.Phase
	return snap, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "id = ?", sessionID).Error
}

func (s *PostgresStore) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
