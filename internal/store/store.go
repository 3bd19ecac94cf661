package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fuel-rl/internal/agent"
	"fuel-rl/internal/driver"
	"fuel-rl/internal/policy"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("not found")

// Store persists evaluation sessions and named learner checkpoints in sqlite.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewFromDB(db)
}

func NewFromDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	if err := db.AutoMigrate(&SessionModel{}, &CheckpointModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SessionRecord is a stored evaluation session.
type SessionRecord struct {
	ID            string      `json:"id"`
	Policy        string      `json:"policy"`
	Spec          policy.Spec `json:"spec"`
	Dataset       string      `json:"dataset"`
	Episodes      int         `json:"episodes"`
	MaxSteps      int         `json:"max_steps"`
	AverageReward float64     `json:"average_reward"`
	Wins          int         `json:"wins"`
	Losses        int         `json:"losses"`
	Rewards       []float64   `json:"rewards"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewSessionRecord captures a finished session. The ID is assigned on save.
func NewSessionRecord(spec policy.Spec, dataset string, maxSteps int, s *driver.Summary) SessionRecord {
	return SessionRecord{
		Policy:        s.Policy,
		Spec:          spec,
		Dataset:       dataset,
		Episodes:      len(s.Episodes),
		MaxSteps:      maxSteps,
		AverageReward: s.AverageReward,
		Wins:          s.Wins,
		Losses:        s.Losses,
		Rewards:       s.Rewards(),
	}
}

// SaveSession inserts rec, filling ID and CreatedAt when empty.
func (s *Store) SaveSession(ctx context.Context, rec *SessionRecord) error {
	if rec == nil {
		return errors.New("session cannot be nil")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	spec, err := json.Marshal(rec.Spec)
	if err != nil {
		return fmt.Errorf("encode policy spec: %w", err)
	}
	rewards, err := json.Marshal(rec.Rewards)
	if err != nil {
		return fmt.Errorf("encode rewards: %w", err)
	}
	m := SessionModel{
		ID:            rec.ID,
		Policy:        rec.Policy,
		SpecJSON:      spec,
		Dataset:       rec.Dataset,
		Episodes:      rec.Episodes,
		MaxSteps:      rec.MaxSteps,
		AverageReward: rec.AverageReward,
		Wins:          rec.Wins,
		Losses:        rec.Losses,
		RewardsJSON:   rewards,
		CreatedAt:     rec.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *Store) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	var m SessionModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return fromSessionModel(m)
}

// ListSessions returns the newest sessions first; limit <= 0 means all.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	var rows []SessionModel
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]SessionRecord, 0, len(rows))
	for _, m := range rows {
		rec, err := fromSessionModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func fromSessionModel(m SessionModel) (*SessionRecord, error) {
	rec := &SessionRecord{
		ID:            m.ID,
		Policy:        m.Policy,
		Dataset:       m.Dataset,
		Episodes:      m.Episodes,
		MaxSteps:      m.MaxSteps,
		AverageReward: m.AverageReward,
		Wins:          m.Wins,
		Losses:        m.Losses,
		CreatedAt:     m.CreatedAt,
	}
	if len(m.SpecJSON) > 0 {
		if err := json.Unmarshal(m.SpecJSON, &rec.Spec); err != nil {
			return nil, fmt.Errorf("session %s spec: %w", m.ID, err)
		}
	}
	if len(m.RewardsJSON) > 0 {
		if err := json.Unmarshal(m.RewardsJSON, &rec.Rewards); err != nil {
			return nil, fmt.Errorf("session %s rewards: %w", m.ID, err)
		}
	}
	return rec, nil
}

// CheckpointInfo describes a stored checkpoint without its weights.
type CheckpointInfo struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Updates   int       `json:"updates"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveCheckpoint stores q under name, replacing any previous checkpoint
// with that name.
func (s *Store) SaveCheckpoint(ctx context.Context, name string, q *agent.LinearQ) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("checkpoint name is required")
	}
	if q == nil {
		return errors.New("checkpoint cannot be nil")
	}
	c := q.Checkpoint()
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	now := time.Now().UTC()
	m := CheckpointModel{
		Name:        name,
		Kind:        c.Kind,
		Updates:     c.Updates,
		PayloadJSON: payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "updates", "payload_json", "updated_at"}),
	}).Create(&m).Error
}

func (s *Store) LoadCheckpoint(ctx context.Context, name string) (*agent.LinearQ, error) {
	var m CheckpointModel
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checkpoint %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var c agent.Checkpoint
	if err := json.Unmarshal(m.PayloadJSON, &c); err != nil {
		return nil, fmt.Errorf("checkpoint %q: %w", name, err)
	}
	return agent.FromCheckpoint(c)
}

func (s *Store) ListCheckpoints(ctx context.Context) ([]CheckpointInfo, error) {
	var rows []CheckpointModel
	err := s.db.WithContext(ctx).
		Select("name", "kind", "updates", "updated_at").
		Order("updated_at DESC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]CheckpointInfo, 0, len(rows))
	for _, m := range rows {
		out = append(out, CheckpointInfo{Name: m.Name, Kind: m.Kind, Updates: m.Updates, UpdatedAt: m.UpdatedAt})
	}
	return out, nil
}

// CheckpointLoader resolves qlearn checkpoint references against the store
// first and falls back to the filesystem.
func (s *Store) CheckpointLoader(ctx context.Context) func(ref string) (*agent.LinearQ, error) {
	return func(ref string) (*agent.LinearQ, error) {
		q, err := s.LoadCheckpoint(ctx, ref)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return agent.LoadFile(ref)
	}
}
