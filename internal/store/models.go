package store

import (
	"time"

	"gorm.io/datatypes"
)

type SessionModel struct {
	ID            string         `gorm:"column:id;primaryKey;type:TEXT"`
	Policy        string         `gorm:"column:policy;index"`
	SpecJSON      datatypes.JSON `gorm:"column:spec_json;type:TEXT"`
	Dataset       string         `gorm:"column:dataset"`
	Episodes      int            `gorm:"column:episodes"`
	MaxSteps      int            `gorm:"column:max_steps"`
	AverageReward float64        `gorm:"column:average_reward"`
	Wins          int            `gorm:"column:wins"`
	Losses        int            `gorm:"column:losses"`
	RewardsJSON   datatypes.JSON `gorm:"column:rewards_json;type:TEXT"`
	CreatedAt     time.Time      `gorm:"column:created_at;index"`
}

func (SessionModel) TableName() string { return "sessions" }

type CheckpointModel struct {
	Name        string         `gorm:"column:name;primaryKey;type:TEXT"`
	Kind        string         `gorm:"column:kind"`
	Updates     int            `gorm:"column:updates"`
	PayloadJSON datatypes.JSON `gorm:"column:payload_json;type:TEXT"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (CheckpointModel) TableName() string { return "checkpoints" }
