package model

import (
	"time"

	"gorm.io/datatypes"
)

// AnalyticsEvent 行为埋点事件（只追加）
type AnalyticsEvent struct {
	ID        string         `json:"id" db:"id" gorm:"primaryKey;size:36"`
	EventType string         `json:"event_type" db:"event_type" gorm:"index;size:100;not null"`
	GiftID    *uint          `json:"gift_id,omitempty" db:"gift_id"`
	SessionID string         `json:"session_id" db:"session_id" gorm:"index;size:100"`
	Metadata  datatypes.JSON `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at" gorm:"index"`
}
