package model

import (
	"time"
)

// Gift 礼物模型
type Gift struct {
	ID                uint      `json:"id" db:"id" gorm:"primaryKey"`
	Title             string    `json:"title" db:"title" gorm:"not null"`
	Description       string    `json:"description" db:"description"`
	Price             float64   `json:"price" db:"price" gorm:"index"`
	Category          string    `json:"category" db:"category" gorm:"index;size:50"`
	Occasion          string    `json:"occasion" db:"occasion" gorm:"size:50"`
	RelationshipStage string    `json:"relationship_stage,omitempty" db:"relationship_stage" gorm:"size:50"`
	ImageURL          string    `json:"image_url" db:"image_url"`
	AffiliateURL      string    `json:"affiliate_url" db:"affiliate_url"`
	Retailer          string    `json:"retailer" db:"retailer"`
	DeliveryDays      int       `json:"delivery_days" db:"delivery_days"`
	SuccessRate       int       `json:"success_rate" db:"success_rate" gorm:"index"` // 由评价聚合得出
	TotalReviews      int       `json:"total_reviews" db:"total_reviews"`            // 由评价聚合得出
	IsActive          bool      `json:"is_active" db:"is_active" gorm:"index;not null"`
	CreatedAt         time.Time `json:"created_at" db:"created_at" gorm:"index"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryStats 分类聚合统计
type CategoryStats struct {
	Category       string  `json:"category" db:"category"`
	Count          int     `json:"count" db:"count"`
	MinPrice       float64 `json:"min_price" db:"min_price"`
	MaxPrice       float64 `json:"max_price" db:"max_price"`
	AvgSuccessRate float64 `json:"avg_success_rate" db:"avg_success_rate"`
}
