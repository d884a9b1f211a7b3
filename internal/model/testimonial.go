package model

import (
	"time"
)

// Testimonial 用户评价，success_rate 的数据来源
type Testimonial struct {
	ID                 uint      `json:"id" db:"id" gorm:"primaryKey"`
	GiftID             uint      `json:"gift_id" db:"gift_id" gorm:"index;not null"`
	ReviewerName       string    `json:"reviewer_name" db:"reviewer_name"`
	RelationshipLength string    `json:"relationship_length" db:"relationship_length"`
	PartnerRating      int       `json:"partner_rating" db:"partner_rating"` // 1-5
	TestimonialText    string    `json:"testimonial_text" db:"testimonial_text"`
	Occasion           string    `json:"occasion" db:"occasion"`
	HelpfulVotes       int       `json:"helpful_votes" db:"helpful_votes" gorm:"default:0"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
