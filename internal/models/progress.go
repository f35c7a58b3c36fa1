package models

import "time"

// Progress is one user's completion flag for one topic. The unique index on
// (user_id, topic_id) keeps a single row per pair.
type Progress struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"userId" gorm:"not null;uniqueIndex:idx_progress_user_topic"`
	TopicID     uint       `json:"topicId" gorm:"not null;uniqueIndex:idx_progress_user_topic"`
	Completed   int        `json:"completed" gorm:"not null;default:0"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Progress) TableName() string {
	return "user_progress"
}

func (p *Progress) IsCompleted() bool {
	return p.Completed == 1
}

type ToggleProgressResponse struct {
	Completed bool `json:"completed"`
}
