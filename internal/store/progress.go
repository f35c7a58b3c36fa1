package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
)

// ToggleTopicProgress flips the user's completion flag for a topic and
// returns the new state. The first toggle creates the row as completed.
// Going to completed stamps completed_at, going back clears it.
func (s *Store) ToggleTopicProgress(ctx context.Context, userID, topicID uint) (bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return false, err
	}

	var completed bool
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Progress
		if err := tx.Where("user_id = ? AND topic_id = ?", userID, topicID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		now := s.now()
		if len(existing) == 0 {
			completed = true
			return tx.Create(&models.Progress{
				UserID:      userID,
				TopicID:     topicID,
				Completed:   1,
				CompletedAt: &now,
			}).Error
		}

		completed = !existing[0].IsCompleted()
		updates := map[string]interface{}{"completed": 0, "completed_at": nil}
		if completed {
			updates["completed"] = 1
			updates["completed_at"] = now
		}
		return tx.Model(&models.Progress{}).Where("id = ?", existing[0].ID).Updates(updates).Error
	})
	if err != nil {
		return false, errors.Wrap(err, "toggle topic progress")
	}
	return completed, nil
}

func (s *Store) GetUserProgress(ctx context.Context, userID uint) []models.Progress {
	progress := []models.Progress{}
	if !s.read(ctx, "user progress", func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).Order("topic_id ASC").Find(&progress).Error
	}) {
		return []models.Progress{}
	}
	return progress
}
