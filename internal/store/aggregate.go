package store

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
)

// Percentage returns round(completed/total*100), or 0 when total is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// GetRoundProgress counts the topics under every mission of the round and how
// many of them the user has completed. Nothing is cached.
func (s *Store) GetRoundProgress(ctx context.Context, userID, roundID uint) models.RoundProgress {
	result := models.RoundProgress{RoundID: roundID}

	var topicIDs []uint
	var completed int64
	ok := s.read(ctx, "round progress", func(db *gorm.DB) error {
		var missionIDs []uint
		if err := db.Model(&models.Mission{}).Where("round_id = ?", roundID).Pluck("id", &missionIDs).Error; err != nil {
			return err
		}
		if len(missionIDs) == 0 {
			return nil
		}
		if err := db.Model(&models.Topic{}).Where("mission_id IN ?", missionIDs).Pluck("id", &topicIDs).Error; err != nil {
			return err
		}
		if len(topicIDs) == 0 {
			return nil
		}
		return db.Model(&models.Progress{}).
			Where("user_id = ? AND completed = ? AND topic_id IN ?", userID, 1, topicIDs).
			Count(&completed).Error
	})
	if !ok {
		return result
	}

	result.TotalTopics = len(topicIDs)
	result.CompletedTopics = int(completed)
	result.Percentage = Percentage(result.CompletedTopics, result.TotalTopics)
	return result
}

// GetAllRoundsProgress applies GetRoundProgress to every round in display order.
func (s *Store) GetAllRoundsProgress(ctx context.Context, userID uint) []models.RoundProgress {
	rounds := s.GetRounds(ctx)
	out := make([]models.RoundProgress, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, s.GetRoundProgress(ctx, userID, r.ID))
	}
	return out
}
