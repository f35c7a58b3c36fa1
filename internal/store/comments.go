package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
)

const newestFirst = "created_at DESC, id DESC"

// GetCommentsByMissionID returns the mission's comments, newest first, with
// their authors preloaded.
func (s *Store) GetCommentsByMissionID(ctx context.Context, missionID uint) []models.Comment {
	comments := []models.Comment{}
	if !s.read(ctx, "comments", func(db *gorm.DB) error {
		return db.Where("mission_id = ?", missionID).
			Preload("User").
			Order(newestFirst).
			Find(&comments).Error
	}) {
		return []models.Comment{}
	}
	return comments
}

func (s *Store) AddComment(ctx context.Context, missionID, userID uint, content string) (uint, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	ok, err := exists(db, &models.Mission{}, missionID)
	if err != nil {
		return 0, errors.Wrap(err, "check mission")
	}
	if !ok {
		return 0, errors.Wrapf(ErrParentNotFound, "mission %d", missionID)
	}

	comment := models.Comment{MissionID: missionID, UserID: userID, Content: content}
	if err := db.Create(&comment).Error; err != nil {
		return 0, errors.Wrap(err, "create comment")
	}
	return comment.ID, nil
}
