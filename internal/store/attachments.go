package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
)

func (s *Store) GetAttachmentsByTopicID(ctx context.Context, topicID uint) []models.Attachment {
	attachments := []models.Attachment{}
	if !s.read(ctx, "attachments", func(db *gorm.DB) error {
		return db.Where("topic_id = ?", topicID).Order(newestFirst).Find(&attachments).Error
	}) {
		return []models.Attachment{}
	}
	return attachments
}

// GetAttachmentsByMissionID lists the attachments of every topic in the
// mission, newest first.
func (s *Store) GetAttachmentsByMissionID(ctx context.Context, missionID uint) []models.Attachment {
	attachments := []models.Attachment{}
	if !s.read(ctx, "mission attachments", func(db *gorm.DB) error {
		topics := db.Model(&models.Topic{}).Select("id").Where("mission_id = ?", missionID)
		return db.Where("topic_id IN (?)", topics).Order(newestFirst).Find(&attachments).Error
	}) {
		return []models.Attachment{}
	}
	return attachments
}

func (s *Store) GetAttachmentsByRoundID(ctx context.Context, roundID uint) []models.Attachment {
	attachments := []models.Attachment{}
	if !s.read(ctx, "round attachments", func(db *gorm.DB) error {
		missions := db.Model(&models.Mission{}).Select("id").Where("round_id = ?", roundID)
		topics := db.Model(&models.Topic{}).Select("id").Where("mission_id IN (?)", missions)
		return db.Where("topic_id IN (?)", topics).Order(newestFirst).Find(&attachments).Error
	}) {
		return []models.Attachment{}
	}
	return attachments
}

// TopicExists reports whether the topic row is present. Unlike the read
// methods it surfaces database errors, since callers gate writes on it.
func (s *Store) TopicExists(ctx context.Context, topicID uint) (bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return false, err
	}
	ok, err := exists(db, &models.Topic{}, topicID)
	return ok, errors.Wrap(err, "check topic")
}

func (s *Store) InsertAttachment(ctx context.Context, a *models.Attachment) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Create(a).Error, "create attachment")
}

// DeleteAttachment removes the row and returns it so the caller can release
// the stored object. A missing row returns nil, nil.
func (s *Store) DeleteAttachment(ctx context.Context, id uint) (*models.Attachment, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.Attachment
	if err := db.Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find attachment")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := db.Delete(&rows[0]).Error; err != nil {
		return nil, errors.Wrap(err, "delete attachment")
	}
	return &rows[0], nil
}
