package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
)

const byOrder = "sort_order ASC, id ASC"

func (s *Store) GetRounds(ctx context.Context) []models.Round {
	rounds := []models.Round{}
	if !s.read(ctx, "rounds", func(db *gorm.DB) error {
		return db.Order(byOrder).Find(&rounds).Error
	}) {
		return []models.Round{}
	}
	return rounds
}

func (s *Store) GetRoundByID(ctx context.Context, id uint) *models.Round {
	var rounds []models.Round
	s.read(ctx, "round", func(db *gorm.DB) error {
		return db.Where("id = ?", id).Limit(1).Find(&rounds).Error
	})
	if len(rounds) == 0 {
		return nil
	}
	return &rounds[0]
}

func (s *Store) GetMissionsByRoundID(ctx context.Context, roundID uint) []models.Mission {
	missions := []models.Mission{}
	if !s.read(ctx, "missions", func(db *gorm.DB) error {
		return db.Where("round_id = ?", roundID).Order(byOrder).Find(&missions).Error
	}) {
		return []models.Mission{}
	}
	return missions
}

func (s *Store) GetMissionByID(ctx context.Context, id uint) *models.Mission {
	var missions []models.Mission
	s.read(ctx, "mission", func(db *gorm.DB) error {
		return db.Where("id = ?", id).Limit(1).Find(&missions).Error
	})
	if len(missions) == 0 {
		return nil
	}
	return &missions[0]
}

func (s *Store) GetTopicsByMissionID(ctx context.Context, missionID uint) []models.Topic {
	topics := []models.Topic{}
	if !s.read(ctx, "topics", func(db *gorm.DB) error {
		return db.Where("mission_id = ?", missionID).Order(byOrder).Find(&topics).Error
	}) {
		return []models.Topic{}
	}
	s.log.Debug("fetched topics", "missionId", missionID, "count", len(topics))
	return topics
}

func (s *Store) GetTopicByID(ctx context.Context, id uint) *models.Topic {
	var topics []models.Topic
	s.read(ctx, "topic", func(db *gorm.DB) error {
		return db.Where("id = ?", id).Limit(1).Find(&topics).Error
	})
	if len(topics) == 0 {
		return nil
	}
	return &topics[0]
}

// CreateRound inserts a round. A nil order appends it after the last round.
func (s *Store) CreateRound(ctx context.Context, req models.CreateRoundRequest) (uint, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	round := models.Round{Name: req.Name, Description: req.Description}
	if req.Order != nil {
		round.Order = *req.Order
	} else if round.Order, err = nextOrder(db, &models.Round{}, nil); err != nil {
		return 0, errors.Wrap(err, "next round order")
	}

	if err := db.Create(&round).Error; err != nil {
		return 0, errors.Wrap(err, "create round")
	}
	return round.ID, nil
}

func (s *Store) CreateMission(ctx context.Context, req models.CreateMissionRequest) (uint, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	ok, err := exists(db, &models.Round{}, req.RoundID)
	if err != nil {
		return 0, errors.Wrap(err, "check round")
	}
	if !ok {
		return 0, errors.Wrapf(ErrParentNotFound, "round %d", req.RoundID)
	}

	mission := models.Mission{RoundID: req.RoundID, Name: req.Name, Description: req.Description}
	if req.Order != nil {
		mission.Order = *req.Order
	} else if mission.Order, err = nextOrder(db, &models.Mission{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("round_id = ?", req.RoundID)
	}); err != nil {
		return 0, errors.Wrap(err, "next mission order")
	}

	if err := db.Create(&mission).Error; err != nil {
		return 0, errors.Wrap(err, "create mission")
	}
	return mission.ID, nil
}

func (s *Store) CreateTopic(ctx context.Context, req models.CreateTopicRequest) (uint, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	ok, err := exists(db, &models.Mission{}, req.MissionID)
	if err != nil {
		return 0, errors.Wrap(err, "check mission")
	}
	if !ok {
		return 0, errors.Wrapf(ErrParentNotFound, "mission %d", req.MissionID)
	}

	topic := models.Topic{MissionID: req.MissionID, Name: req.Name, Description: req.Description}
	if req.Order != nil {
		topic.Order = *req.Order
	} else if topic.Order, err = nextOrder(db, &models.Topic{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("mission_id = ?", req.MissionID)
	}); err != nil {
		return 0, errors.Wrap(err, "next topic order")
	}

	if err := db.Create(&topic).Error; err != nil {
		return 0, errors.Wrap(err, "create topic")
	}
	return topic.ID, nil
}

func (s *Store) UpdateRound(ctx context.Context, req models.UpdateRoundRequest) error {
	return s.updateContent(ctx, &models.Round{}, req.ID, contentUpdates(req.Name, req.Description, req.Order))
}

func (s *Store) UpdateMission(ctx context.Context, req models.UpdateMissionRequest) error {
	return s.updateContent(ctx, &models.Mission{}, req.ID, contentUpdates(req.Name, req.Description, req.Order))
}

func (s *Store) UpdateTopic(ctx context.Context, req models.UpdateTopicRequest) error {
	return s.updateContent(ctx, &models.Topic{}, req.ID, contentUpdates(req.Name, req.Description, req.Order))
}

func (s *Store) updateContent(ctx context.Context, model interface{}, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return ErrNoChanges
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Model(model).Where("id = ?", id).Updates(updates).Error, "update content")
}

// DeleteRound removes the round and everything under it in one transaction.
// It returns the removed attachments so their stored objects can be released.
func (s *Store) DeleteRound(ctx context.Context, id uint) ([]models.Attachment, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var removed []models.Attachment
	err = db.Transaction(func(tx *gorm.DB) error {
		var missionIDs []uint
		if err := tx.Model(&models.Mission{}).Where("round_id = ?", id).Pluck("id", &missionIDs).Error; err != nil {
			return err
		}
		if len(missionIDs) > 0 {
			if removed, err = deleteMissions(tx, missionIDs); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Round{}).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "delete round")
	}
	return removed, nil
}

// DeleteMission removes the mission with its topics, comments and the
// progress and attachment rows of those topics.
func (s *Store) DeleteMission(ctx context.Context, id uint) ([]models.Attachment, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var removed []models.Attachment
	err = db.Transaction(func(tx *gorm.DB) error {
		removed, err = deleteMissions(tx, []uint{id})
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "delete mission")
	}
	return removed, nil
}

// deleteMissions deletes leaves first: progress and attachments, then
// topics, then comments and missions.
func deleteMissions(tx *gorm.DB, missionIDs []uint) ([]models.Attachment, error) {
	var topicIDs []uint
	if err := tx.Model(&models.Topic{}).Where("mission_id IN ?", missionIDs).Pluck("id", &topicIDs).Error; err != nil {
		return nil, err
	}

	var attachments []models.Attachment
	if len(topicIDs) > 0 {
		if err := tx.Where("topic_id IN ?", topicIDs).Find(&attachments).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("topic_id IN ?", topicIDs).Delete(&models.Attachment{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("topic_id IN ?", topicIDs).Delete(&models.Progress{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("id IN ?", topicIDs).Delete(&models.Topic{}).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Where("mission_id IN ?", missionIDs).Delete(&models.Comment{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", missionIDs).Delete(&models.Mission{}).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// DeleteTopic removes only the topic row. Attachments and progress rows that
// reference it are retained.
func (s *Store) DeleteTopic(ctx context.Context, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Where("id = ?", id).Delete(&models.Topic{}).Error, "delete topic")
}
