// Package store persists the study hierarchy (rounds, missions, topics),
// attachments, comments, users and the per-user progress ledger.
//
// Read methods never fail: when the database is unavailable or a query
// errors they log a warning and return an empty result so callers can still
// render. Write methods return ErrUnavailable instead.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/logger"
)

var (
	ErrUnavailable    = errors.New("database not available")
	ErrParentNotFound = errors.New("parent not found")
	ErrNoChanges      = errors.New("no fields to update")
)

type Store struct {
	db  *gorm.DB
	log logger.Logger
	now func() time.Time
}

// New returns a Store over db. A nil db yields a Store whose reads are empty
// and whose writes fail with ErrUnavailable.
func New(db *gorm.DB, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop{}
	}
	return &Store{db: db, log: log, now: time.Now}
}

func (s *Store) Available() bool {
	return s.db != nil
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	return s.db.WithContext(ctx), nil
}

// read runs q and reports whether it succeeded; failures are logged.
func (s *Store) read(ctx context.Context, what string, q func(db *gorm.DB) error) bool {
	db, err := s.conn(ctx)
	if err == nil {
		err = q(db)
	}
	if err != nil {
		s.log.Warn("cannot read "+what, "err", err)
		return false
	}
	return true
}

// nextOrder returns one past the highest sort_order among rows matching scope.
func nextOrder(db *gorm.DB, model interface{}, scope func(*gorm.DB) *gorm.DB) (int, error) {
	q := db.Model(model).Select("COALESCE(MAX(sort_order), 0) + 1")
	if scope != nil {
		q = scope(q)
	}
	var next int
	if err := q.Row().Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func contentUpdates(name, description *string, order *int) map[string]interface{} {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if order != nil {
		updates["sort_order"] = *order
	}
	return updates
}

func exists(db *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
