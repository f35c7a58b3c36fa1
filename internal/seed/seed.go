// Package seed imports a course structure from JSON.
//
// The document is a list of rounds, each with its missions and their topics:
//
//	[{"nome": "Round 1", "missoes": [{"nome": "Mission 1", "topicos": [{"nome": "Topic 1"}]}]}]
//
// Every level is ordered by its position in the document, starting at 1.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/arnold/studytrack-api/internal/models"
)

type Round struct {
	Name     string    `json:"nome"`
	Missions []Mission `json:"missoes"`
}

type Mission struct {
	Name   string  `json:"nome"`
	Topics []Topic `json:"topicos"`
}

type Topic struct {
	Name string `json:"nome"`
}

type Stats struct {
	Rounds, Missions, Topics int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rounds, %d missions, %d topics", s.Rounds, s.Missions, s.Topics)
}

// Parse decodes and checks a course document.
func Parse(r io.Reader) ([]Round, error) {
	var course []Round
	if err := json.NewDecoder(r).Decode(&course); err != nil {
		return nil, errors.Wrap(err, "decode course")
	}

	for i, round := range course {
		if strings.TrimSpace(round.Name) == "" {
			return nil, errors.Errorf("round %d: name is required", i+1)
		}
		for j, mission := range round.Missions {
			if strings.TrimSpace(mission.Name) == "" {
				return nil, errors.Errorf("round %d mission %d: name is required", i+1, j+1)
			}
			for k, topic := range mission.Topics {
				if strings.TrimSpace(topic.Name) == "" {
					return nil, errors.Errorf("round %d mission %d topic %d: name is required", i+1, j+1, k+1)
				}
			}
		}
	}
	return course, nil
}

// resetOrder lists the tables cleared before a reset import, children first.
var resetOrder = []interface{}{
	&models.Progress{},
	&models.Attachment{},
	&models.Comment{},
	&models.Topic{},
	&models.Mission{},
	&models.Round{},
}

// Import inserts course in a single transaction. With reset, existing
// content, progress, attachments and comments are removed first.
func Import(ctx context.Context, db *gorm.DB, course []Round, reset bool) (Stats, error) {
	var stats Stats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reset {
			for _, model := range resetOrder {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return errors.Wrapf(err, "clear %T", model)
				}
			}
		}

		for i, r := range course {
			round := models.Round{Name: strings.TrimSpace(r.Name), Order: i + 1}
			if err := tx.Create(&round).Error; err != nil {
				return errors.Wrapf(err, "insert round %q", r.Name)
			}
			stats.Rounds++

			for j, m := range r.Missions {
				mission := models.Mission{RoundID: round.ID, Name: strings.TrimSpace(m.Name), Order: j + 1}
				if err := tx.Create(&mission).Error; err != nil {
					return errors.Wrapf(err, "insert mission %q", m.Name)
				}
				stats.Missions++

				for k, t := range m.Topics {
					topic := models.Topic{MissionID: mission.ID, Name: strings.TrimSpace(t.Name), Order: k + 1}
					if err := tx.Create(&topic).Error; err != nil {
						return errors.Wrapf(err, "insert topic %q", t.Name)
					}
					stats.Topics++
				}
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}
