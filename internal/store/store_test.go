package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/arnold/studytrack-api/internal/database"
	"github.com/arnold/studytrack-api/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(url, logger.Discard)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return New(db, nil)
}

// topicProgress returns the user's progress row for a topic, or nil.
func topicProgress(t *testing.T, s *Store, userID, topicID uint) *models.Progress {
	t.Helper()
	var rows []models.Progress
	require.NoError(t, s.db.Where("user_id = ? AND topic_id = ?", userID, topicID).Find(&rows).Error)
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}

func countRows(t *testing.T, s *Store, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

type tree struct {
	round    uint
	missions []uint
	topics   []uint
}

// seedTree creates one round with the given number of topics per mission.
func seedTree(t *testing.T, s *Store, name string, topicsPerMission ...int) tree {
	t.Helper()
	ctx := context.Background()

	roundID, err := s.CreateRound(ctx, models.CreateRoundRequest{Name: name})
	require.NoError(t, err)
	tr := tree{round: roundID}

	for i, n := range topicsPerMission {
		missionID, err := s.CreateMission(ctx, models.CreateMissionRequest{
			RoundID: roundID,
			Name:    fmt.Sprintf("%s-M%d", name, i+1),
		})
		require.NoError(t, err)
		tr.missions = append(tr.missions, missionID)

		for j := 0; j < n; j++ {
			topicID, err := s.CreateTopic(ctx, models.CreateTopicRequest{
				MissionID: missionID,
				Name:      fmt.Sprintf("%s-M%d-T%d", name, i+1, j+1),
			})
			require.NoError(t, err)
			tr.topics = append(tr.topics, topicID)
		}
	}
	return tr
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestCreateAssignsOrderAndListsInOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRound(ctx, models.CreateRoundRequest{Name: "Second", Order: intPtr(5)})
	require.NoError(t, err)
	second, err := s.CreateRound(ctx, models.CreateRoundRequest{Name: "First", Order: intPtr(1)})
	require.NoError(t, err)
	appended, err := s.CreateRound(ctx, models.CreateRoundRequest{Name: "Last"})
	require.NoError(t, err)

	rounds := s.GetRounds(ctx)
	require.Len(t, rounds, 3)
	assert.Equal(t, []uint{second, first, appended}, []uint{rounds[0].ID, rounds[1].ID, rounds[2].ID})
	assert.Equal(t, 6, rounds[2].Order)
}

func TestChildOrderIsScopedToParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedTree(t, s, "A", 3)
	b := seedTree(t, s, "B", 1)

	topicsA := s.GetTopicsByMissionID(ctx, a.missions[0])
	require.Len(t, topicsA, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{topicsA[0].Order, topicsA[1].Order, topicsA[2].Order})

	topicsB := s.GetTopicsByMissionID(ctx, b.missions[0])
	require.Len(t, topicsB, 1)
	assert.Equal(t, 1, topicsB[0].Order)
}

func TestCreateUnderMissingParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateMission(ctx, models.CreateMissionRequest{RoundID: 99, Name: "orphan"})
	assert.Equal(t, ErrParentNotFound, errors.Cause(err))

	_, err = s.CreateTopic(ctx, models.CreateTopicRequest{MissionID: 99, Name: "orphan"})
	assert.Equal(t, ErrParentNotFound, errors.Cause(err))
}

func TestUpdateContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr := seedTree(t, s, "R", 1)

	require.NoError(t, s.UpdateRound(ctx, models.UpdateRoundRequest{
		ID:          tr.round,
		Name:        strPtr("Renamed"),
		Description: strPtr("about"),
		Order:       intPtr(9),
	}))
	round := s.GetRoundByID(ctx, tr.round)
	require.NotNil(t, round)
	assert.Equal(t, "Renamed", round.Name)
	assert.Equal(t, "about", *round.Description)
	assert.Equal(t, 9, round.Order)

	require.NoError(t, s.UpdateTopic(ctx, models.UpdateTopicRequest{ID: tr.topics[0], Name: strPtr("T")}))
	assert.Equal(t, "T", s.GetTopicByID(ctx, tr.topics[0]).Name)

	assert.Equal(t, ErrNoChanges, s.UpdateMission(ctx, models.UpdateMissionRequest{ID: tr.missions[0]}))
}

func TestDeleteRoundCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doomed := seedTree(t, s, "Doomed", 2, 3)
	kept := seedTree(t, s, "Kept", 1)

	removed, err := s.DeleteRound(ctx, doomed.round)
	require.NoError(t, err)
	assert.Empty(t, removed)

	assert.Nil(t, s.GetRoundByID(ctx, doomed.round))
	assert.Empty(t, s.GetMissionsByRoundID(ctx, doomed.round))
	for _, m := range doomed.missions {
		assert.Nil(t, s.GetMissionByID(ctx, m))
		assert.Empty(t, s.GetTopicsByMissionID(ctx, m))
	}
	for _, id := range doomed.topics {
		assert.Nil(t, s.GetTopicByID(ctx, id))
	}

	assert.NotNil(t, s.GetRoundByID(ctx, kept.round))
	assert.Len(t, s.GetTopicsByMissionID(ctx, kept.missions[0]), 1)
}

func TestDeleteMissionCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr := seedTree(t, s, "R", 2, 1)

	_, err := s.DeleteMission(ctx, tr.missions[0])
	require.NoError(t, err)

	assert.Empty(t, s.GetTopicsByMissionID(ctx, tr.missions[0]))
	missions := s.GetMissionsByRoundID(ctx, tr.round)
	require.Len(t, missions, 1)
	assert.Equal(t, tr.missions[1], missions[0].ID)
	assert.Len(t, s.GetTopicsByMissionID(ctx, tr.missions[1]), 1)
}

func TestDeleteRoundRemovesDependentRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doomed := seedTree(t, s, "Doomed", 1, 1)
	kept := seedTree(t, s, "Kept", 1)

	for i, tr := range []tree{doomed, kept} {
		file := &models.Attachment{TopicID: tr.topics[0], FileName: "a.pdf", FileURL: "u", FileKey: fmt.Sprintf("topics/%d/a.pdf", i), UploadedBy: 1}
		require.NoError(t, s.InsertAttachment(ctx, file))
		_, err := s.AddComment(ctx, tr.missions[0], 1, "hi")
		require.NoError(t, err)
		_, err = s.ToggleTopicProgress(ctx, 1, tr.topics[0])
		require.NoError(t, err)
	}

	removed, err := s.DeleteRound(ctx, doomed.round)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "topics/0/a.pdf", removed[0].FileKey)

	assert.Zero(t, countRows(t, s, &models.Comment{}, "mission_id IN ?", doomed.missions))
	assert.Zero(t, countRows(t, s, &models.Attachment{}, "topic_id IN ?", doomed.topics))
	assert.Zero(t, countRows(t, s, &models.Progress{}, "topic_id IN ?", doomed.topics))

	assert.Len(t, s.GetCommentsByMissionID(ctx, kept.missions[0]), 1)
	assert.Len(t, s.GetAttachmentsByTopicID(ctx, kept.topics[0]), 1)
	assert.NotNil(t, topicProgress(t, s, 1, kept.topics[0]))
}

func TestDeleteMissionRemovesDependentRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr := seedTree(t, s, "R", 1, 1)

	for i, m := range tr.missions {
		file := &models.Attachment{TopicID: tr.topics[i], FileName: "a.pdf", FileURL: "u", FileKey: fmt.Sprintf("k/%d", i), UploadedBy: 1}
		require.NoError(t, s.InsertAttachment(ctx, file))
		_, err := s.AddComment(ctx, m, 1, "hi")
		require.NoError(t, err)
		_, err = s.ToggleTopicProgress(ctx, 2, tr.topics[i])
		require.NoError(t, err)
	}

	removed, err := s.DeleteMission(ctx, tr.missions[0])
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "k/0", removed[0].FileKey)

	assert.Empty(t, s.GetCommentsByMissionID(ctx, tr.missions[0]))
	assert.Empty(t, s.GetAttachmentsByTopicID(ctx, tr.topics[0]))
	assert.Nil(t, topicProgress(t, s, 2, tr.topics[0]))

	assert.Len(t, s.GetCommentsByMissionID(ctx, tr.missions[1]), 1)
	assert.Len(t, s.GetAttachmentsByTopicID(ctx, tr.topics[1]), 1)
	assert.NotNil(t, topicProgress(t, s, 2, tr.topics[1]))
}

func TestDeleteTopicRetainsAttachments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr := seedTree(t, s, "R", 1)
	topicID := tr.topics[0]

	require.NoError(t, s.InsertAttachment(ctx, &models.Attachment{
		TopicID: topicID, FileName: "a.pdf", FileURL: "/uploads/a.pdf", FileKey: "topics/1/a.pdf", UploadedBy: 1,
	}))
	require.NoError(t, s.DeleteTopic(ctx, topicID))

	assert.Nil(t, s.GetTopicByID(ctx, topicID))
	assert.Len(t, s.GetAttachmentsByTopicID(ctx, topicID), 1)
}

func TestReadsDegradeWithoutDatabase(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()

	assert.False(t, s.Available())
	assert.NotNil(t, s.GetRounds(ctx))
	assert.Empty(t, s.GetRounds(ctx))
	assert.Empty(t, s.GetMissionsByRoundID(ctx, 1))
	assert.Empty(t, s.GetTopicsByMissionID(ctx, 1))
	assert.Empty(t, s.GetAttachmentsByTopicID(ctx, 1))
	assert.Empty(t, s.GetCommentsByMissionID(ctx, 1))
	assert.Empty(t, s.GetUserProgress(ctx, 1))
	assert.Nil(t, s.GetRoundByID(ctx, 1))
	assert.Equal(t, models.RoundProgress{RoundID: 1}, s.GetRoundProgress(ctx, 1, 1))

	_, err := s.CreateRound(ctx, models.CreateRoundRequest{Name: "x"})
	assert.Equal(t, ErrUnavailable, err)
	_, err = s.ToggleTopicProgress(ctx, 1, 1)
	assert.Equal(t, ErrUnavailable, err)
	_, err = s.AddComment(ctx, 1, 1, "hi")
	assert.Equal(t, ErrUnavailable, err)
	_, err = s.DeleteRound(ctx, 1)
	assert.Equal(t, ErrUnavailable, err)
}
