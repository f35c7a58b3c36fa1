package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
)

func TestAdminGuard(t *testing.T) {
	ts := newTestServer(t)

	calls := []struct {
		name  string
		input interface{}
	}{
		{"admin.createRound", models.CreateRoundRequest{Name: "R"}},
		{"admin.deleteRound", models.RoundIDRequest{RoundID: 1}},
		{"admin.createMission", models.CreateMissionRequest{RoundID: 1, Name: "M"}},
		{"admin.deleteTopic", models.TopicIDRequest{TopicID: 1}},
		{"admin.deleteAttachment", models.DeleteAttachmentRequest{AttachmentID: 1}},
		{"admin.createUser", models.CreateUserRequest{Email: "x@example.com", Name: "x", Password: "secret1"}},
	}
	for _, call := range calls {
		t.Run(call.name, func(t *testing.T) {
			status, env := ts.mutate(t, call.name, call.input, "")
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, rpc.CodeUnauthorized, env.Error.Code)

			status, env = ts.mutate(t, call.name, call.input, ts.learnerToken)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, rpc.CodeForbidden, env.Error.Code)
		})
	}

	status, _ := ts.query(t, "admin.getUsers", nil, ts.learnerToken)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdminValidation(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.mutate(t, "admin.createRound", map[string]interface{}{"name": ""}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "name is required", env.Error.Fields["name"])

	status, env = ts.mutate(t, "admin.createMission", models.CreateMissionRequest{RoundID: 42, Name: "orphan"}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Message, "parent not found")

	f := ts.seed(t)
	status, env = ts.mutate(t, "admin.updateRound", models.UpdateRoundRequest{ID: f.round}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No fields to update", env.Error.Message)
}

func TestAdminUpdates(t *testing.T) {
	ts := newTestServer(t)
	f := ts.seed(t)

	name, order := "Renamed", 0
	status, _ := ts.mutate(t, "admin.updateTopic", models.UpdateTopicRequest{ID: f.topics[1], Name: &name, Order: &order}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)

	var topics []models.Topic
	_, env := ts.query(t, "course.getTopicsByMissionId", models.MissionIDRequest{MissionID: f.mission}, "")
	env.decode(t, &topics)
	require.Len(t, topics, 2)
	assert.Equal(t, "Renamed", topics[0].Name)

	desc := "week one"
	status, _ = ts.mutate(t, "admin.updateMission", models.UpdateMissionRequest{ID: f.mission, Description: &desc}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "week one", *ts.store.GetMissionByID(ts.ctx(), f.mission).Description)
}

func TestAdminDeleteRoundCascades(t *testing.T) {
	ts := newTestServer(t)
	f := ts.seed(t)

	status, res := ts.upload(t, itoa(f.topics[0]), "notes.txt", []byte("notes"), ts.learnerToken)
	require.Equal(t, http.StatusOK, status, res.Error)
	key := ts.store.GetAttachmentsByTopicID(ts.ctx(), f.topics[0])[0].FileKey
	status, env := ts.mutate(t, "course.addComment", models.CreateCommentRequest{MissionID: f.mission, Content: "hi"}, ts.learnerToken)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	status, env = ts.mutate(t, "course.toggleTopicProgress", models.TopicIDRequest{TopicID: f.topics[0]}, ts.learnerToken)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)

	status, _ = ts.mutate(t, "admin.deleteRound", models.RoundIDRequest{RoundID: f.round}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)

	assert.Empty(t, ts.store.GetAttachmentsByTopicID(ts.ctx(), f.topics[0]))
	assert.Empty(t, ts.store.GetCommentsByMissionID(ts.ctx(), f.mission))
	assert.Empty(t, ts.store.GetUserProgress(ts.ctx(), ts.learner.ID))
	assert.Equal(t, []string{key}, ts.objects.deleted)
	assert.Empty(t, ts.objects.objects)

	_, env = ts.query(t, "course.getMissionsByRoundId", models.RoundIDRequest{RoundID: f.round}, "")
	assert.JSONEq(t, `[]`, string(env.Result))
	_, env = ts.query(t, "course.getTopicsByMissionId", models.MissionIDRequest{MissionID: f.mission}, "")
	assert.JSONEq(t, `[]`, string(env.Result))

	// deleting again is a no-op
	status, _ = ts.mutate(t, "admin.deleteRound", models.RoundIDRequest{RoundID: f.round}, ts.adminToken)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminDeleteMissionAndTopic(t *testing.T) {
	ts := newTestServer(t)
	f := ts.seed(t)

	status, _ := ts.mutate(t, "admin.deleteTopic", models.TopicIDRequest{TopicID: f.topics[0]}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, ts.store.GetTopicsByMissionID(ts.ctx(), f.mission), 1)

	status, _ = ts.mutate(t, "admin.deleteMission", models.MissionIDRequest{MissionID: f.mission}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, ts.store.GetTopicsByMissionID(ts.ctx(), f.mission))
	assert.Empty(t, ts.store.GetMissionsByRoundID(ts.ctx(), f.round))
}

func TestAdminDeleteAttachmentRemovesObject(t *testing.T) {
	ts := newTestServer(t)
	f := ts.seed(t)

	status, res := ts.upload(t, itoa(f.topics[0]), "notes.txt", []byte("notes"), ts.learnerToken)
	require.Equal(t, http.StatusOK, status, res.Error)
	attachments := ts.store.GetAttachmentsByTopicID(ts.ctx(), f.topics[0])
	require.Len(t, attachments, 1)

	status, _ = ts.mutate(t, "admin.deleteAttachment", models.DeleteAttachmentRequest{AttachmentID: attachments[0].ID}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)

	assert.Empty(t, ts.store.GetAttachmentsByTopicID(ts.ctx(), f.topics[0]))
	assert.Equal(t, []string{attachments[0].FileKey}, ts.objects.deleted)
	assert.Empty(t, ts.objects.objects)
}

func TestAdminUserManagement(t *testing.T) {
	ts := newTestServer(t)

	id := ts.mustCreate(t, "admin.createUser", models.CreateUserRequest{
		Email: "bob@example.com", Name: "Bob", Password: "hunter22",
	})

	status, env := ts.mutate(t, "admin.createUser", models.CreateUserRequest{
		Email: "bob@example.com", Name: "Bob again", Password: "hunter22",
	}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already registered", env.Error.Message)

	var users []models.User
	_, env = ts.query(t, "admin.getUsers", nil, ts.adminToken)
	env.decode(t, &users)
	require.Len(t, users, 3)
	bob := users[2]
	assert.Equal(t, id, bob.ID)
	assert.Equal(t, models.RoleUser, bob.Role)
	assert.Contains(t, bob.OpenID, "temp-")
	assert.NotContains(t, string(env.Result), "hunter22")

	status, env = ts.mutate(t, "admin.updateUser", models.UpdateUserRequest{ID: id}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No fields to update", env.Error.Message)

	role := models.RoleAdmin
	status, _ = ts.mutate(t, "admin.updateUser", models.UpdateUserRequest{ID: id, Role: &role}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, ts.store.GetUserByID(ts.ctx(), id).IsAdmin())

	status, env = ts.mutate(t, "admin.deleteUser", models.DeleteUserRequest{UserID: ts.admin.ID}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.mutate(t, "admin.deleteUser", models.DeleteUserRequest{UserID: id}, ts.adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, ts.store.GetUserByID(ts.ctx(), id))
}
