package handlers

import (
	"strings"

	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
)

func (h *Handler) getCommentsByMissionID(c *rpc.Call, in models.MissionIDRequest) ([]models.Comment, error) {
	return h.store.GetCommentsByMissionID(c.Ctx, in.MissionID), nil
}

func (h *Handler) addComment(c *rpc.Call, in models.CreateCommentRequest) (models.SuccessResponse, error) {
	id, err := h.store.AddComment(c.Ctx, in.MissionID, c.User.ID, strings.TrimSpace(in.Content))
	if err != nil {
		return models.SuccessResponse{}, err
	}
	h.log.Debug("comment added", "missionId", in.MissionID, "commentId", id, "user", c.User)
	return models.SuccessResponse{Success: true, ID: id}, nil
}
