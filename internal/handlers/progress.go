package handlers

import (
	"fmt"

	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
)

func (h *Handler) getUserProgress(c *rpc.Call, _ rpc.Empty) ([]models.Progress, error) {
	return h.store.GetUserProgress(c.Ctx, c.User.ID), nil
}

// toggleTopicProgress flips the caller's completion of a topic. Unknown
// topics are rejected so the ledger only references real content.
func (h *Handler) toggleTopicProgress(c *rpc.Call, in models.TopicIDRequest) (models.ToggleProgressResponse, error) {
	exists, err := h.store.TopicExists(c.Ctx, in.TopicID)
	if err != nil {
		return models.ToggleProgressResponse{}, err
	}
	if !exists {
		return models.ToggleProgressResponse{}, rpc.BadRequest(fmt.Sprintf("Topic %d not found", in.TopicID))
	}

	completed, err := h.store.ToggleTopicProgress(c.Ctx, c.User.ID, in.TopicID)
	if err != nil {
		return models.ToggleProgressResponse{}, err
	}
	return models.ToggleProgressResponse{Completed: completed}, nil
}

func (h *Handler) getRoundProgress(c *rpc.Call, in models.RoundIDRequest) (models.RoundProgress, error) {
	return h.store.GetRoundProgress(c.Ctx, c.User.ID, in.RoundID), nil
}

func (h *Handler) getAllRoundsProgress(c *rpc.Call, _ rpc.Empty) ([]models.RoundProgress, error) {
	return h.store.GetAllRoundsProgress(c.Ctx, c.User.ID), nil
}
