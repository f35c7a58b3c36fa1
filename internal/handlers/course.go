package handlers

import (
	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
)

func (h *Handler) getRounds(c *rpc.Call, _ rpc.Empty) ([]models.Round, error) {
	return h.store.GetRounds(c.Ctx), nil
}

func (h *Handler) getRoundByID(c *rpc.Call, in models.IDRequest) (*models.Round, error) {
	return h.store.GetRoundByID(c.Ctx, in.ID), nil
}

func (h *Handler) getMissionsByRoundID(c *rpc.Call, in models.RoundIDRequest) ([]models.Mission, error) {
	return h.store.GetMissionsByRoundID(c.Ctx, in.RoundID), nil
}

func (h *Handler) getMissionByID(c *rpc.Call, in models.IDRequest) (*models.Mission, error) {
	return h.store.GetMissionByID(c.Ctx, in.ID), nil
}

func (h *Handler) getTopicsByMissionID(c *rpc.Call, in models.MissionIDRequest) ([]models.Topic, error) {
	return h.store.GetTopicsByMissionID(c.Ctx, in.MissionID), nil
}

func (h *Handler) getTopicByID(c *rpc.Call, in models.IDRequest) (*models.Topic, error) {
	return h.store.GetTopicByID(c.Ctx, in.ID), nil
}

func (h *Handler) getAttachmentsByTopicID(c *rpc.Call, in models.TopicIDRequest) ([]models.Attachment, error) {
	return h.store.GetAttachmentsByTopicID(c.Ctx, in.TopicID), nil
}

func (h *Handler) getAttachmentsByMissionID(c *rpc.Call, in models.MissionIDRequest) ([]models.Attachment, error) {
	return h.store.GetAttachmentsByMissionID(c.Ctx, in.MissionID), nil
}

func (h *Handler) getAttachmentsByRoundID(c *rpc.Call, in models.RoundIDRequest) ([]models.Attachment, error) {
	return h.store.GetAttachmentsByRoundID(c.Ctx, in.RoundID), nil
}
