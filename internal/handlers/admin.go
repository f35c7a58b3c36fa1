package handlers

import (
	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
)

func (h *Handler) createRound(c *rpc.Call, in models.CreateRoundRequest) (models.SuccessResponse, error) {
	id, err := h.store.CreateRound(c.Ctx, in)
	if err != nil {
		return models.SuccessResponse{}, err
	}
	h.log.Info("round created", "roundId", id, "user", c.User)
	return models.SuccessResponse{Success: true, ID: id}, nil
}

func (h *Handler) updateRound(c *rpc.Call, in models.UpdateRoundRequest) (models.SuccessResponse, error) {
	if err := h.store.UpdateRound(c.Ctx, in); err != nil {
		return models.SuccessResponse{}, err
	}
	return ok(), nil
}

func (h *Handler) deleteRound(c *rpc.Call, in models.RoundIDRequest) (models.SuccessResponse, error) {
	removed, err := h.store.DeleteRound(c.Ctx, in.RoundID)
	if err != nil {
		return models.SuccessResponse{}, err
	}
	h.releaseObjects(c, removed)
	h.log.Info("round deleted", "roundId", in.RoundID, "user", c.User)
	return ok(), nil
}

func (h *Handler) createMission(c *rpc.Call, in models.CreateMissionRequest) (models.SuccessResponse, error) {
	id, err := h.store.CreateMission(c.Ctx, in)
	if err != nil {
		return models.SuccessResponse{}, err
	}
	h.log.Info("mission created", "missionId", id, "roundId", in.RoundID, "user", c.User)
	return models.SuccessResponse{Success: true, ID: id}, nil
}

func (h *Handler) updateMission(c *rpc.Call, in models.UpdateMissionRequest) (models.SuccessResponse, error) {
	if err := h.store.UpdateMission(c.Ctx, in); err != nil {
		return models.SuccessResponse{}, err
	}
	return ok(), nil
}

func (h *Handler) deleteMission(c *rpc.Call, in models.MissionIDRequest) (models.SuccessResponse, error) {
	removed, err := h.store.DeleteMission(c.Ctx, in.MissionID)
	if err != nil {
		return models.SuccessResponse{}, err
	}
	h.releaseObjects(c, removed)
	h.log.Info("mission deleted", "missionId", in.MissionID, "user", c.User)
	return ok(), nil
}

func (h *Handler) createTopic(c *rpc.Call, in models.CreateTopicRequest) (models.SuccessResponse, error) {
	id, err := h.store.CreateTopic(c.Ctx, in)
	if err != nil {
		return models.SuccessResponse{}, err
	}
	h.log.Info("topic created", "topicId", id, "missionId", in.MissionID, "user", c.User)
	return models.SuccessResponse{Success: true, ID: id}, nil
}

func (h *Handler) updateTopic(c *rpc.Call, in models.UpdateTopicRequest) (models.SuccessResponse, error) {
	if err := h.store.UpdateTopic(c.Ctx, in); err != nil {
		return models.SuccessResponse{}, err
	}
	return ok(), nil
}

// deleteTopic removes only the topic row. Its attachments and progress rows
// stay until an admin deletes the attachments explicitly.
func (h *Handler) deleteTopic(c *rpc.Call, in models.TopicIDRequest) (models.SuccessResponse, error) {
	if err := h.store.DeleteTopic(c.Ctx, in.TopicID); err != nil {
		return models.SuccessResponse{}, err
	}
	h.log.Info("topic deleted", "topicId", in.TopicID, "user", c.User)
	return ok(), nil
}

// deleteAttachment removes the row, then the stored object.
func (h *Handler) deleteAttachment(c *rpc.Call, in models.DeleteAttachmentRequest) (models.SuccessResponse, error) {
	deleted, err := h.store.DeleteAttachment(c.Ctx, in.AttachmentID)
	if err != nil {
		return models.SuccessResponse{}, err
	}
	if deleted != nil {
		h.releaseObjects(c, []models.Attachment{*deleted})
	}
	return ok(), nil
}

// releaseObjects removes the stored files of deleted attachments. Failures
// are logged and do not fail the call.
func (h *Handler) releaseObjects(c *rpc.Call, attachments []models.Attachment) {
	for _, a := range attachments {
		if err := h.objects.Delete(c.Ctx, a.FileKey); err != nil {
			h.log.Warn("stored object not removed", "attachmentId", a.ID, "key", a.FileKey, "err", err, "user", c.User)
		}
	}
}
