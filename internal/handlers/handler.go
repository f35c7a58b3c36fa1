package handlers

import (
	"time"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/logger"
	"github.com/arnold/studytrack-api/internal/middleware"
	"github.com/arnold/studytrack-api/internal/models"
	"github.com/arnold/studytrack-api/internal/rpc"
	"github.com/arnold/studytrack-api/internal/services"
	"github.com/arnold/studytrack-api/internal/store"
)

// Handler serves the course, admin and auth procedures and the upload relay.
type Handler struct {
	store    *store.Store
	cfg      *config.Config
	log      logger.Logger
	objects  services.ObjectStore
	sessions *middleware.Sessions
	google   services.GoogleVerifier
	now      func() time.Time
}

type Deps struct {
	Store    *store.Store
	Config   *config.Config
	Log      logger.Logger
	Objects  services.ObjectStore
	Sessions *middleware.Sessions
	Google   services.GoogleVerifier
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.Nop{}
	}
	objects := d.Objects
	if objects == nil {
		objects = services.NewDiskStore(d.Config.UploadDir)
	}
	google := d.Google
	if google == nil {
		google = services.IDTokenVerifier{}
	}
	return &Handler{
		store:    d.Store,
		cfg:      d.Config,
		log:      log,
		objects:  objects,
		sessions: d.Sessions,
		google:   google,
		now:      time.Now,
	}
}

// Register adds every procedure to r.
func (h *Handler) Register(r *rpc.Router) {
	// course: public reads
	rpc.Query(r, "course.getRounds", rpc.Public, h.getRounds)
	rpc.Query(r, "course.getRoundById", rpc.Public, h.getRoundByID)
	rpc.Query(r, "course.getMissionsByRoundId", rpc.Public, h.getMissionsByRoundID)
	rpc.Query(r, "course.getMissionById", rpc.Public, h.getMissionByID)
	rpc.Query(r, "course.getTopicsByMissionId", rpc.Public, h.getTopicsByMissionID)
	rpc.Query(r, "course.getTopicById", rpc.Public, h.getTopicByID)
	rpc.Query(r, "course.getAttachmentsByTopicId", rpc.Public, h.getAttachmentsByTopicID)
	rpc.Query(r, "course.getAttachmentsByMissionId", rpc.Public, h.getAttachmentsByMissionID)
	rpc.Query(r, "course.getAttachmentsByRoundId", rpc.Public, h.getAttachmentsByRoundID)
	rpc.Query(r, "course.getCommentsByMissionId", rpc.Public, h.getCommentsByMissionID)

	// course: signed-in learners
	rpc.Mutation(r, "course.addComment", rpc.Authed, h.addComment)
	rpc.Query(r, "course.getUserProgress", rpc.Authed, h.getUserProgress)
	rpc.Mutation(r, "course.toggleTopicProgress", rpc.Authed, h.toggleTopicProgress)
	rpc.Query(r, "course.getRoundProgress", rpc.Authed, h.getRoundProgress)
	rpc.Query(r, "course.getAllRoundsProgress", rpc.Authed, h.getAllRoundsProgress)

	// admin
	rpc.Mutation(r, "admin.createRound", rpc.Admin, h.createRound)
	rpc.Mutation(r, "admin.updateRound", rpc.Admin, h.updateRound)
	rpc.Mutation(r, "admin.deleteRound", rpc.Admin, h.deleteRound)
	rpc.Mutation(r, "admin.createMission", rpc.Admin, h.createMission)
	rpc.Mutation(r, "admin.updateMission", rpc.Admin, h.updateMission)
	rpc.Mutation(r, "admin.deleteMission", rpc.Admin, h.deleteMission)
	rpc.Mutation(r, "admin.createTopic", rpc.Admin, h.createTopic)
	rpc.Mutation(r, "admin.updateTopic", rpc.Admin, h.updateTopic)
	rpc.Mutation(r, "admin.deleteTopic", rpc.Admin, h.deleteTopic)
	rpc.Mutation(r, "admin.deleteAttachment", rpc.Admin, h.deleteAttachment)
	rpc.Query(r, "admin.getUsers", rpc.Admin, h.getUsers)
	rpc.Mutation(r, "admin.createUser", rpc.Admin, h.createUser)
	rpc.Mutation(r, "admin.updateUser", rpc.Admin, h.updateUser)
	rpc.Mutation(r, "admin.deleteUser", rpc.Admin, h.deleteUser)

	// auth
	rpc.Query(r, "auth.me", rpc.Public, h.me)
	rpc.Mutation(r, "auth.logout", rpc.Public, h.logout)
	rpc.Mutation(r, "auth.google", rpc.Public, h.googleLogin)
	rpc.Mutation(r, "auth.login", rpc.Public, h.login)
}

func ok() models.SuccessResponse {
	return models.SuccessResponse{Success: true}
}
