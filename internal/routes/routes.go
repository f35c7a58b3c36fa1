package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/handlers"
	"github.com/arnold/studytrack-api/internal/logger"
	"github.com/arnold/studytrack-api/internal/middleware"
	"github.com/arnold/studytrack-api/internal/rpc"
	"github.com/arnold/studytrack-api/internal/services"
	"github.com/arnold/studytrack-api/internal/store"
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

type Deps struct {
	Config   *config.Config
	Log      logger.Logger
	Store    *store.Store
	Objects  services.ObjectStore
	Sessions *middleware.Sessions
	Google   services.GoogleVerifier
}

// New builds the fiber app with its middleware and every route.
func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = logger.Nop{}
	}
	if d.Sessions == nil {
		d.Sessions = middleware.NewSessions(d.Config)
	}

	app := fiber.New(fiber.Config{
		AppName:      "studytrack-api",
		BodyLimit:    int(d.Config.MaxUploadBytes) + formOverhead,
		ErrorHandler: rpc.ErrorHandler(d.Log, middleware.CurrentUser),
	})

	corsConfig := cors.Config{
		AllowOrigins: d.Config.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}
	// browsers refuse credentials for a wildcard origin
	if d.Config.AllowOrigins != "*" {
		corsConfig.AllowCredentials = true
	}

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(recover.New())
	app.Use(cors.New(corsConfig))
	app.Use(d.Sessions.Resolve(d.Store))

	Setup(app, d)
	return app
}

func Setup(app *fiber.App, d Deps) {
	if d.Objects == nil {
		d.Objects = services.NewDiskStore(d.Config.UploadDir)
	}
	h := handlers.New(handlers.Deps{
		Store:    d.Store,
		Config:   d.Config,
		Log:      d.Log,
		Objects:  d.Objects,
		Sessions: d.Sessions,
		Google:   d.Google,
	})

	r := rpc.NewRouter(middleware.CurrentUser)
	h.Register(r)

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "database": d.Store.Available()})
	})
	r.Mount(api.Group("/rpc"))

	// File upload
	api.Post("/upload", middleware.Protected(), h.Upload)

	if disk, ok := d.Objects.(*services.DiskStore); ok {
		app.Static("/uploads", disk.Dir())
	}
}
