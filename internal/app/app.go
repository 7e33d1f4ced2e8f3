package app

import (
	"github.com/Brokwise/brokwise-developer/internal/auth"
	"github.com/Brokwise/brokwise-developer/internal/blocks"
	"github.com/Brokwise/brokwise-developer/internal/canvas"
	"github.com/Brokwise/brokwise-developer/internal/config"
	"github.com/Brokwise/brokwise-developer/internal/database"
	"github.com/Brokwise/brokwise-developer/internal/health"
	"github.com/Brokwise/brokwise-developer/internal/middleware"
	"github.com/Brokwise/brokwise-developer/internal/plots"
	"github.com/Brokwise/brokwise-developer/internal/projects"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// gormPinger adapts a GORM handle to the health check's DBPinger.
type gormPinger struct{ db *gorm.DB }

func (g gormPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration. The DB and Redis handles are returned so the caller can
// verify connectivity before listening.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); the same client feeds the health marker
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	// Health request marker (after session)
	app.Use(middleware.HealthMarker(rdb))

	// Common response headers
	app.Use(middleware.ResponseFormatter())

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	// --- Routes (no auth) ---
	// Health module (GET /, GET /reset, GET /health/json, GET /health/errors)
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
		FrontendURL:    cfg.FrontendURL,
	}
	if db != nil {
		healthHandlers.DB = gormPinger{db: db}
	}
	app.Get("/", healthHandlers.Dashboard)
	app.Get("/reset", healthHandlers.Reset)
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/errors", healthHandlers.Errors)

	// Auth (no auth middleware): POST login, GET me, DELETE logout
	// db may be nil if the database URL is not set (e.g. tests); Login returns 500
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil {
		// Projects module
		projectService := &projects.Service{DB: db}
		projectHandlers := &projects.Handlers{Service: projectService}
		projectGroup := app.Group("/api/v1/projects", middleware.RequireAuth())
		projectGroup.Post("/create-project", projectHandlers.CreateProject)
		projectGroup.Get("/list", projectHandlers.ListProjects)
		projectGroup.Get("/view-project/:project_id", projectHandlers.GetProject)

		// Blocks module
		blockService := &blocks.Service{DB: db}
		blockHandlers := &blocks.Handlers{Service: blockService}
		blockGroup := app.Group("/api/v1/blocks", middleware.RequireAuth())
		blockGroup.Post("/create-block", blockHandlers.CreateBlock)
		blockGroup.Get("/list/:project_id", blockHandlers.ListBlocksByProject)
		blockGroup.Patch("/update-block/:block_id", blockHandlers.UpdateBlock)

		// Plots module (inventory CRUD, bulk numbering, status machine, stats)
		plotService := &plots.Service{DB: db}
		plotHandlers := &plots.Handlers{Service: plotService}
		plotGroup := app.Group("/api/v1/plots", middleware.RequireAuth())
		plotGroup.Get("/list/:project_id", plotHandlers.ListPlots)
		plotGroup.Get("/stats/:project_id", plotHandlers.GetStats)
		plotGroup.Post("/create-plot", plotHandlers.CreatePlot)
		plotGroup.Post("/bulk-create/:project_id", plotHandlers.BulkCreatePlots)
		plotGroup.Post("/bulk-generate/:project_id", plotHandlers.BulkGeneratePlots)
		plotGroup.Patch("/update-status/:plot_id", plotHandlers.UpdatePlotStatus)
		plotGroup.Put("/update-plot/:plot_id", plotHandlers.UpdatePlot)
		plotGroup.Patch("/bulk-update/:project_id", plotHandlers.BulkUpdatePlots)
		plotGroup.Delete("/delete-plot/:plot_id", plotHandlers.DeletePlot)

		// Canvas module (per-project layout editing sessions over the plot store)
		canvasManager := canvas.NewManager(plotService)
		canvasHandlers := &canvas.Handlers{Manager: canvasManager}
		canvasGroup := app.Group("/api/v1/canvas/:project_id", middleware.RequireAuth())
		canvasGroup.Post("/open", canvasHandlers.OpenSession)
		canvasGroup.Get("/state", canvasHandlers.GetState)
		canvasGroup.Post("/add-draft", canvasHandlers.AddDraft)
		canvasGroup.Post("/duplicate", canvasHandlers.DuplicateSelected)
		canvasGroup.Post("/select", canvasHandlers.SetSelection)
		canvasGroup.Patch("/update-field", canvasHandlers.UpdateField)
		canvasGroup.Patch("/move", canvasHandlers.MoveNode)
		canvasGroup.Post("/delete-selected", canvasHandlers.DeleteSelected)
		canvasGroup.Post("/save", canvasHandlers.Save)
		canvasGroup.Post("/discard-drafts", canvasHandlers.DiscardDrafts)
		canvasGroup.Post("/close", canvasHandlers.CloseSession)
	}

	return app, db, rdb, nil
}
