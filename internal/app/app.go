package app

import (
	"sponsorhub-backend/internal/auth"
	"sponsorhub-backend/internal/config"
	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/costs"
	"sponsorhub-backend/internal/database"
	"sponsorhub-backend/internal/deliverables"
	"sponsorhub-backend/internal/health"
	"sponsorhub-backend/internal/middleware"
	"sponsorhub-backend/internal/proofs"
	"sponsorhub-backend/internal/sponsors"
	"sponsorhub-backend/internal/uploads"
	"sponsorhub-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. Returns the DB and Redis client for startup checks.
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

	// Session (Redis); need Redis client for health marker too
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

	// Response formatter (inject helpers)
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
	var dbPinger health.DBPinger
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			dbPinger = sqlDB
		}
	}
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             dbPinger,
		StorageURL:     cfg.SupabaseURL,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", healthHandlers.Status)
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)
	app.Get("/health/errors", healthHandlers.Errors)

	// Auth (no auth middleware): POST login, GET me, DELETE logout
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
	if db != nil && rdb != nil {
		// Users module
		userService := &users.Service{DB: db, Rdb: rdb}
		userHandlers := &users.Handlers{Service: userService}
		userGroup := app.Group("/api/v1/users", middleware.RequireAuth())
		userGroup.Post("/create-user", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.CreateUser)
		userGroup.Put("/update-user/:id", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.UpdateUser)
		userGroup.Get("/view-user/:id", middleware.AuthorizePermission(constants.ViewData), userHandlers.ViewUser)
		userGroup.Patch("/update-role", middleware.AuthorizePermission(constants.AssignRole), userHandlers.UpdateRole)
		userGroup.Delete("/remove-user", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.RemoveUser)

		// Uploads module
		supabaseClient := &uploads.HTTPClient{
			BaseURL:   cfg.SupabaseURL,
			SecretKey: cfg.SupabaseSecretKey,
		}
		uploadService := &uploads.Service{
			Client:      supabaseClient,
			SupabaseURL: cfg.SupabaseURL,
		}
		uploadHandlers := &uploads.Handlers{Service: uploadService}
		uploadGroup := app.Group("/api/v1/uploads", middleware.RequireAuth(), middleware.AuthorizePermission(constants.UploadFile))
		uploadGroup.Post("/proof-file", uploadHandlers.UploadProofFile)
		uploadGroup.Post("/deliverable-file", uploadHandlers.UploadDeliverableFile)
		uploadGroup.Post("/mou-doc", uploadHandlers.UploadMouDoc)

		// Sponsors module
		sponsorService := &sponsors.Service{DB: db}
		sponsorHandlers := &sponsors.Handlers{Service: sponsorService}
		sponsorGroup := app.Group("/api/v1/sponsors", middleware.RequireAuth())
		sponsorGroup.Post("/create-sponsor", middleware.AuthorizePermission(constants.ManageSponsors), sponsorHandlers.CreateSponsor)
		sponsorGroup.Get("/get-all-sponsors", sponsorHandlers.ListSponsors)
		sponsorGroup.Get("/get-sponsor/:sponsor_id", sponsorHandlers.ViewSponsor)
		sponsorGroup.Patch("/update-sponsor/:sponsor_id", middleware.AuthorizePermission(constants.ManageSponsors), sponsorHandlers.UpdateSponsor)
		sponsorGroup.Post("/reconcile/:sponsor_id", middleware.AuthorizePermission(constants.ReconcileSponsor), sponsorHandlers.Reconcile)

		// Deliverables module
		deliverableService := &deliverables.Service{DB: db, Sponsors: sponsorService, Storage: supabaseClient}
		deliverableHandlers := &deliverables.Handlers{Service: deliverableService}
		deliverableGroup := app.Group("/api/v1/deliverables", middleware.RequireAuth())
		deliverableGroup.Post("/create-deliverable", middleware.AuthorizePermission(constants.CreateDeliverable), deliverableHandlers.CreateDeliverable)
		deliverableGroup.Get("/get-deliverable/:deliverable_id", deliverableHandlers.GetDeliverable)
		deliverableGroup.Get("/get-sponsor-deliverables/:sponsor_id", deliverableHandlers.GetSponsorDeliverables)
		deliverableGroup.Put("/update-deliverable/:deliverable_id", middleware.AuthorizePermission(constants.EditDeliverable), deliverableHandlers.UpdateDeliverable)
		deliverableGroup.Delete("/delete-deliverable/:deliverable_id", middleware.AuthorizePermission(constants.DeleteDeliverable), deliverableHandlers.DeleteDeliverable)

		// Proofs module
		proofService := &proofs.Service{DB: db, Sponsors: sponsorService}
		proofHandlers := &proofs.Handlers{Service: proofService}
		proofGroup := app.Group("/api/v1/proofs", middleware.RequireAuth())
		proofGroup.Post("/submit-proof", middleware.AuthorizePermission(constants.SubmitProof), proofHandlers.SubmitProof)
		proofGroup.Post("/resolve-proof", middleware.AuthorizePermission(constants.ResolveProof), proofHandlers.ResolveProof)
		proofGroup.Get("/get-deliverable-proofs/:deliverable_id", proofHandlers.ListDeliverableProofs)

		// Costs module
		costService := &costs.Service{DB: db, Sponsors: sponsorService}
		costHandlers := &costs.Handlers{Service: costService}
		costGroup := app.Group("/api/v1/costs", middleware.RequireAuth())
		costGroup.Post("/submit-cost", middleware.AuthorizePermission(constants.SubmitCost), costHandlers.SubmitCost)
	}

	return app, db, rdb, nil
}
