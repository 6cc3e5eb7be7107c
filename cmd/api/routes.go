package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mirotrak/mirotrak/internal/config"
	"github.com/mirotrak/mirotrak/internal/handler"
	"github.com/mirotrak/mirotrak/internal/metrics"
	"github.com/mirotrak/mirotrak/internal/middleware"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
	"github.com/mirotrak/mirotrak/internal/service"
)

type handlers struct {
	root      *handler.Handler
	health    *handler.HealthHandler
	metrics   *handler.MetricsHandler
	clients   *handler.RecordHandler[*model.Client]
	clientSub http.HandlerFunc
	subs      *handler.RecordHandler[*model.Subscription]
	events    *handler.RecordHandler[*model.Event]
	prompts   *handler.RecordHandler[*model.Prompt]
	aiPhotos  *handler.RecordHandler[*model.AiPhoto]
	photos    *handler.PhotoHandler
	settings  *handler.SettingHandler
	database  *handler.DatabaseHandler
	documents *handler.DocumentHandler
}

func newHandlers(repo *repository.Repository, photoStorage service.ObjectStorage, cfg *config.Config,
	recorder *metrics.InMemoryRecorder, logger *slog.Logger) handlers {
	clients := service.NewRecordService(model.TableClients, service.RecordStore[*model.Client]{
		Get: repo.GetClient, Create: repo.CreateClient, Update: repo.UpdateClient, Delete: repo.DeleteClient,
	}, recorder)
	subs := service.NewRecordService(model.TableSubscriptions, service.RecordStore[*model.Subscription]{
		Get: repo.GetSubscription, Create: repo.CreateSubscription, Update: repo.UpdateSubscription, Delete: repo.DeleteSubscription,
	}, recorder)
	events := service.NewRecordService(model.TableEvents, service.RecordStore[*model.Event]{
		Get: repo.GetEvent, Create: repo.CreateEvent, Update: repo.UpdateEvent, Delete: repo.DeleteEvent,
	}, recorder)
	prompts := service.NewRecordService(model.TablePrompts, service.RecordStore[*model.Prompt]{
		Get: repo.GetPrompt, Create: repo.CreatePrompt, Update: repo.UpdatePrompt, Delete: repo.DeletePrompt,
	}, recorder)
	aiPhotos := service.NewRecordService(model.TableAiPhotos, service.RecordStore[*model.AiPhoto]{
		Get: repo.GetAiPhoto, Create: repo.CreateAiPhoto, Update: repo.UpdateAiPhoto, Delete: repo.DeleteAiPhoto,
	}, recorder)

	photoSvc := service.NewPhotoService(repo, photoStorage, cfg.BulkPhotoLimit, recorder)

	return handlers{
		root:    handler.New(),
		metrics: handler.NewMetricsHandler(recorder),
		clients: handler.NewRecordHandler("client", clients,
			func() *model.Client { return &model.Client{} }, handler.ListClients(repo), logger),
		clientSub: handler.ClientSubscriptions(clients, repo, logger),
		subs: handler.NewRecordHandler("subscription", subs,
			func() *model.Subscription { return &model.Subscription{} }, handler.ListSubscriptions(repo), logger),
		events: handler.NewRecordHandler("event", events,
			func() *model.Event { return &model.Event{} }, handler.ListEvents(repo), logger),
		prompts: handler.NewRecordHandler("prompt", prompts,
			func() *model.Prompt { return &model.Prompt{} }, handler.ListPrompts(repo), logger),
		aiPhotos: handler.NewRecordHandler("ai_photo", aiPhotos,
			func() *model.AiPhoto { return &model.AiPhoto{} }, handler.ListAiPhotos(repo), logger),
		photos:    handler.NewPhotoHandler(aiPhotos, photoSvc, cfg.MaxUploadSize, logger),
		settings:  handler.NewSettingHandler(service.NewSettingService(repo, recorder), logger),
		database:  handler.NewDatabaseHandler(service.NewDatabaseService(repo, recorder), logger),
		documents: handler.NewDocumentHandler(service.NewDocumentService(repo, recorder), logger),
	}
}

type routerConfig struct {
	Logger         *slog.Logger
	IsDevelopment  bool
	AllowedOrigins []string
	MaxBodySize    int64
	AdminKeyHash   string
	RateLimit      middleware.RateLimitConfig
}

// newRouter mounts every route. Photo uploads bypass the global body limit
// and are capped by MAX_UPLOAD_SIZE inside the handler.
func newRouter(h handlers, cfg routerConfig) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/", h.root.Hello)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(cfg.RateLimit))
		r.Use(middleware.AdminAuth(middleware.AdminAuthConfig{Logger: cfg.Logger, KeyHash: cfg.AdminKeyHash}))

		r.Post("/ai-photos/{id}/image", h.photos.UploadImage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(cfg.MaxBodySize))

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.clients.List)
				r.Post("/", h.clients.Create)
				r.Get("/{id}", h.clients.Get)
				r.Put("/{id}", h.clients.Update)
				r.Delete("/{id}", h.clients.Delete)
				r.Get("/{id}/subscriptions", h.clientSub)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", h.subs.List)
				r.Post("/", h.subs.Create)
				r.Get("/{id}", h.subs.Get)
				r.Put("/{id}", h.subs.Update)
				r.Delete("/{id}", h.subs.Delete)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.events.List)
				r.Post("/", h.events.Create)
				r.Get("/{id}", h.events.Get)
				r.Put("/{id}", h.events.Update)
				r.Delete("/{id}", h.events.Delete)
			})

			r.Route("/prompts", func(r chi.Router) {
				r.Get("/", h.prompts.List)
				r.Post("/", h.prompts.Create)
				r.Get("/{id}", h.prompts.Get)
				r.Put("/{id}", h.prompts.Update)
				r.Delete("/{id}", h.prompts.Delete)
			})

			// Registered flat so the upload route above shares the same tree.
			r.Get("/ai-photos", h.aiPhotos.List)
			r.Post("/ai-photos", h.aiPhotos.Create)
			r.Post("/ai-photos/bulk", h.photos.Bulk)
			r.Post("/ai-photos/presign", h.photos.Presign)
			r.Get("/ai-photos/{id}", h.aiPhotos.Get)
			r.Put("/ai-photos/{id}", h.aiPhotos.Update)
			r.Delete("/ai-photos/{id}", h.photos.Delete)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.settings.List)
				r.Post("/", h.settings.Create)
				r.Get("/{key}", h.settings.Get)
				r.Put("/{key}", h.settings.Put)
				r.Delete("/{key}", h.settings.Delete)
			})

			r.Route("/database", func(r chi.Router) {
				r.Get("/tables", h.database.Tables)
				r.Get("/export/json", h.database.ExportJSON)
				r.Get("/export/csv/{table}", h.database.ExportCSV)
				r.Get("/export/excel/{table}", h.database.ExportExcel)
				r.Post("/import/json", h.database.ImportJSON)
			})

			r.Post("/documents/render", h.documents.Render)
		})
	})

	r.NotFound(h.root.NotFound)
	r.MethodNotAllowed(h.root.MethodNotAllowed)

	return r
}
