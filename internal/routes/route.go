package routes

import (
	"net/http"

	"reachmesh-bknd/internal/auth"
	"reachmesh-bknd/internal/cache"
	"reachmesh-bknd/internal/config"
	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/handlers"
	"reachmesh-bknd/internal/logger"
	"reachmesh-bknd/internal/metrics"
	mdlwr "reachmesh-bknd/internal/middleware"
	"reachmesh-bknd/internal/services"
	"reachmesh-bknd/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// NewRouter wires services and handlers. c and uploader may be nil; the
// catalog then reads straight from Postgres and uploads answer 503.
func NewRouter(db *bun.DB, c *cache.Cache, uploader storage.ImageUploader, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTIssuer)
	if err != nil {
		logr.Fatal("failed to init jwt manager", zap.Error(err))
	}

	authSvc := services.NewAuthService(db, jwtMgr, cfg, logr)
	businessSvc := services.NewBusinessService(db)
	professionalSvc := services.NewProfessionalService(db)
	productSvc := services.NewProductService(db)
	profileSvc := services.NewProfileService(db)
	postSvc := services.NewPostService(db)
	savedSvc := services.NewSavedService(db)
	messageSvc := services.NewMessageService(db)
	notificationSvc := services.NewNotificationService(db)
	catalogSvc := services.NewCatalogService(db, c)
	feedSvc := services.NewFeedService(businessSvc, professionalSvc, profileSvc,
		geo.PointFrom(cfg.DefaultLatitude, cfg.DefaultLongitude), logr.Logger)

	authMW := mdlwr.NewAuthMiddleware(jwtMgr, authSvc, logr.Logger)

	authHandler := handlers.NewAuthHandler(authSvc, logr, cfg)
	statsSvc := services.NewStatsService(businessSvc, professionalSvc)
	feedHandler := handlers.NewFeedHandler(feedSvc, statsSvc, logr.Logger)
	businessHandler := handlers.NewBusinessHandler(businessSvc, productSvc, feedSvc, logr.Logger)
	professionalHandler := handlers.NewProfessionalHandler(professionalSvc, feedSvc, logr.Logger)
	postHandler := handlers.NewPostHandler(postSvc, logr.Logger)
	accountHandler := handlers.NewAccountHandler(profileSvc, savedSvc, notificationSvc, logr.Logger)
	messageHandler := handlers.NewMessageHandler(messageSvc, logr.Logger)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, logr.Logger)
	mediaHandler := handlers.NewMediaHandler(uploader, cfg.MaxUploadBytes, logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.LoginLocal)
			r.Post("/ldap", authHandler.LoginLDAP)
			// the refresh token is the credential here
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		r.Get("/modes", feedHandler.ListModes)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/business-types", catalogHandler.BusinessTypes)
			r.Get("/profession-types", catalogHandler.ProfessionTypes)
		})
		r.Get("/plans", catalogHandler.Plans)

		r.Route("/businesses", func(r chi.Router) {
			r.Use(authMW.OptionalAuth)
			r.Get("/", businessHandler.ListBusinesses)
			r.Get("/{id}", businessHandler.GetBusiness)
			r.Get("/{id}/products", businessHandler.ListProducts)
			r.Get("/{id}/categories", businessHandler.ListCategories)

			r.Group(func(r chi.Router) {
				r.Use(authMW.JWTAuth)
				r.Get("/mine", businessHandler.ListMine)
				r.Post("/", businessHandler.CreateBusiness)
				r.Put("/{id}", businessHandler.UpdateBusiness)
				r.Delete("/{id}", businessHandler.DeleteBusiness)
				r.Post("/{id}/products", businessHandler.CreateProduct)
				r.Delete("/{id}/products/{productID}", businessHandler.DeleteProduct)
				r.Post("/{id}/categories", businessHandler.CreateCategory)
			})
		})

		r.Route("/professionals", func(r chi.Router) {
			r.Use(authMW.OptionalAuth)
			r.Get("/", professionalHandler.ListProfessionals)
			r.Get("/{id}", professionalHandler.GetProfessional)

			r.Group(func(r chi.Router) {
				r.Use(authMW.JWTAuth)
				r.Get("/mine", professionalHandler.ListMine)
				r.Post("/", professionalHandler.CreateProfessional)
				r.Put("/{id}", professionalHandler.UpdateProfessional)
				r.Delete("/{id}", professionalHandler.DeleteProfessional)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)

			r.Group(func(r chi.Router) {
				r.Use(authMW.JWTAuth)
				r.Post("/", postHandler.CreatePost)
				r.Delete("/{id}", postHandler.DeletePost)
				r.Post("/{id}/like", postHandler.ToggleLike)
				r.Post("/{id}/save", postHandler.ToggleSave)
			})
		})

		// A valid token lets the feed fall back to the profile location.
		r.Group(func(r chi.Router) {
			r.Use(authMW.OptionalAuth)
			r.Get("/feed", feedHandler.GetFeed)
			r.Get("/search", feedHandler.Search)
			r.Get("/stats", feedHandler.GetStats)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMW.JWTAuth)

			r.Route("/saved", func(r chi.Router) {
				r.Get("/", accountHandler.ListSaved)
				r.Post("/", accountHandler.SaveItem)
				r.Delete("/{id}", accountHandler.RemoveSaved)
			})

			r.Get("/profile", accountHandler.GetProfile)
			r.Put("/profile", accountHandler.UpdateProfile)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", accountHandler.ListNotifications)
				r.Post("/read-all", accountHandler.MarkAllNotificationsRead)
				r.Post("/{id}/read", accountHandler.MarkNotificationRead)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", messageHandler.Inbox)
				r.Post("/", messageHandler.SendMessage)
				r.Get("/{id}", messageHandler.GetMessage)
				r.Post("/{id}/read", messageHandler.MarkRead)
			})

			r.Post("/media/images", mediaHandler.UploadImage)
		})
	})

	return r
}
