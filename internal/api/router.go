package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hyunwoo/beluga-backend/internal/api/handlers"
	"github.com/hyunwoo/beluga-backend/internal/api/middleware"
	"github.com/hyunwoo/beluga-backend/internal/service"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	meHandler := handlers.NewMeHandler(services.Profile)
	fileHandler := handlers.NewFileHandler(services.File)
	socketHandler := handlers.NewSocketHandler(services.Account)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Get("/check-email", authHandler.CheckEmail)
			r.Get("/check-nickname", authHandler.CheckNickname)
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/send-otp", authHandler.SendOtp)
			r.Post("/sign-in", authHandler.SignIn)
			r.Post("/sign-in/token", authHandler.SignInWithToken)
			r.Post("/start/google", authHandler.StartByGoogle)
			r.Post("/start/kakao", authHandler.StartByKakao)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Account))
				r.Post("/sign-out", authHandler.SignOut)
				r.Delete("/account", authHandler.DeleteAccount)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Account))

			// Profile routes
			r.Route("/me", func(r chi.Router) {
				r.Get("/", meHandler.GetProfile)
				r.Put("/", meHandler.UpdateProfile)
			})

			// File routes
			r.Route("/files", func(r chi.Router) {
				r.Get("/", fileHandler.List)
				r.Post("/", fileHandler.Upload)
				r.Get("/{id}", fileHandler.Serve)
				r.Delete("/{id}", fileHandler.Delete)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", socketHandler.Handle)
	})

	return r
}
