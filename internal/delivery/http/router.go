package http

import (
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/controllers"
	"explorewithme/internal/delivery/http/middleware"
	"explorewithme/internal/domain"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterDeps is everything NewRouter wires together.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string
	Metrics        http.Handler

	Events    *controllers.EventController
	Requests  *controllers.RequestController
	Reactions *controllers.ReactionController
	Admin     *controllers.AdminController
	Public    *controllers.PublicController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	moderator := middleware.RequireModerator(d.Verifier, d.Logger)

	// Initiator events
	mux.HandleFunc("POST /users/{userID}/events", d.Events.CreateEvent)
	mux.HandleFunc("GET /users/{userID}/events", d.Events.ListEvents)
	mux.HandleFunc("GET /users/{userID}/events/{eventID}", d.Events.GetEvent)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}", d.Events.UpdateEvent)

	// Participation requests
	mux.HandleFunc("GET /users/{userID}/events/{eventID}/requests", d.Requests.ListEventRequests)
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}/requests", d.Requests.DecideRequests)
	mux.HandleFunc("POST /users/{userID}/requests", d.Requests.CreateRequest)
	mux.HandleFunc("GET /users/{userID}/requests", d.Requests.ListUserRequests)
	mux.HandleFunc("PATCH /users/{userID}/requests/{requestID}/cancel", d.Requests.CancelRequest)

	// Reactions
	mux.HandleFunc("PUT /users/{userID}/events/{eventID}/likes/{voterID}", d.Reactions.AddLike)
	mux.HandleFunc("DELETE /users/{userID}/events/{eventID}/likes/{voterID}", d.Reactions.RemoveLike)
	mux.HandleFunc("PUT /users/{userID}/events/{eventID}/dislikes/{voterID}", d.Reactions.AddDislike)
	mux.HandleFunc("DELETE /users/{userID}/events/{eventID}/dislikes/{voterID}", d.Reactions.RemoveDislike)

	// Moderation
	mux.HandleFunc("GET /admin/events", moderator(d.Admin.SearchEvents))
	mux.HandleFunc("PATCH /admin/events/{eventID}", moderator(d.Admin.UpdateEvent))

	// Public
	mux.HandleFunc("GET /events", d.Public.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", d.Public.GetEvent)

	// Ops
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var h http.Handler = mux
	h = middleware.CORS(d.AllowedOrigins)(h)
	h = middleware.Logging(d.Logger)(h)
	h = chimiddleware.Recoverer(h)
	h = chimiddleware.RealIP(h)
	h = chimiddleware.RequestID(h)
	return h
}
