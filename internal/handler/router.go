package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/upendo-connect/backend/internal/handler/chat"
	matchHandler "github.com/upendo-connect/backend/internal/handler/match"
	paywallHandler "github.com/upendo-connect/backend/internal/handler/paywall"
	userHandler "github.com/upendo-connect/backend/internal/handler/user"
	"github.com/upendo-connect/backend/internal/handler/ws"
	middlewarePkg "github.com/upendo-connect/backend/internal/middleware"
	"github.com/upendo-connect/backend/internal/model/match"
	"github.com/upendo-connect/backend/internal/model/user"
	"github.com/upendo-connect/backend/internal/pubsub"
	chatService "github.com/upendo-connect/backend/internal/service/chat"
	"github.com/upendo-connect/backend/internal/service/scheduler"
)

// Deps groups what the HTTP layer needs from the core services.
type Deps struct {
	Users     user.Store
	Matches   match.Store
	Chat      *chatService.Service
	Generator matchHandler.Generator
	Replies   *scheduler.Scheduler
	Events    pubsub.Subscriber
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// A nil *Scheduler must not become a non-nil interface.
	var replies chat.ReplyTracker
	if deps.Replies != nil {
		replies = deps.Replies
	}

	r.Route("/api", func(api chi.Router) {
		userHandler.New(deps.Users, deps.Chat).RegisterRoutes(api)
		matchHandler.New(deps.Generator, deps.Matches, deps.Users).RegisterRoutes(api)
		chat.New(deps.Chat, deps.Matches, replies).RegisterRoutes(api)
		paywallHandler.New(deps.Chat).RegisterRoutes(api)

		if deps.Events != nil {
			ws.New(deps.Chat, deps.Matches, deps.Events, replies).RegisterRoutes(api)
		}
	})

	return r
}
