package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/soignetech/itsupport-chatbot/internal/handler/chat"
	middlewarePkg "github.com/soignetech/itsupport-chatbot/internal/middleware"
	chatservice "github.com/soignetech/itsupport-chatbot/internal/service/chat"
	"github.com/soignetech/itsupport-chatbot/pkg/utils"
)

const serviceVersion = "2.0.0"

// NewRouter wires HTTP routes to the chat service.
func NewRouter(chatSvc *chatservice.Service, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	r.Get("/", handleRoot)

	chatHandler := chat.New(chatSvc)
	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	return r
}

// handleRoot describes the API surface for anyone poking the base URL.
func handleRoot(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "IT Support Chatbot API",
		"version": serviceVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"chat":   "/api/chat",
			"health": "/api/health",
			"reset":  "/api/reset/{session_id}",
		},
	})
}
