package httpui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bingohall/bingo-client/internal/session"
)

// SetupRoutes builds the local UI router with the session injected.
func SetupRoutes(s *session.Session, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Get("/", Page(s, log))
	r.Post("/mark", Mark(s))
	r.Post("/chat", Chat(s))
	r.Post("/dismiss", Dismiss(s))
	r.Get("/events", Events(s, log))
	r.Get("/healthz", Healthz)
	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
