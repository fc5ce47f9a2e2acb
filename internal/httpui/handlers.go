// Package httpui serves the rendered game to a local browser: a plain
// HTML page for the grid, roster and chat, plus a server-sent-events
// stream of view models for live updates. User intents come back as
// form posts and are relayed into the session inbox; the redirect after
// a chat post clears the input optimistically, before any server ack.
package httpui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bingohall/bingo-client/internal/session"
	"github.com/bingohall/bingo-client/internal/view"
)

const viewTimeout = 2 * time.Second

func currentView(s *session.Session) (view.Model, error) {
	reply := make(chan view.Model, 1)
	s.Inbox() <- session.GetView{Reply: reply}
	select {
	case v := <-reply:
		return v, nil
	case <-time.After(viewTimeout):
		return view.Model{}, fmt.Errorf("session did not answer within %v", viewTimeout)
	}
}

func Page(s *session.Session, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := currentView(s)
		if err != nil {
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, v); err != nil {
			log.Warnw("render page", "err", err)
		}
	}
}

func Mark(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phrase := r.FormValue("phrase")
		if phrase == "" {
			http.Error(w, "missing phrase", http.StatusBadRequest)
			return
		}
		s.Inbox() <- session.MarkSquare{Phrase: phrase}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func Chat(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if body := r.FormValue("body"); body != "" {
			s.Inbox() <- session.SendChat{Body: body}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func Dismiss(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Inbox() <- session.DismissError{}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Events streams JSON view models as SSE. Each subscriber gets its own
// outbox; the session drops it if the browser stops reading.
func Events(s *session.Session, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		id := uuid.NewString()
		out := make(chan view.Model, 8)
		s.Inbox() <- session.Subscribe{ID: id, Outbox: out}
		defer func() { s.Inbox() <- session.Unsubscribe{ID: id} }()

		for {
			select {
			case <-r.Context().Done():
				return
			case v, open := <-out:
				if !open {
					return
				}
				data, err := json.Marshal(v)
				if err != nil {
					log.Warnw("encode view", "err", err)
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
