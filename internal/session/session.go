// Package session is the root orchestrator: one goroutine owns the
// three leaf states (game, presence, chat) plus the error banner,
// routes inbound channel events to the leaf decoders and user intents
// to the channel, and fans the derived view out to subscribers. One
// event is fully processed before the next; nothing here is shared.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bingohall/bingo-client/internal/channel"
	"github.com/bingohall/bingo-client/internal/chat"
	"github.com/bingohall/bingo-client/internal/game"
	"github.com/bingohall/bingo-client/internal/presence"
	"github.com/bingohall/bingo-client/internal/view"
)

// Inbound wire event names routed by the session.
const (
	EventGameSummary   = "game_summary"
	EventNewChatMsg    = "new_chat_message"
	EventPresenceState = "presence_state"
	EventPresenceDiff  = "presence_diff"
	EventError         = "error"
)

// Outbound wire event names.
const (
	PushMarkSquare = "mark_square"
	PushNewChatMsg = "new_chat_message"
)

var errMissingReason = errors.New("error payload missing reason")

// Pusher sends an outbound event on the joined channel. Satisfied by
// *channel.Client.
type Pusher interface {
	Push(event string, payload any) error
}

// Recorder persists chat messages as they arrive. Satisfied by
// *transcript.Store; may be nil when persistence is disabled.
type Recorder interface {
	Append(chat.Message) error
}

type Msg interface{ isSessionMsg() }

// FromChannel wraps one inbound tagged event off the channel stream.
type FromChannel struct{ Event channel.Event }

// MarkSquare is the user intent emitted by clicking an unmarked square.
type MarkSquare struct{ Phrase string }

// SendChat is the user intent emitted by submitting the chat form.
type SendChat struct{ Body string }

// DismissError clears the error banner.
type DismissError struct{}

type Subscribe struct {
	ID     string
	Outbox chan view.Model
}

type Unsubscribe struct{ ID string }

type GetView struct{ Reply chan view.Model }

type Shutdown struct{}

func (FromChannel) isSessionMsg()  {}
func (MarkSquare) isSessionMsg()   {}
func (SendChat) isSessionMsg()     {}
func (DismissError) isSessionMsg() {}
func (Subscribe) isSessionMsg()    {}
func (Unsubscribe) isSessionMsg()  {}
func (GetView) isSessionMsg()      {}
func (Shutdown) isSessionMsg()     {}

type Session struct {
	inbox chan Msg
	push  Pusher
	rec   Recorder
	log   *zap.SugaredLogger

	game      game.Summary
	roster    presence.Map
	messages  []chat.Message
	lastError string

	subs   map[string]chan view.Model
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, push Pusher, rec Recorder, log *zap.SugaredLogger) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		inbox:  make(chan Msg, 64),
		push:   push,
		rec:    rec,
		log:    log,
		roster: presence.Map{},
		subs:   make(map[string]chan view.Model),
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Attach pumps the channel's event stream into the inbox so inbound
// events and user intents share one queue.
func (s *Session) Attach(events <-chan channel.Event) {
	go func() {
		for {
			select {
			case <-s.ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					s.log.Info("channel event stream closed")
					return
				}
				select {
				case s.inbox <- FromChannel{Event: ev}:
				case <-s.ctx.Done():
					return
				}
			}
		}
	}()
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromChannel:
				if s.handleEvent(msg.Event) {
					s.broadcast()
				}

			case MarkSquare:
				// Fire-and-forget: a server-side rejection comes back
				// later as an error event. No retry on failure.
				if err := s.push.Push(PushMarkSquare, map[string]string{"phrase": msg.Phrase}); err != nil {
					s.lastError = err.Error()
					s.broadcast()
				}

			case SendChat:
				if err := s.push.Push(PushNewChatMsg, chat.EncodeMessage(msg.Body)); err != nil {
					s.lastError = err.Error()
					s.broadcast()
				}

			case DismissError:
				s.lastError = ""
				s.broadcast()

			case Subscribe:
				s.subs[msg.ID] = msg.Outbox
				msg.Outbox <- s.view()

			case Unsubscribe:
				delete(s.subs, msg.ID)

			case GetView:
				msg.Reply <- s.view()

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// handleEvent dispatches one inbound event to its leaf decoder. Any
// decode failure sets the banner and leaves the prior leaf state
// untouched; the banner is overwrite-only, last write wins. The return
// reports whether subscribers need a fresh view.
func (s *Session) handleEvent(ev channel.Event) bool {
	switch ev.Name {
	case EventGameSummary:
		sum, err := game.DecodeSummary(ev.Payload)
		if err != nil {
			s.lastError = err.Error()
			return true
		}
		s.game = sum

	case EventNewChatMsg:
		m, err := chat.DecodeMessage(ev.Payload)
		if err != nil {
			s.lastError = err.Error()
			return true
		}
		s.messages = append([]chat.Message{m}, s.messages...)
		if s.rec != nil {
			if err := s.rec.Append(m); err != nil {
				s.log.Warnw("transcript append", "err", err)
			}
		}

	case EventPresenceState:
		next, err := presence.SyncFull(s.roster, ev.Payload)
		if err != nil {
			s.lastError = err.Error()
			return true
		}
		s.roster = next

	case EventPresenceDiff:
		next, err := presence.SyncDiff(s.roster, ev.Payload)
		if err != nil {
			s.lastError = err.Error()
			return true
		}
		s.roster = next

	case EventError:
		reason, err := decodeReason(ev.Payload)
		if err != nil {
			s.lastError = err.Error()
			return true
		}
		s.lastError = reason

	default:
		s.log.Debugw("ignore event", "name", ev.Name, "topic", ev.Topic)
		return false
	}
	return true
}

func (s *Session) view() view.Model {
	return view.Build(s.game, s.roster, s.messages, s.lastError)
}

func (s *Session) broadcast() {
	v := s.view()
	for id, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// Subscriber is slow or gone - drop it.
			close(ch)
			delete(s.subs, id)
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.cancel()
}

func decodeReason(raw json.RawMessage) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("%w: %v", errMissingReason, err)
	}
	sub, ok := fields["reason"]
	if !ok {
		return "", errMissingReason
	}
	var reason string
	if err := json.Unmarshal(sub, &reason); err != nil {
		return "", fmt.Errorf("%w: %v", errMissingReason, err)
	}
	return reason, nil
}
