// Package channel is a thin client for the realtime channel transport:
// dial a socket, join one topic, push events, and stream inbound tagged
// events to the session. Reconnection and backoff are deliberately not
// handled here; a dropped socket ends the event stream and the caller
// decides what to do with the session.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("channel closed")

const (
	writeTimeout      = 3 * time.Second
	heartbeatInterval = 30 * time.Second
)

// Event is one inbound tagged message on the joined topic. Name is the
// wire event name (game_summary, presence_diff, ...); Payload is its
// undecoded body. Failed push replies surface as Name "error" with the
// server's response as payload.
type Event struct {
	Topic   string
	Name    string
	Ref     string
	Payload json.RawMessage
}

type Client struct {
	conn   *websocket.Conn
	log    *zap.SugaredLogger
	events chan Event
	outbox chan frame

	mu      sync.Mutex
	refSeq  uint64
	pending map[string]chan reply
	joinRef string
	topic   string

	ctx    context.Context
	cancel context.CancelFunc
}

// Dial connects the websocket and starts the read, write and heartbeat
// loops. The caller must Join before pushing domain events.
func Dial(ctx context.Context, socketURL string, log *zap.SugaredLogger) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socketURL, err)
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		log:     log,
		events:  make(chan Event, 64),
		outbox:  make(chan frame, 16),
		pending: make(map[string]chan reply),
		ctx:     cctx,
		cancel:  cancel,
	}
	go c.writeLoop()
	go c.readLoop()
	go c.heartbeatLoop()
	return c, nil
}

// Events is the inbound stream. It is closed when the socket dies or
// Close is called.
func (c *Client) Events() <-chan Event { return c.events }

// Join subscribes to topic and waits for the server's reply. At most
// one topic is joined per client.
func (c *Client) Join(ctx context.Context, topic string) error {
	ref := c.nextRef()
	replyCh := make(chan reply, 1)

	c.mu.Lock()
	c.joinRef = ref
	c.topic = topic
	c.pending[ref] = replyCh
	c.mu.Unlock()

	c.send(frame{JoinRef: ref, Ref: ref, Topic: topic, Event: evtJoin, Payload: json.RawMessage(`{}`)})

	select {
	case r := <-replyCh:
		if r.Status != "ok" {
			return fmt.Errorf("join %s: %s", topic, reasonOf(r.Response))
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("join %s: %w", topic, ctx.Err())
	case <-c.ctx.Done():
		return ErrClosed
	}
}

// Push sends a domain event on the joined topic. It is fire-and-forget:
// a server-side failure comes back later as an "error" event on the
// stream, only local failures are returned here.
func (c *Client) Push(event string, payload any) error {
	c.mu.Lock()
	topic, joinRef := c.topic, c.joinRef
	c.mu.Unlock()
	if topic == "" {
		return fmt.Errorf("push %s: no joined topic", event)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("push %s: %w", event, err)
	}

	select {
	case c.outbox <- frame{JoinRef: joinRef, Ref: c.nextRef(), Topic: topic, Event: event, Payload: body}:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	}
}

func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Client) nextRef() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refSeq++
	return strconv.FormatUint(c.refSeq, 10)
}

func (c *Client) send(f frame) {
	select {
	case c.outbox <- f:
	case <-c.ctx.Done():
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case f := <-c.outbox:
			data, err := encodeFrame(f)
			if err != nil {
				c.log.Errorw("encode frame", "event", f.Event, "err", err)
				continue
			}
			ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err = c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Warnw("socket write", "event", f.Event, "err", err)
			}
		}
	}
}

func (c *Client) readLoop() {
	defer close(c.events)
	defer c.cancel()

	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if c.ctx.Err() == nil {
					c.log.Warnw("socket read", "err", err)
				}
			}
			return
		}

		f, err := decodeFrame(data)
		if err != nil {
			c.log.Warnw("drop inbound frame", "err", err)
			continue
		}
		c.dispatch(f)
	}
}

func (c *Client) dispatch(f frame) {
	if f.Event != evtReply {
		c.deliver(Event{Topic: f.Topic, Name: f.Event, Ref: f.Ref, Payload: f.Payload})
		return
	}

	r, err := decodeReply(f.Payload)
	if err != nil {
		c.log.Warnw("drop reply", "ref", f.Ref, "err", err)
		return
	}

	c.mu.Lock()
	waiter := c.pending[f.Ref]
	delete(c.pending, f.Ref)
	c.mu.Unlock()

	if waiter != nil {
		waiter <- r
		return
	}
	// Unsolicited ok replies are push acks; only failures matter to the
	// session, which shows them in the error banner.
	if r.Status != "ok" {
		c.deliver(Event{Topic: f.Topic, Name: evtError, Ref: f.Ref, Payload: r.Response})
	}
}

func (c *Client) deliver(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

func (c *Client) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.send(frame{Ref: c.nextRef(), Topic: heartbeatTopic, Event: evtHeartbeat, Payload: json.RawMessage(`{}`)})
		}
	}
}

func reasonOf(response json.RawMessage) string {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(response, &body); err == nil && body.Reason != "" {
		return body.Reason
	}
	return string(response)
}
