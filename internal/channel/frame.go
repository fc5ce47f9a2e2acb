package channel

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedFrame = errors.New("malformed channel frame")

// Wire event names owned by the transport itself. Everything else is a
// domain event and is delivered to the session untouched.
const (
	evtJoin      = "phx_join"
	evtReply     = "phx_reply"
	evtHeartbeat = "heartbeat"
	evtError     = "error"

	heartbeatTopic = "phoenix"
)

// frame is one wire message: a five element JSON array of
// [join_ref, ref, topic, event, payload]. join_ref and ref are null on
// server-initiated messages.
type frame struct {
	JoinRef string
	Ref     string
	Topic   string
	Event   string
	Payload json.RawMessage
}

func encodeFrame(f frame) ([]byte, error) {
	parts := []any{nullableRef(f.JoinRef), nullableRef(f.Ref), f.Topic, f.Event, f.Payload}
	if f.Payload == nil {
		parts[4] = json.RawMessage(`{}`)
	}
	return json.Marshal(parts)
}

func nullableRef(ref string) any {
	if ref == "" {
		return nil
	}
	return ref
}

func decodeFrame(data []byte) (frame, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if len(parts) != 5 {
		return frame{}, fmt.Errorf("%w: got %d elements, want 5", ErrMalformedFrame, len(parts))
	}

	var f frame
	if err := decodeRef(parts[0], &f.JoinRef); err != nil {
		return frame{}, err
	}
	if err := decodeRef(parts[1], &f.Ref); err != nil {
		return frame{}, err
	}
	if err := json.Unmarshal(parts[2], &f.Topic); err != nil {
		return frame{}, fmt.Errorf("%w: topic: %v", ErrMalformedFrame, err)
	}
	if err := json.Unmarshal(parts[3], &f.Event); err != nil {
		return frame{}, fmt.Errorf("%w: event: %v", ErrMalformedFrame, err)
	}
	f.Payload = parts[4]
	return f, nil
}

func decodeRef(raw json.RawMessage, dst *string) error {
	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: ref: %v", ErrMalformedFrame, err)
	}
	return nil
}

// reply is the payload of a phx_reply frame.
type reply struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

func decodeReply(raw json.RawMessage) (reply, error) {
	var r reply
	if err := json.Unmarshal(raw, &r); err != nil {
		return reply{}, fmt.Errorf("%w: reply: %v", ErrMalformedFrame, err)
	}
	if r.Status == "" {
		return reply{}, fmt.Errorf("%w: reply missing status", ErrMalformedFrame)
	}
	return r, nil
}
