package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedMessage = errors.New("malformed chat message")

// Author is the sending player as reported by the server.
type Author struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Message is one chat line. The display list is newest-first and
// append-only; messages are never removed.
type Message struct {
	Player Author `json:"player"`
	Body   string `json:"body"`
}

// DecodeMessage decodes a new_chat_message payload. Both player and
// body must be present.
func DecodeMessage(raw json.RawMessage) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	for _, key := range []string{"player", "body"} {
		if _, ok := fields[key]; !ok {
			return Message{}, fmt.Errorf("%w: missing %q", ErrMalformedMessage, key)
		}
	}
	var m Message
	if err := json.Unmarshal(fields["player"], &m.Player); err != nil {
		return Message{}, fmt.Errorf("%w: player: %v", ErrMalformedMessage, err)
	}
	if err := json.Unmarshal(fields["body"], &m.Body); err != nil {
		return Message{}, fmt.Errorf("%w: body: %v", ErrMalformedMessage, err)
	}
	return m, nil
}

// EncodeMessage builds the outbound new_chat_message payload. The
// server attaches the authenticated player, so only the text travels.
func EncodeMessage(body string) map[string]string {
	return map[string]string{"body": body}
}
