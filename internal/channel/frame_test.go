package channel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	data, err := encodeFrame(frame{
		JoinRef: "1",
		Ref:     "2",
		Topic:   "games:icebreaker",
		Event:   "mark_square",
		Payload: json.RawMessage(`{"phrase":"synergy"}`),
	})
	require.NoError(t, err)
	require.JSONEq(t, `["1","2","games:icebreaker","mark_square",{"phrase":"synergy"}]`, string(data))
}

func TestEncodeFrameNullRefsAndEmptyPayload(t *testing.T) {
	data, err := encodeFrame(frame{Topic: "phoenix", Event: "heartbeat"})
	require.NoError(t, err)
	require.JSONEq(t, `[null,null,"phoenix","heartbeat",{}]`, string(data))
}

func TestDecodeFrame(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		want    frame
		wantErr bool
	}{
		{
			name: "server push with null refs",
			data: `[null,null,"games:icebreaker","game_summary",{"squares":[]}]`,
			want: frame{Topic: "games:icebreaker", Event: "game_summary", Payload: json.RawMessage(`{"squares":[]}`)},
		},
		{
			name: "reply frame keeps refs",
			data: `["1","4","games:icebreaker","phx_reply",{"status":"ok","response":{}}]`,
			want: frame{JoinRef: "1", Ref: "4", Topic: "games:icebreaker", Event: "phx_reply", Payload: json.RawMessage(`{"status":"ok","response":{}}`)},
		},
		{name: "too short", data: `["1","2","t","e"]`, wantErr: true},
		{name: "not an array", data: `{"event":"x"}`, wantErr: true},
		{name: "non-string topic", data: `[null,null,7,"e",{}]`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := decodeFrame([]byte(tc.data))
			if tc.wantErr {
				require.ErrorIs(t, err, ErrMalformedFrame)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, f)
		})
	}
}

func TestDecodeReply(t *testing.T) {
	r, err := decodeReply(json.RawMessage(`{"status":"error","response":{"reason":"not allowed"}}`))
	require.NoError(t, err)
	require.Equal(t, "error", r.Status)
	require.Equal(t, "not allowed", reasonOf(r.Response))

	_, err = decodeReply(json.RawMessage(`{"response":{}}`))
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestReasonOfFallsBackToRawResponse(t *testing.T) {
	require.Equal(t, `{"code":42}`, reasonOf(json.RawMessage(`{"code":42}`)))
}
