package presence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncFullReplacesKeySet(t *testing.T) {
	current := Map{"stale": {{Color: "#000", OnlineAt: "0"}}}

	raw := json.RawMessage(`{
		"ann": {"metas":[{"color":"#f00","online_at":"10"}]},
		"bob": {"metas":[{"color":"#00f","online_at":"11"},{"color":"#0f0","online_at":"12"}]}
	}`)

	next, err := SyncFull(current, raw)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ann", "bob"}, next.Names())
	require.Len(t, next["bob"], 2)

	// stale entries absent from the payload are gone, prior map untouched
	require.Contains(t, current, "stale")
}

func TestSyncDiffJoinOnEmptyRoster(t *testing.T) {
	raw := json.RawMessage(`{"joins":{"bob":{"metas":[{"color":"#fff","online_at":"1"}]}},"leaves":{}}`)

	next, err := SyncDiff(Map{}, raw)
	require.NoError(t, err)
	require.Equal(t, Map{"bob": {{Color: "#fff", OnlineAt: "1"}}}, next)
}

func TestSyncDiffJoinThenLeaveNetsToAbsence(t *testing.T) {
	join := json.RawMessage(`{"joins":{"bob":{"metas":[{"color":"#fff","online_at":"1"}]}},"leaves":{}}`)
	leave := json.RawMessage(`{"joins":{},"leaves":{"bob":{"metas":[{"color":"#fff","online_at":"1"}]}}}`)

	after, err := SyncDiff(Map{}, join)
	require.NoError(t, err)
	after, err = SyncDiff(after, leave)
	require.NoError(t, err)
	require.NotContains(t, after, "bob")
}

func TestSyncDiffLeaveShrinksSessionList(t *testing.T) {
	current := Map{"ann": {
		{Color: "#f00", OnlineAt: "1"},
		{Color: "#f00", OnlineAt: "2"},
	}}
	raw := json.RawMessage(`{"joins":{},"leaves":{"ann":{"metas":[{"color":"#f00","online_at":"2"}]}}}`)

	next, err := SyncDiff(current, raw)
	require.NoError(t, err)
	require.Equal(t, []Meta{{Color: "#f00", OnlineAt: "1"}}, next["ann"])
	// prior roster untouched
	require.Len(t, current["ann"], 2)
}

func TestSyncDiffJoinExtendsAtTail(t *testing.T) {
	current := Map{"ann": {{Color: "#f00", OnlineAt: "1"}}}
	raw := json.RawMessage(`{"joins":{"ann":{"metas":[{"color":"#0f0","online_at":"5"}]}},"leaves":{}}`)

	next, err := SyncDiff(current, raw)
	require.NoError(t, err)
	require.Equal(t, []Meta{
		{Color: "#f00", OnlineAt: "1"},
		{Color: "#0f0", OnlineAt: "5"},
	}, next["ann"])

	first, ok := next.First("ann")
	require.True(t, ok)
	require.Equal(t, "1", first.OnlineAt)
}

func TestSyncDiffMalformedLeavesCurrentUntouched(t *testing.T) {
	current := Map{"ann": {{Color: "#f00", OnlineAt: "1"}}}

	cases := []string{
		`{"joins":{}}`,                    // missing leaves
		`{"leaves":{}}`,                   // missing joins
		`{"joins":{"x":{}},"leaves":{}}`,  // entry without metas
		`{"joins":"nope","leaves":{}}`,    // joins not a map
		`[]`,                              // not an object
	}
	for _, payload := range cases {
		next, err := SyncDiff(current, json.RawMessage(payload))
		require.ErrorIs(t, err, ErrMalformedPresence, payload)
		require.Equal(t, current, next, payload)
	}
}

func TestFirstOnUnknownName(t *testing.T) {
	_, ok := Map{}.First("ghost")
	require.False(t, ok)
}
