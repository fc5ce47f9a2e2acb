package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bingohall/bingo-client/internal/game"
	"github.com/bingohall/bingo-client/internal/presence"
)

func TestBuildGridInteractivity(t *testing.T) {
	ann := &game.Player{Name: "ann", Color: "#f00"}
	sum := game.Summary{
		Squares: [][]game.Square{{
			{Phrase: "synergy", Points: 10, MarkedBy: ann},
			{Phrase: "pivot", Points: 5},
		}},
	}

	m := Build(sum, presence.Map{}, nil, "")
	require.Empty(t, m.WinnerBanner)

	marked, open := m.Grid[0][0], m.Grid[0][1]
	require.False(t, marked.Interactive)
	require.Equal(t, "ann", marked.MarkedBy)
	require.Equal(t, "#f00", marked.MarkedColor)
	require.True(t, open.Interactive)
	require.Empty(t, open.MarkedBy)
}

func TestBuildWinnerSuppressesInteractivity(t *testing.T) {
	sum := game.Summary{
		Squares: [][]game.Square{{{Phrase: "pivot", Points: 5}}},
		Winner:  &game.Player{Name: "bob", Color: "#00f"},
	}

	m := Build(sum, presence.Map{}, nil, "")
	require.Equal(t, "bob won!", m.WinnerBanner)
	// the grid stays rendered but nothing is clickable
	require.Len(t, m.Grid, 1)
	require.False(t, m.Grid[0][0].Interactive)
}

func TestBuildRosterJoinsScores(t *testing.T) {
	sum := game.Summary{Scores: map[string]int{"ann": 15}}
	roster := presence.Map{
		"ann": {{Color: "#f00", OnlineAt: "10"}, {Color: "#999", OnlineAt: "20"}},
		"bob": {{Color: "#00f", OnlineAt: "11"}},
	}

	m := Build(sum, roster, nil, "")
	require.Equal(t, []RosterRow{
		{Name: "ann", Color: "#f00", OnlineAt: "10", Score: 15},
		{Name: "bob", Color: "#00f", OnlineAt: "11", Score: 0},
	}, m.Roster)
}

func TestBuildRosterSessionlessEntry(t *testing.T) {
	roster := presence.Map{"ghost": {}}

	m := Build(game.Summary{}, roster, nil, "")
	require.Equal(t, []RosterRow{{Name: "ghost"}}, m.Roster)
}
