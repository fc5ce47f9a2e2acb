// Package view derives render-ready models from the session's leaf
// states. Everything here is read-only joining at render time; the
// leaves never reference each other.
package view

import (
	"fmt"

	"github.com/bingohall/bingo-client/internal/chat"
	"github.com/bingohall/bingo-client/internal/game"
	"github.com/bingohall/bingo-client/internal/presence"
)

// Cell is one grid square ready to render. Interactive reports whether
// clicking it should emit a mark intent: the square is unmarked and the
// game has no winner yet.
type Cell struct {
	Phrase      string `json:"phrase"`
	Points      int    `json:"points"`
	MarkedBy    string `json:"marked_by,omitempty"`
	MarkedColor string `json:"marked_color,omitempty"`
	Interactive bool   `json:"interactive"`
}

// RosterRow joins one presence entry with its score. Color and OnlineAt
// come from the entry's first session; Score defaults to zero for a
// player the summary has no row for.
type RosterRow struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	OnlineAt string `json:"online_at"`
	Score    int    `json:"score"`
}

// Model is the complete render model pushed to subscribers after every
// state change.
type Model struct {
	Grid         [][]Cell       `json:"grid"`
	Roster       []RosterRow    `json:"roster"`
	Messages     []chat.Message `json:"messages"`
	WinnerBanner string         `json:"winner_banner,omitempty"`
	ErrorBanner  string         `json:"error_banner,omitempty"`
}

func Build(sum game.Summary, roster presence.Map, messages []chat.Message, errorBanner string) Model {
	m := Model{
		Grid:        buildGrid(sum),
		Roster:      buildRoster(sum, roster),
		Messages:    messages,
		ErrorBanner: errorBanner,
	}
	if sum.Winner != nil {
		m.WinnerBanner = fmt.Sprintf("%s won!", sum.Winner.Name)
	}
	return m
}

func buildGrid(sum game.Summary) [][]Cell {
	grid := make([][]Cell, len(sum.Squares))
	for i, row := range sum.Squares {
		grid[i] = make([]Cell, len(row))
		for j, sq := range row {
			cell := Cell{
				Phrase:      sq.Phrase,
				Points:      sq.Points,
				Interactive: sq.MarkedBy == nil && sum.Winner == nil,
			}
			if sq.MarkedBy != nil {
				cell.MarkedBy = sq.MarkedBy.Name
				cell.MarkedColor = sq.MarkedBy.Color
			}
			grid[i][j] = cell
		}
	}
	return grid
}

func buildRoster(sum game.Summary, roster presence.Map) []RosterRow {
	rows := make([]RosterRow, 0, len(roster))
	for _, name := range roster.Names() {
		row := RosterRow{Name: name, Score: sum.Score(name)}
		// A session-less entry should be unreachable given the merge
		// invariant, but renders harmlessly if it ever shows up.
		if meta, ok := roster.First(name); ok {
			row.Color = meta.Color
			row.OnlineAt = meta.OnlineAt
		}
		rows = append(rows, row)
	}
	return rows
}
