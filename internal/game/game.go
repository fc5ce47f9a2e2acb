package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedSummary = errors.New("malformed game summary")

// Player identifies who marked a square. Color is a display hint only;
// the server does not enforce uniqueness.
type Player struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Square is one cell of the bingo grid. A non-nil MarkedBy means the
// square is taken and no longer clickable. The server owns all marking;
// the client never mutates a square locally.
type Square struct {
	Phrase   string  `json:"phrase"`
	Points   int     `json:"points"`
	MarkedBy *Player `json:"marked_by"`
}

// Summary is the full game state as pushed by the server on every
// game_summary event. It is replaced wholesale; there is no incremental
// merge.
type Summary struct {
	Squares [][]Square     `json:"squares"`
	Scores  map[string]int `json:"scores"`
	Winner  *Player        `json:"winner"`
}

// DecodeSummary decodes a game_summary payload. The payload must carry
// all of squares, scores and winner (winner may be JSON null — absence
// of the key is an error, null means no bingo yet). On failure the
// caller keeps its prior summary.
func DecodeSummary(raw json.RawMessage) (Summary, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrMalformedSummary, err)
	}

	for _, key := range []string{"squares", "scores", "winner"} {
		if _, ok := fields[key]; !ok {
			return Summary{}, fmt.Errorf("%w: missing %q", ErrMalformedSummary, key)
		}
	}

	var rows [][]map[string]json.RawMessage
	if err := json.Unmarshal(fields["squares"], &rows); err != nil {
		return Summary{}, fmt.Errorf("%w: squares: %v", ErrMalformedSummary, err)
	}

	squares := make([][]Square, len(rows))
	for i, row := range rows {
		squares[i] = make([]Square, len(row))
		for j, cell := range row {
			sq, err := decodeSquare(cell)
			if err != nil {
				return Summary{}, err
			}
			squares[i][j] = sq
		}
	}

	s := Summary{Squares: squares}
	if err := json.Unmarshal(fields["scores"], &s.Scores); err != nil {
		return Summary{}, fmt.Errorf("%w: scores: %v", ErrMalformedSummary, err)
	}
	if err := json.Unmarshal(fields["winner"], &s.Winner); err != nil {
		return Summary{}, fmt.Errorf("%w: winner: %v", ErrMalformedSummary, err)
	}
	return s, nil
}

// Each square object must carry phrase, points and marked_by (null when
// unmarked).
func decodeSquare(cell map[string]json.RawMessage) (Square, error) {
	for _, key := range []string{"phrase", "points", "marked_by"} {
		if _, ok := cell[key]; !ok {
			return Square{}, fmt.Errorf("%w: square missing %q", ErrMalformedSummary, key)
		}
	}
	var sq Square
	if err := json.Unmarshal(cell["phrase"], &sq.Phrase); err != nil {
		return Square{}, fmt.Errorf("%w: square phrase: %v", ErrMalformedSummary, err)
	}
	if err := json.Unmarshal(cell["points"], &sq.Points); err != nil {
		return Square{}, fmt.Errorf("%w: square points: %v", ErrMalformedSummary, err)
	}
	if err := json.Unmarshal(cell["marked_by"], &sq.MarkedBy); err != nil {
		return Square{}, fmt.Errorf("%w: square marked_by: %v", ErrMalformedSummary, err)
	}
	return sq, nil
}

// Score returns the named player's score, zero when absent. A roster
// entry without a score row is a player who has not marked anything yet.
func (s Summary) Score(name string) int {
	return s.Scores[name]
}
