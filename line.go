package bookminer

import (
	"github.com/discochess/bookminer/internal/record"
	"github.com/discochess/bookminer/internal/state"
)

// Ply is one half-move of a line: compact encoding plus display label.
type Ply struct {
	// UCI is the move in coordinate encoding, e.g. "g1f3".
	UCI string

	// SAN is the human-readable label, e.g. "Nf3".
	SAN string
}

// Line describes one completed candidate-plus-reply extension of the
// opening tree.
type Line struct {
	// ID is the sequential record id, assigned on first computation and
	// stable across resumed runs.
	ID int

	// Moves is the move-path label, e.g. "1. e4 e5".
	Moves string

	// Centipawns is the final evaluation, from the perspective of the side
	// that played the last candidate move.
	Centipawns int

	// Games is the support count of the candidate move that finished the
	// line.
	Games int

	// Plies is the length of the line in half-moves.
	Plies int
}

// Score returns the evaluation as signed pawns, e.g. "+0.20".
func (l Line) Score() string {
	return record.FormatScore(l.Centipawns)
}

// LineHandler receives each freshly computed line together with its full ply
// path. It is never invoked for cache replays, so a handler that writes one
// file per line never writes duplicates across resumed runs.
type LineHandler func(line Line, path []Ply)

// lineFromRecord converts a stored record into the public view.
func lineFromRecord(rec state.LineRecord) Line {
	return Line{
		ID:         rec.ID,
		Moves:      rec.Moves,
		Centipawns: rec.Centipawns,
		Games:      rec.Games,
		Plies:      rec.Plies,
	}
}
