// Package record turns completed move sequences into display labels and
// portable PGN documents.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/discochess/bookminer/internal/rules"
)

// PathLabel formats a ply sequence as a move-path string, grouping plies the
// standard way: "1. e4 e5 2. Nf3 Nc6".
func PathLabel(plies []rules.Ply) string {
	var b strings.Builder
	moveNumber := 1
	for i, ply := range plies {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i%2 == 0 {
			b.WriteString(strconv.Itoa(moveNumber))
			b.WriteString(". ")
			moveNumber++
		}
		b.WriteString(ply.SAN)
	}
	return b.String()
}

// FormatScore renders a centipawn score as signed pawns: "+0.20", "-1.05".
func FormatScore(centipawns int) string {
	sign := "+"
	if centipawns < 0 {
		sign = "-"
		centipawns = -centipawns
	}
	whole := centipawns / 100
	frac := centipawns % 100
	if frac < 10 {
		return sign + strconv.Itoa(whole) + ".0" + strconv.Itoa(frac)
	}
	return sign + strconv.Itoa(whole) + "." + strconv.Itoa(frac)
}

// RenderPGN renders a finished line as a PGN document with an evaluation
// comment on the final move. The plies must be legal from the starting
// position.
func RenderPGN(plies []rules.Ply, centipawns int, variationName string) (string, error) {
	game := chess.NewGame()
	for _, ply := range plies {
		move, err := chess.UCINotation{}.Decode(game.Position(), ply.UCI)
		if err != nil {
			return "", fmt.Errorf("decoding ply %q: %w", ply.UCI, err)
		}
		if err := game.Move(move); err != nil {
			return "", fmt.Errorf("replaying ply %q: %w", ply.UCI, err)
		}
	}

	game.AddTagPair("Event", "Popular Moves vs Engine Best Response")
	game.AddTagPair("Result", "*")
	if variationName != "" {
		game.AddTagPair("Variation", variationName)
	}

	pgn := strings.TrimSpace(game.String())
	comment := fmt.Sprintf("{ Engine evaluation: %s }", FormatScore(centipawns))

	// The movetext ends with the result token; the comment goes before it.
	if strings.HasSuffix(pgn, "*") {
		pgn = strings.TrimSpace(strings.TrimSuffix(pgn, "*")) + " " + comment + " *"
	} else {
		pgn += " " + comment
	}

	return pgn + "\n", nil
}
