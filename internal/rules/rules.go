// Package rules wraps the chess rules engine: applying moves, labeling them,
// and parsing opening lines. The exploration core never interprets game
// state itself; everything rule-shaped goes through here.
package rules

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Ply is one half-move: its compact encoding plus its display label.
type Ply struct {
	UCI string
	SAN string
}

// ParseResult is the outcome of parsing an opening line.
// Unparseable tokens are skipped, not fatal; they are reported in Skipped so
// the caller can warn about them.
type ParseResult struct {
	Plies    []Ply
	FinalFEN string
	Skipped  []string
}

// StartingFEN returns the FEN of the standard starting position.
func StartingFEN() string {
	return chess.StartingPosition().String()
}

// Apply plays the UCI-encoded move on the FEN position and returns the
// resulting FEN together with the move's SAN label. It fails if the move is
// not legal in the position.
func Apply(fen, uciMove string) (nextFEN, san string, err error) {
	pos, err := positionFromFEN(fen)
	if err != nil {
		return "", "", err
	}

	move, err := chess.UCINotation{}.Decode(pos, uciMove)
	if err != nil {
		return "", "", fmt.Errorf("decoding move %q: %w", uciMove, err)
	}

	if !isLegal(pos, move) {
		return "", "", fmt.Errorf("illegal move %q in position %q", uciMove, fen)
	}

	san = chess.AlgebraicNotation{}.Encode(pos, move)
	next := pos.Update(move)
	return next.String(), san, nil
}

// ParseOpeningLine parses a starting line such as "1. Nf3 d5 2. g3".
// It first tries a structured PGN parse; if that fails it falls back to
// scanning the text token by token as SAN, skipping anything unparseable.
func ParseOpeningLine(text string) *ParseResult {
	if res, ok := parsePGN(text); ok {
		return res
	}
	return parseTokens(text)
}

// parsePGN attempts a structured parse of the whole line.
func parsePGN(text string) (*ParseResult, bool) {
	pgnFunc, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, false
	}

	game := chess.NewGame(pgnFunc)
	moves := game.Moves()
	positions := game.Positions()
	if len(positions) != len(moves)+1 {
		return nil, false
	}

	res := &ParseResult{}
	for i, move := range moves {
		pos := positions[i]
		res.Plies = append(res.Plies, Ply{
			UCI: chess.UCINotation{}.Encode(pos, move),
			SAN: chess.AlgebraicNotation{}.Encode(pos, move),
		})
	}
	res.FinalFEN = positions[len(positions)-1].String()
	return res, true
}

// parseTokens scans the line manually, treating each token as SAN.
// Move numbers are dropped; tokens that fail to parse are recorded and
// skipped.
func parseTokens(text string) *ParseResult {
	res := &ParseResult{}
	pos := chess.StartingPosition()

	tokens := strings.Fields(strings.ReplaceAll(text, ".", " "))
	for _, token := range tokens {
		if isMoveNumber(token) {
			continue
		}

		move, err := chess.AlgebraicNotation{}.Decode(pos, token)
		if err != nil {
			res.Skipped = append(res.Skipped, token)
			continue
		}

		res.Plies = append(res.Plies, Ply{
			UCI: chess.UCINotation{}.Encode(pos, move),
			SAN: chess.AlgebraicNotation{}.Encode(pos, move),
		})
		pos = pos.Update(move)
	}

	res.FinalFEN = pos.String()
	return res
}

func isMoveNumber(token string) bool {
	for _, ch := range token {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(token) > 0
}

func isLegal(pos *chess.Position, move *chess.Move) bool {
	for _, valid := range pos.ValidMoves() {
		if valid.S1() == move.S1() && valid.S2() == move.S2() && valid.Promo() == move.Promo() {
			return true
		}
	}
	return false
}

func positionFromFEN(fen string) (*chess.Position, error) {
	fenFunc, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parsing FEN %q: %w", fen, err)
	}
	return chess.NewGame(fenFunc).Position(), nil
}
