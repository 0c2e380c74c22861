// Package position provides canonical identity keys for chess positions.
//
// Two game states that are rule-equivalent must produce the same canonical
// key, even when they were reached through different move orders. Canonical
// keys are what make cache hits across transpositions possible.
package position

import (
	"errors"
	"strings"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = errors.New("invalid FEN notation")

// keySeparator joins a canonical position and a move encoding into a CacheKey.
// It cannot occur inside a FEN field or a UCI move.
const keySeparator = "|"

// Canonical returns the canonical form of a FEN string.
// It keeps piece placement, side to move, castling rights, and en passant
// square, dropping the halfmove clock and fullmove number so that
// transpositions reached at different move numbers compare equal.
func Canonical(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return "", ErrInvalidFEN
	}

	if !isValidPiecePlacement(parts[0]) {
		return "", ErrInvalidFEN
	}

	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}

	return strings.Join(parts[:4], " "), nil
}

// CacheKey returns the durable key for the best-reply computation made after
// playing the given move (in UCI encoding) from the canonical position pos.
func CacheKey(pos, uci string) string {
	return pos + keySeparator + uci
}

// SplitCacheKey splits a CacheKey back into its canonical position and move
// encoding. The second return is false if the key is not well formed.
func SplitCacheKey(key string) (pos, uci string, ok bool) {
	i := strings.LastIndex(key, keySeparator)
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// SideToMove returns "w" or "b" from a FEN string.
func SideToMove(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return "", ErrInvalidFEN
	}
	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}
	return parts[1], nil
}

// isValidPiecePlacement validates the piece placement part of a FEN.
func isValidPiecePlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}

	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			case ch == 'P', ch == 'N', ch == 'B', ch == 'R', ch == 'Q', ch == 'K',
				ch == 'p', ch == 'n', ch == 'b', ch == 'r', ch == 'q', ch == 'k':
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}

	return true
}
