// Package state holds the durable aggregate produced by an exploration run:
// the best-reply cache, the fully-explored position set, and the emitted
// line records. A State is owned and mutated by exactly one explorer; the
// checkpoint stores only serialize and deserialize it.
package state

import (
	"errors"
	"sort"
)

// ErrDivergentReply is returned when a cache key is stored twice with
// different values. The evaluator is assumed deterministic for a fixed
// position and search budget, so a divergent re-store indicates either a
// non-deterministic evaluator or a key-collision bug. The original value is
// kept.
var ErrDivergentReply = errors.New("state: divergent reply for existing cache key")

// BestReply is the evaluator's chosen response to a candidate move.
// Centipawns is from the perspective of the player who played the candidate
// move, i.e. the side to move before the candidate was made.
type BestReply struct {
	UCI        string `json:"uci"`
	SAN        string `json:"san"`
	Centipawns int    `json:"cp"`
}

// LineRecord describes one completed candidate-plus-reply extension of the
// opening tree. Records are append-only and ids are assigned sequentially on
// first computation, never on cache replays.
type LineRecord struct {
	ID         int    `json:"id"`
	Moves      string `json:"moves"`
	Centipawns int    `json:"cp"`
	Games      int    `json:"games"`
	Plies      int    `json:"plies"`
}

// Document is the serialized checkpoint form of a State.
// All fields are optional on load: a document missing any of them decodes to
// the corresponding empty value, so older checkpoints keep working.
type Document struct {
	Replies  map[string]BestReply `json:"replies,omitempty"`
	Explored []string             `json:"explored,omitempty"`
	NextID   int                  `json:"next_id,omitempty"`
	Lines    []LineRecord         `json:"lines,omitempty"`
}

// State is the in-memory working form of a checkpoint document.
type State struct {
	replies  map[string]BestReply
	explored map[string]struct{}
	nextID   int
	lines    []LineRecord
}

// New returns an empty State.
func New() *State {
	return &State{
		replies:  make(map[string]BestReply),
		explored: make(map[string]struct{}),
	}
}

// FromDocument builds a State from a loaded checkpoint document.
// A nil document yields an empty State.
func FromDocument(doc *Document) *State {
	s := New()
	if doc == nil {
		return s
	}
	for key, reply := range doc.Replies {
		s.replies[key] = reply
	}
	for _, pos := range doc.Explored {
		s.explored[pos] = struct{}{}
	}
	s.nextID = doc.NextID
	s.lines = append(s.lines, doc.Lines...)
	return s
}

// Document returns the serializable form of the State.
// The explored set is emitted sorted so two equal states serialize
// identically.
func (s *State) Document() *Document {
	doc := &Document{
		Replies: make(map[string]BestReply, len(s.replies)),
		NextID:  s.nextID,
	}
	for key, reply := range s.replies {
		doc.Replies[key] = reply
	}
	doc.Explored = make([]string, 0, len(s.explored))
	for pos := range s.explored {
		doc.Explored = append(doc.Explored, pos)
	}
	sort.Strings(doc.Explored)
	doc.Lines = append(doc.Lines, s.lines...)
	return doc
}

// Lookup returns the cached best reply for a cache key, if present.
func (s *State) Lookup(key string) (BestReply, bool) {
	reply, ok := s.replies[key]
	return reply, ok
}

// Store records the best reply for a cache key. Re-storing the same value is
// a no-op. Re-storing a different value keeps the original and returns
// ErrDivergentReply.
func (s *State) Store(key string, reply BestReply) error {
	if existing, ok := s.replies[key]; ok {
		if existing != reply {
			return ErrDivergentReply
		}
		return nil
	}
	s.replies[key] = reply
	return nil
}

// MarkExplored records that every qualifying candidate move from the given
// canonical position has been processed to completion.
func (s *State) MarkExplored(pos string) {
	s.explored[pos] = struct{}{}
}

// IsExplored reports whether the position was previously marked explored.
func (s *State) IsExplored(pos string) bool {
	_, ok := s.explored[pos]
	return ok
}

// AppendLine assigns the next sequential id to a finished line and appends
// its record.
func (s *State) AppendLine(moves string, centipawns, games, plies int) LineRecord {
	s.nextID++
	rec := LineRecord{
		ID:         s.nextID,
		Moves:      moves,
		Centipawns: centipawns,
		Games:      games,
		Plies:      plies,
	}
	s.lines = append(s.lines, rec)
	return rec
}

// Lines returns the emitted line records in emission order.
// The returned slice is shared; callers must not mutate it.
func (s *State) Lines() []LineRecord {
	return s.lines
}

// LastID returns the last assigned line record id.
func (s *State) LastID() int {
	return s.nextID
}

// ReplyCount returns the number of cached best replies.
func (s *State) ReplyCount() int {
	return len(s.replies)
}

// ExploredCount returns the number of fully explored positions.
func (s *State) ExploredCount() int {
	return len(s.explored)
}
