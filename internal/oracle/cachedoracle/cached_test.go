package cachedoracle

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/bookminer/internal/oracle"
)

type countingOracle struct {
	calls int
	moves []oracle.Candidate
	err   error
}

func (c *countingOracle) TopMoves(ctx context.Context, fen string, breadth int) ([]oracle.Candidate, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.moves, nil
}

func TestMemoizesByPositionAndBreadth(t *testing.T) {
	underlying := &countingOracle{
		moves: []oracle.Candidate{{UCI: "e2e4", SAN: "e4", Games: 1000}},
	}
	o, err := New(underlying, 8, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	first, err := o.TopMoves(ctx, "fen1", 5)
	if err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	second, err := o.TopMoves(ctx, "fen1", 5)
	if err != nil {
		t.Fatalf("memoized TopMoves() error = %v", err)
	}

	if underlying.calls != 1 {
		t.Errorf("underlying calls = %d, want 1", underlying.calls)
	}
	if len(first) != 1 || len(second) != 1 || second[0] != first[0] {
		t.Errorf("memoized response differs: %+v vs %+v", first, second)
	}

	// A different breadth is a different query.
	if _, err := o.TopMoves(ctx, "fen1", 3); err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	if underlying.calls != 2 {
		t.Errorf("underlying calls after breadth change = %d, want 2", underlying.calls)
	}
}

func TestMemoReturnsCopies(t *testing.T) {
	underlying := &countingOracle{
		moves: []oracle.Candidate{{UCI: "e2e4", SAN: "e4", Games: 1000}},
	}
	o, err := New(underlying, 8, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	first, err := o.TopMoves(ctx, "fen1", 5)
	if err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	first[0].SAN = "mutated"

	second, err := o.TopMoves(ctx, "fen1", 5)
	if err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	if second[0].SAN != "e4" {
		t.Errorf("caller mutation leaked into memo: %+v", second[0])
	}
}

func TestFailuresNotMemoized(t *testing.T) {
	underlying := &countingOracle{err: errors.New("boom")}
	o, err := New(underlying, 8, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if _, err := o.TopMoves(ctx, "fen1", 5); err == nil {
		t.Fatal("TopMoves() error = nil, want failure")
	}

	underlying.err = nil
	underlying.moves = []oracle.Candidate{{UCI: "e2e4", SAN: "e4", Games: 1000}}
	got, err := o.TopMoves(ctx, "fen1", 5)
	if err != nil {
		t.Fatalf("retried TopMoves() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("retry after failure got %d candidates, want 1", len(got))
	}
	if underlying.calls != 2 {
		t.Errorf("underlying calls = %d, want 2", underlying.calls)
	}
}

func TestEviction(t *testing.T) {
	underlying := &countingOracle{
		moves: []oracle.Candidate{{UCI: "e2e4", SAN: "e4", Games: 1000}},
	}
	o, err := New(underlying, 1, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if _, err := o.TopMoves(ctx, "fen1", 5); err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	if _, err := o.TopMoves(ctx, "fen2", 5); err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	// fen1 was evicted by fen2 in a single-slot memo.
	if _, err := o.TopMoves(ctx, "fen1", 5); err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	if underlying.calls != 3 {
		t.Errorf("underlying calls = %d, want 3", underlying.calls)
	}
}
