package lichess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

const explorerBody = `{
	"moves": [
		{"uci": "e2e4", "san": "e4", "white": 500, "draws": 300, "black": 200},
		{"uci": "d2d4", "san": "d4", "white": 350, "draws": 250, "black": 200},
		{"uci": "g1f3", "san": "Nf3", "white": 100, "draws": 80, "black": 60}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithQueryInterval(time.Microsecond),
	)
}

func TestTopMoves(t *testing.T) {
	var (
		mu    sync.Mutex
		query url.Values
	)
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		query = r.URL.Query()
		mu.Unlock()
		w.Write([]byte(explorerBody))
	})

	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	candidates, err := cl.TopMoves(context.Background(), fen, 5)
	if err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}

	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}

	first := candidates[0]
	if first.UCI != "e2e4" || first.SAN != "e4" {
		t.Errorf("first candidate = %+v, want e2e4/e4", first)
	}
	if first.Games != 1000 {
		t.Errorf("first.Games = %d, want 1000", first.Games)
	}
	if first.WhiteWins != 500 || first.Draws != 300 || first.BlackWins != 200 {
		t.Errorf("first outcome counts = %+v, want 500/300/200", first)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := query.Get("fen"); got != fen {
		t.Errorf("fen query param = %q, want %q", got, fen)
	}
	if got := query.Get("moves"); got != "5" {
		t.Errorf("moves query param = %q, want %q", got, "5")
	}
	if got := query.Get("ratings"); got == "" {
		t.Error("ratings query param missing")
	}
	if got := query.Get("speeds"); got == "" {
		t.Error("speeds query param missing")
	}
}

func TestTopMovesTruncatesToBreadth(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(explorerBody))
	})

	candidates, err := cl.TopMoves(context.Background(), "fen", 2)
	if err != nil {
		t.Fatalf("TopMoves() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("got %d candidates, want 2", len(candidates))
	}
}

func TestTopMovesHTTPError(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	if _, err := cl.TopMoves(context.Background(), "fen", 5); err == nil {
		t.Error("TopMoves() error = nil, want status failure")
	}
}

func TestTopMovesBadBody(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	if _, err := cl.TopMoves(context.Background(), "fen", 5); err == nil {
		t.Error("TopMoves() error = nil, want decode failure")
	}
}

func TestQueriesAreSpaced(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		w.Write([]byte(`{"moves": []}`))
	}))
	t.Cleanup(srv.Close)

	interval := 50 * time.Millisecond
	cl := New(
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithQueryInterval(interval),
	)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cl.TopMoves(ctx, "fen", 5); err != nil {
			t.Fatalf("TopMoves() error = %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(times) != 3 {
		t.Fatalf("server saw %d requests, want 3", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < interval/2 {
			t.Errorf("requests %d and %d only %v apart, want at least %v", i-1, i, gap, interval)
		}
	}
}

func TestCancellationStopsWaiting(t *testing.T) {
	cl := New(WithQueryInterval(time.Hour))

	ctx := context.Background()
	// Consume the initial burst token.
	if err := cl.limiter.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := cl.TopMoves(canceled, "fen", 5); err == nil {
		t.Error("TopMoves() with canceled context error = nil, want failure")
	}
}
