// Package lichess implements the popularity oracle against the Lichess
// opening explorer service.
package lichess

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/discochess/bookminer/internal/oracle"
)

// Compile-time check that Client implements oracle.Oracle.
var _ oracle.Oracle = (*Client)(nil)

// DefaultBaseURL is the public Lichess opening explorer endpoint.
const DefaultBaseURL = "https://explorer.lichess.ovh/lichess"

// DefaultQueryInterval is the minimum spacing between explorer queries.
// The explorer rate-limits aggressively; the interval is enforced before
// every request regardless of how the previous one ended.
const DefaultQueryInterval = 500 * time.Millisecond

// Client queries the Lichess opening explorer.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	ratings string
	speeds  string
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithBaseURL overrides the explorer endpoint (useful for tests).
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = u }
}

// WithQueryInterval sets the minimum spacing between queries.
func WithQueryInterval(d time.Duration) Option {
	return func(cl *Client) { cl.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithRatings sets the rating bands included in the popularity data.
func WithRatings(ratings string) Option {
	return func(cl *Client) { cl.ratings = ratings }
}

// WithSpeeds sets the time controls included in the popularity data.
func WithSpeeds(speeds string) Option {
	return func(cl *Client) { cl.speeds = speeds }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a new explorer client with sensible defaults.
func New(opts ...Option) *Client {
	cl := &Client{
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(DefaultQueryInterval), 1),
		ratings: "1600,1800,2000,2200,2500",
		speeds:  "blitz,rapid,classical",
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// explorerMove mirrors one entry of the explorer response.
type explorerMove struct {
	UCI   string `json:"uci"`
	SAN   string `json:"san"`
	White int    `json:"white"`
	Draws int    `json:"draws"`
	Black int    `json:"black"`
}

// explorerResponse mirrors the explorer response body.
type explorerResponse struct {
	Moves []explorerMove `json:"moves"`
}

// TopMoves queries the explorer for the most played moves from the position.
// Every call waits on the rate limiter first, so consecutive queries are
// always spaced by at least the configured interval, whatever the outcome of
// the previous query.
func (cl *Client) TopMoves(ctx context.Context, fen string, breadth int) ([]oracle.Candidate, error) {
	if err := cl.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("fen", fen)
	q.Set("ratings", cl.ratings)
	q.Set("speeds", cl.speeds)
	q.Set("moves", strconv.Itoa(breadth))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating explorer request: %w", err)
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying explorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned %s", resp.Status)
	}

	var body explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding explorer response: %w", err)
	}

	moves := body.Moves
	if len(moves) > breadth {
		moves = moves[:breadth]
	}

	candidates := make([]oracle.Candidate, 0, len(moves))
	for _, m := range moves {
		candidates = append(candidates, oracle.Candidate{
			UCI:       m.UCI,
			SAN:       m.SAN,
			Games:     m.White + m.Draws + m.Black,
			WhiteWins: m.White,
			Draws:     m.Draws,
			BlackWins: m.Black,
		})
	}

	cl.logger.Debug("explorer query",
		zap.String("fen", fen),
		zap.Int("candidates", len(candidates)),
	)

	return candidates, nil
}
