package simulate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/model"
)

// maxQuestions bounds a single game so a misbehaving server cannot loop forever.
const maxQuestions = 64

// Client talks to the game API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Game is the subset of the game view the simulator reads.
type Game struct {
	ID             string           `json:"id"`
	State          string           `json:"state"`
	Active         *engine.Question `json:"active"`
	AwaitingChoice bool             `json:"awaiting_choice"`
	QuestionsAsked int              `json:"questions_asked"`
	Outcome        string           `json:"outcome"`
	Guess          string           `json:"guess"`
	Remaining      int              `json:"remaining"`
	Duplicate      bool             `json:"duplicate"`
}

// Finished reports whether the game reached its result.
func (g *Game) Finished() bool { return g.State == "result" }

// Health checks the readiness probe.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// NewGame starts a game for conference.
func (c *Client) NewGame(ctx context.Context, conference model.Conference) (*Game, error) {
	var g Game
	body := map[string]string{"conference": string(conference)}
	if err := c.do(ctx, http.MethodPost, "/api/v1/games", body, nil, http.StatusCreated, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Answer answers the active question of game id at round, tagged with key.
func (c *Client) Answer(ctx context.Context, id string, answer bool, round int, key string) (*Game, error) {
	var g Game
	body := map[string]any{"answer": answer, "round": round}
	hdr := map[string]string{"Idempotency-Key": key}
	if err := c.do(ctx, http.MethodPost, "/api/v1/games/"+id+"/answers", body, hdr, http.StatusOK, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Choose picks name from a confirmed list.
func (c *Client) Choose(ctx context.Context, id, name string) (*Game, error) {
	var g Game
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/v1/games/"+id+"/choice", body, nil, http.StatusOK, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Top fetches the most-guessed ranking.
func (c *Client) Top(ctx context.Context, n int) ([]TopEntry, error) {
	var out struct {
		Players []TopEntry `json:"players"`
	}
	path := fmt.Sprintf("/api/v1/players/top?limit=%d", n)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Players, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, want int, out any) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
