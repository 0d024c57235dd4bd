// bot/client.go
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jetchart/impostor/game"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "google/gemini-2.5-flash"
	maxRetries     = 3
)

// Client asks a chat-completions service for bot descriptions, votes,
// and word deductions. It implements game.Suggester; callers treat every
// failure as "use the local fallback", so errors here are informational.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	backoffFunc func(attempt int) time.Duration
}

func defaultBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// NewClient creates a Client against the default gateway.
func NewClient(apiKey, model string) *Client {
	return NewClientWithBaseURL(apiKey, model, defaultBaseURL)
}

// NewClientWithBaseURL creates a Client with a custom base URL (for
// testing or a self-hosted gateway).
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient:  &http.Client{},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		backoffFunc: defaultBackoff,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// SuggestDescription returns one word for the bot's turn. An impostor
// opening the game plays its category hint directly, no model call.
func (c *Client) SuggestDescription(ctx context.Context, req game.DescribeRequest) (string, error) {
	if req.IsImpostor && len(req.PreviousDescriptions) == 0 && req.Hint != "" {
		return req.Hint, nil
	}

	system, user := describePrompts(req)
	content, err := c.chatCompletion(ctx, []message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, 100, 0.8)
	if err != nil {
		return "", err
	}
	return firstWord(content), nil
}

// SuggestVote returns the name the bot wants to accuse. The reply is
// free text; the engine fuzzy-matches it against real player names.
func (c *Client) SuggestVote(ctx context.Context, req game.VoteRequest) (string, error) {
	system := "Sos un jugador de un juego social de deducción. Respondé solo con el nombre del jugador."
	return c.chatCompletion(ctx, []message{
		{Role: "system", Content: system},
		{Role: "user", Content: votePrompt(req)},
	}, 50, 0.3)
}

// DeduceWord asks for a guess of the secret word from the transcript.
func (c *Client) DeduceWord(ctx context.Context, req game.DeduceRequest) (string, error) {
	system := "Sos un detective tratando de adivinar una palabra secreta basándote en pistas."
	guess, err := c.chatCompletion(ctx, []message{
		{Role: "system", Content: system},
		{Role: "user", Content: deducePrompt(req)},
	}, 50, 0.5)
	if err != nil {
		return "", err
	}
	return firstWord(guess), nil
}

func (c *Client) chatCompletion(ctx context.Context, messages []message, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("bot: %w", err)
	}

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("bot: %w", err)
	}
	defer resp.Body.Close()

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("bot: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("bot: empty completion")
	}
	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("bot: empty completion")
	}
	return content, nil
}

func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func (c *Client) doWithRetry(ctx context.Context, do func(context.Context) (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffFunc(attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := do(ctx)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if !isRetryable(resp.StatusCode) {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		// Respect Retry-After on 429, on top of the backoff.
		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil {
					raDelay := time.Duration(secs) * time.Second
					if raDelay > 0 && c.backoffFunc(0) > 0 {
						select {
						case <-ctx.Done():
							return nil, ctx.Err()
						case <-time.After(raDelay):
						}
					}
				}
			}
		}

		lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil, lastErr
}

// firstWord strips trailing punctuation and keeps only the first word,
// because models like to answer "Cuerdas." or "Cuerdas, creo".
func firstWord(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".,!?;:")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ','
	})
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
