// Package extract turns free-form reading notes into structured action
// items via an OpenAI-compatible chat completions endpoint.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
)

// Item is one action item extracted from the notes.
type Item struct {
	Book      string   `json:"book"`
	Excerpt   string   `json:"excerpt"`
	Action    string   `json:"action"`
	Tags      []string `json:"tags"`
	Frequency string   `json:"frequency"`
}

// Client extracts action items from raw notes.
type Client interface {
	Extract(ctx context.Context, notes string) ([]Item, error)
}

const systemPrompt = `You extract actionable advice from book reading notes.
Given the notes, return a JSON array where each element has exactly these keys:
"book" (the book title, or "" if unknown), "excerpt" (the passage the advice
comes from), "action" (one concrete, practicable instruction), "tags" (an
array of short lowercase topic tags), "frequency" (one of "daily", "weekly",
"monthly"). Return only the JSON array, no prose.`

const maxAttempts = 3

// ChatClient calls an OpenAI-compatible /chat/completions endpoint. Works
// with DeepSeek and any provider speaking the same wire format.
type ChatClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewChatClient builds a client for the given endpoint.
func NewChatClient(baseURL, apiKey, model string) *ChatClient {
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends the notes to the model and parses the reply. The model
// occasionally returns malformed output, so it retries up to three times
// before giving up.
func (c *ChatClient) Extract(ctx context.Context, notes string) ([]Item, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		content, err := c.complete(ctx, notes)
		if err != nil {
			lastErr = err
			log.Printf("[extract] attempt %d/%d failed: %v", attempt, maxAttempts, err)
			continue
		}

		items, err := ParseItems(content)
		if err != nil {
			lastErr = err
			log.Printf("[extract] attempt %d/%d invalid reply: %v", attempt, maxAttempts, err)
			continue
		}
		return items, nil
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrExtractFailed, lastErr)
}

func (c *ChatClient) complete(ctx context.Context, notes string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: notes},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completions status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ParseItems parses a model reply into items. Tolerates markdown code
// fences around the JSON and fills in defaults for missing fields.
func ParseItems(content string) ([]Item, error) {
	content = stripFences(content)

	var items []Item
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractInvalid, err)
	}

	valid := items[:0]
	for _, it := range items {
		it.Action = strings.TrimSpace(it.Action)
		if it.Action == "" {
			continue
		}
		if !domain.ValidFrequency(it.Frequency) {
			it.Frequency = string(domain.FrequencyDaily)
		}
		if it.Tags == nil {
			it.Tags = []string{}
		}
		valid = append(valid, it)
	}
	// An empty array is a legitimate "no actions found" reply.
	return valid, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, which chat models add despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.HasPrefix(s, "[") {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
