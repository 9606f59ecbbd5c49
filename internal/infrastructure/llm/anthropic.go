package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"MediaCurator/internal/config"
	"MediaCurator/internal/domain"
	"MediaCurator/internal/ports"
)

const (
	scoreMaxTokens    = 50
	summaryMaxTokens  = 350
	summaryContentCap = 3000
)

const scorePromptFormat = `You are an expert on the media industry. Rate this article's relevance for a German TV producer.

Article:
Title: %s
Description: %s

Rate on a scale of 1-10:
10 = extremely relevant (new format ideas, ratings records, key personnel decisions)
7-9 = relevant (interesting shows, significant developments)
4-6 = moderately interesting
1-3 = not relevant

Respond ONLY with a number between 1 and 10.`

const summaryPromptFormat = `You are a professional media journalist. Write a concise 2-3 sentence summary.

Title: %s

Available information:
%s

TASK:
- Write a professional, informative summary
- Focus on concrete facts and key statements
- 2-3 concise sentences
- Even with little information: summarize what is known

Write ONLY the summary.`

// Client talks to the Anthropic messages API for both relevance
// classification and summarization.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	apiVersion string
	httpClient *http.Client
}

var _ ports.Classifier = (*Client)(nil)
var _ ports.Summarizer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.AnthropicConfig) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Score asks the model to rate relevance 1-10. The caller treats any error
// as the neutral score.
func (c *Client) Score(ctx context.Context, title, description string) (int, error) {
	prompt := fmt.Sprintf(scorePromptFormat, title, description)
	text, err := c.complete(ctx, prompt, scoreMaxTokens)
	if err != nil {
		return 0, err
	}

	score, err := parseScore(text)
	if err != nil {
		return 0, err
	}
	return score, nil
}

// Summarize asks the model for a short summary of the resolved content.
func (c *Client) Summarize(ctx context.Context, title, content string) (string, error) {
	if utf8.RuneCountInString(content) > summaryContentCap {
		content = string([]rune(content)[:summaryContentCap])
	}

	prompt := fmt.Sprintf(summaryPromptFormat, title, content)
	text, err := c.complete(ctx, prompt, summaryMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("anthropic client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":      c.model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("anthropic error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return parsed.Content[0].Text, nil
}

// parseScore pulls the leading digits out of the response text and clamps
// them to the score range.
func parseScore(text string) (int, error) {
	var digits strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
			if digits.Len() == 2 {
				break
			}
		} else if digits.Len() > 0 {
			break
		}
	}

	if digits.Len() == 0 {
		return 0, fmt.Errorf("no score in response %q", strings.TrimSpace(text))
	}

	value := 0
	for _, r := range digits.String() {
		value = value*10 + int(r-'0')
	}
	return domain.ClampScore(value), nil
}
