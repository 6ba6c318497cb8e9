// Package grader evaluates a user's review reflection against a quiz's
// reference answer through an OpenAI-compatible chat-completions API
// (DeepSeek by default).
package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.deepseek.com"
	defaultModel   = "deepseek-chat"
)

const systemPrompt = `You are an expert academic tutor. Your task is to evaluate a student's answer for a quiz question.
Carefully compare the "User's Answer" to the "Reference Answer" in the context of the "Quiz Question".
Determine the correctness of the user's answer. The evaluation must be one of these exact options: ["正确", "部分正确", "错误", "概念混淆"].
Provide concise, constructive feedback. Explain why the answer is correct or incorrect, highlighting key concepts the user missed or misunderstood.
Your final output must be a single, valid JSON object with two keys: "evaluation" and "feedback". Do not include any other text or explanations outside of the JSON structure.`

// Client calls the grading model.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (for testing or alternative
// OpenAI-compatible backends).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// New creates a grading client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("grader API key is required")
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Evaluation is the grading verdict for one answer.
type Evaluation struct {
	Evaluation string `json:"evaluation"`
	Feedback   string `json:"feedback"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Evaluate grades the user's answer against the reference answer.
func (c *Client) Evaluate(ctx context.Context, question, reference, answer string) (*Evaluation, error) {
	userPrompt := fmt.Sprintf(
		"**Quiz Question:**\n%s\n\n**Reference Answer:**\n%s\n\n**User's Answer:**\n%s",
		question, reference, answer,
	)

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	slog.Info("requesting answer evaluation", "model", c.model)
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("grader API call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grader API error %d: %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("grader returned no choices")
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &eval); err != nil {
		return nil, fmt.Errorf("decoding evaluation JSON: %w", err)
	}
	if eval.Evaluation == "" || eval.Feedback == "" {
		return nil, fmt.Errorf("evaluation response missing required keys")
	}

	slog.Info("answer evaluated", "evaluation", eval.Evaluation)
	return &eval, nil
}
