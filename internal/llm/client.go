// Package llm is the client for the remote language-model capability. It
// speaks the OpenAI-compatible chat completion format and classifies
// provider failures into the fixed conditions the rest of the pipeline
// surfaces to the user.
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
)

// Client represents a generic LLM API client
// Thread-safe for concurrent use
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new LLM client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := &Client{
		config:  config,
		baseURL: strings.TrimRight(config.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}

	return client, nil
}

// CompletionRequest describes one chat completion call. Model and
// temperature come from the caller because both vary per operation:
// translation runs at temperature 0, coaching at 0.2, and the model is a
// per-session setting.
type CompletionRequest struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	// ExtraSystem is an optional second system message (the coach uses it
	// for the candidate profile block).
	ExtraSystem string
	UserPrompt  string
}

// Complete performs one chat completion call and returns the assistant's
// trimmed text content.
//
// Failures come back as *APIError: provider errors are classified by status
// code and structured error type, and a transport-successful response with
// no content is an empty-result error.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := []Message{
		{Role: "system", Content: req.SystemPrompt},
	}
	if req.ExtraSystem != "" {
		messages = append(messages, Message{Role: "system", Content: req.ExtraSystem})
	}
	messages = append(messages, Message{Role: "user", Content: req.UserPrompt})

	request := ChatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}

	response, err := c.makeRequest(ctx, http.MethodPost, "/chat/completions", request, req.Model)
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", newEmptyResultError("completion")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", newEmptyResultError("completion")
	}

	return content, nil
}

// makeRequest makes a raw HTTP request to the configured LLM API
func (c *Client) makeRequest(ctx context.Context, method, path string, payload interface{}, model string) (*ChatResponse, error) {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.config.GetHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			Type:    ErrGeneric,
			Message: fmt.Sprintf("OpenAI API request failed: %s", truncate(err.Error(), maxRawMessageLen)),
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// The error payload is best-effort: a failing status with an unparsable
	// body still classifies on the status code alone.
	var chatResponse ChatResponse
	parseErr := json.Unmarshal(responseBody, &chatResponse)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyError(resp.StatusCode, chatResponse.Error, model)
	}

	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", parseErr)
	}

	if chatResponse.Error != nil && chatResponse.Error.Message != "" {
		return nil, classifyError(resp.StatusCode, chatResponse.Error, model)
	}

	return &chatResponse, nil
}
