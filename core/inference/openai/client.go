package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/koscakluka/scribe-core/core/inference"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	completionsURL = "https://api.openai.com/v1/chat/completions"

	defaultModel = "gpt-4o-mini"
)

// Client runs analysis tasks against the OpenAI chat completions API.
type Client struct {
	apiKey string
	model  string

	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

func NewClient(opts ...ClientOption) (*Client, error) {
	apiKey, ok := os.LookupEnv("OPENAI_API_KEY")
	if !ok {
		return nil, fmt.Errorf("openai api key not found")
	}

	c := &Client{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    completionsURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Infer(ctx context.Context, task inference.Task, input inference.Input) (string, error) {
	ctx, span := tracer.Start(ctx, "infer analysis task")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("request.task", string(task)),
	)

	reqBody := requestBody{
		Model: c.model,
		Messages: []message{
			{Role: messageRoleSystem, Content: task.Instructions()},
			{Role: messageRoleUser, Content: task.Prompt(input)},
		},
	}

	responseBody, err := c.complete(ctx, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		return "", err
	}

	if len(responseBody.Choices) == 0 {
		err := fmt.Errorf("response contained no choices")
		span.RecordError(err)
		return "", err
	}

	return responseBody.Choices[0].Message.Content, nil
}

func (c *Client) complete(ctx context.Context, reqBody requestBody) (*responseBody, error) {
	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var parsed responseBody
	if err := json.Unmarshal(respBodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	return &parsed, nil
}

const (
	messageRoleSystem    = "system"
	messageRoleUser      = "user"
	messageRoleAssistant = "assistant"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Role         string  `json:"role,omitempty"`
			Content      string  `json:"content,omitempty"`
			FinishReason *string `json:"finish_reason,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
