package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotConfigured is returned when no functions URL was configured.
var ErrNotConfigured = errors.New("ai function endpoint not configured")

// Invoker calls a named remote function with a message and returns its text response.
type Invoker interface {
	Invoke(ctx context.Context, name, message string) (string, error)
}

// FunctionRequest is the body sent to the AI function.
type FunctionRequest struct {
	Message string `json:"message"`
}

// FunctionResponse is the body returned by the AI function.
type FunctionResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// FunctionClient invokes functions at <baseURL>/<name> over HTTP.
type FunctionClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewFunctionClient builds a client. An empty baseURL yields a client that always fails with
// ErrNotConfigured.
func NewFunctionClient(baseURL, apiKey string, timeout time.Duration) *FunctionClient {
	return &FunctionClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, timeout: timeout}
}

// Invoke posts {message} and returns the response text.
func (c *FunctionClient) Invoke(ctx context.Context, name, message string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.baseURL + "/" + name)
	agent.JSONEncoder(codec.Marshal)
	agent.JSONDecoder(codec.Unmarshal)
	if c.apiKey != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.apiKey)
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	agent.JSON(FunctionRequest{Message: message})

	var out FunctionResponse
	status, body, errs := agent.Struct(&out)
	if len(errs) > 0 {
		if status >= fiber.StatusBadRequest || status == 0 {
			return "", fmt.Errorf("invoke %s: status %d: %w", name, status, errors.Join(errs...))
		}
		return "", fmt.Errorf("decode %s response: %w", name, errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		return "", fmt.Errorf("invoke %s: status %d: %s", name, status, strings.TrimSpace(string(body)))
	}
	if out.Error != "" {
		return "", fmt.Errorf("invoke %s: %s", name, out.Error)
	}
	return out.Response, nil
}
