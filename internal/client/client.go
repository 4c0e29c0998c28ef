// Package client talks to the support API over HTTP. It is what the dashboard uses as its
// remote data client.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/supporthub/support-dashboard/internal/analytics"
	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client

	mu       sync.RWMutex
	token    string
	email    string
	password string

	// renewMu serializes re-logins so concurrent 401s renew the token once.
	renewMu sync.Mutex
}

// ErrNoCredentials is returned when a token expires and the client never logged in.
var ErrNoCredentials = errors.New("client: no credentials to renew the session")

// New returns a client for the API rooted at baseURL. Plain requests time out after timeout;
// realtime streams are bounded only by their context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// TicketQuery narrows ListTickets. Empty fields are not sent.
type TicketQuery struct {
	Status   domain.TicketStatus
	Priority domain.TicketPriority
	Category domain.TicketCategory
}

// Login signs in and keeps the returned token for later calls. The credentials are kept too,
// so an expired token is renewed by logging in again.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.token = out.AccessToken
	c.email, c.password = email, password
	c.mu.Unlock()
	return &out, nil
}

// renew logs in again with the stored credentials unless another call already replaced
// the stale token.
func (c *Client) renew(ctx context.Context, stale string) error {
	c.renewMu.Lock()
	defer c.renewMu.Unlock()

	c.mu.RLock()
	current, email, password := c.token, c.email, c.password
	c.mu.RUnlock()
	if current != stale {
		return nil
	}
	if email == "" {
		return ErrNoCredentials
	}
	if _, err := c.Login(ctx, email, password); err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	return nil
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ListTickets returns tickets newest first.
func (c *Client) ListTickets(ctx context.Context, q TicketQuery) ([]domain.TicketView, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	if q.Priority != "" {
		params.Set("priority", string(q.Priority))
	}
	if q.Category != "" {
		params.Set("category", string(q.Category))
	}
	var out []domain.TicketView
	if err := c.do(ctx, http.MethodGet, withQuery("/tickets", params), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTicket(ctx context.Context, id string) (*dto.TicketDetailResponse, error) {
	var out dto.TicketDetailResponse
	if err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns the thread of a ticket, oldest first.
func (c *Client) ListMessages(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	var out []domain.TicketMessage
	if err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(ticketID)+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts an agent reply.
func (c *Client) SendMessage(ctx context.Context, ticketID, message string, aiSuggested bool) (*domain.TicketMessage, error) {
	var out domain.TicketMessage
	body := dto.CreateMessageRequest{Message: message, AISuggested: aiSuggested}
	if err := c.do(ctx, http.MethodPost, "/tickets/"+url.PathEscape(ticketID)+"/messages", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.TicketView, error) {
	var out domain.TicketView
	body := dto.UpdateStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/tickets/"+url.PathEscape(ticketID)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SuggestReply asks the server for an AI reply suggestion for the ticket.
func (c *Client) SuggestReply(ctx context.Context, ticketID string) (string, error) {
	var out dto.FunctionResponse
	if err := c.do(ctx, http.MethodPost, "/tickets/"+url.PathEscape(ticketID)+"/suggestion", nil, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// InvokeFunction calls a remote function with a free-form message.
func (c *Client) InvokeFunction(ctx context.Context, name, message string) (string, error) {
	var out dto.FunctionResponse
	if err := c.do(ctx, http.MethodPost, "/functions/"+url.PathEscape(name), dto.FunctionRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// ListArticles returns knowledge base articles newest first. Empty search and category
// return everything.
func (c *Client) ListArticles(ctx context.Context, search, category string) ([]domain.Article, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if category != "" {
		params.Set("category", category)
	}
	var out []domain.Article
	if err := c.do(ctx, http.MethodGet, withQuery("/knowledge", params), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetArticle(ctx context.Context, id string) (*dto.ArticleDetailResponse, error) {
	var out dto.ArticleDetailResponse
	if err := c.do(ctx, http.MethodGet, "/knowledge/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateArticle(ctx context.Context, req dto.CreateArticleRequest) (*domain.Article, error) {
	var out domain.Article
	if err := c.do(ctx, http.MethodPost, "/knowledge", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics fetches the server-side report.
func (c *Client) Analytics(ctx context.Context) (*analytics.Report, error) {
	var out analytics.Report
	if err := c.do(ctx, http.MethodGet, "/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends the request and decodes the data half of the envelope into out. A 401 renews the
// session once and repeats the call with the new token.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	token := c.bearer()
	err := c.send(ctx, method, path, payload, out)
	if !isUnauthorized(err) {
		return err
	}
	if renewErr := c.renew(ctx, token); renewErr != nil {
		return err
	}
	return c.send(ctx, method, path, payload, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload, out any) error {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	var envelope dto.Envelope[jsoniter.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope dto.ErrorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
