package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

func newServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*rec = recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization"), body: string(body)}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second), rec
}

func TestLoginStoresToken(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"data":{"access_token":"tok","token_type":"Bearer","agent":{"id":"a-1","name":"Grace","email":"g@x"}}}`)

	out, err := c.Login(context.Background(), "g@x", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if out.Agent.Name != "Grace" || rec.path != "/auth/login" || !strings.Contains(rec.body, `"email":"g@x"`) {
		t.Fatalf("out = %+v rec = %+v", out, rec)
	}

	if _, err := c.ListTickets(context.Background(), TicketQuery{}); err != nil {
		t.Fatal(err)
	}
	if rec.auth != "Bearer tok" {
		t.Fatalf("auth header = %q", rec.auth)
	}
}

func TestListTicketsEncodesFilters(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"data":[{"id":"t-1","title":"Printer","status":"open","priority":"urgent","customer":{"name":"Ada","company":"Acme"}}]}`)

	tickets, err := c.ListTickets(context.Background(), TicketQuery{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityUrgent})
	if err != nil {
		t.Fatal(err)
	}
	if rec.query != "priority=urgent&status=open" {
		t.Fatalf("query = %q", rec.query)
	}
	if len(tickets) != 1 || tickets[0].Customer.Company != "Acme" || tickets[0].Priority != domain.TicketPriorityUrgent {
		t.Fatalf("tickets = %+v", tickets)
	}
}

func TestRequestsHitExpectedRoutes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		response   string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{
			name:     "send message",
			response: `{"data":{"id":"m-1","sender_type":"agent"}}`,
			call: func(c *Client) error {
				_, err := c.SendMessage(ctx, "t-1", "hello", true)
				return err
			},
			wantMethod: http.MethodPost, wantPath: "/tickets/t-1/messages", wantBody: `"ai_suggested":true`,
		},
		{
			name:     "update status",
			response: `{"data":{"id":"t-1","status":"resolved"}}`,
			call: func(c *Client) error {
				_, err := c.UpdateStatus(ctx, "t-1", domain.TicketStatusResolved)
				return err
			},
			wantMethod: http.MethodPatch, wantPath: "/tickets/t-1/status", wantBody: `"status":"resolved"`,
		},
		{
			name:     "suggest reply",
			response: `{"data":{"response":"try again"}}`,
			call: func(c *Client) error {
				got, err := c.SuggestReply(ctx, "t-1")
				if err == nil && got != "try again" {
					err = errors.New("unexpected suggestion " + got)
				}
				return err
			},
			wantMethod: http.MethodPost, wantPath: "/tickets/t-1/suggestion",
		},
		{
			name:     "invoke function",
			response: `{"data":{"response":"ok"}}`,
			call: func(c *Client) error {
				_, err := c.InvokeFunction(ctx, "ai", "ping")
				return err
			},
			wantMethod: http.MethodPost, wantPath: "/functions/ai", wantBody: `"message":"ping"`,
		},
		{
			name:     "create article",
			response: `{"data":{"id":"k-1","tags":["a"]}}`,
			call: func(c *Client) error {
				_, err := c.CreateArticle(ctx, dto.CreateArticleRequest{Title: "T", Content: "C", Category: "billing", Tags: []string{"a"}})
				return err
			},
			wantMethod: http.MethodPost, wantPath: "/knowledge", wantBody: `"tags":["a"]`,
		},
		{
			name:     "ticket detail",
			response: `{"data":{"id":"t-1","customer":{"name":"Ada"},"messages":[],"history":[]}}`,
			call: func(c *Client) error {
				got, err := c.GetTicket(ctx, "t-1")
				if err == nil && got.Customer.Name != "Ada" {
					err = errors.New("customer not decoded")
				}
				return err
			},
			wantMethod: http.MethodGet, wantPath: "/tickets/t-1",
		},
		{
			name:     "analytics",
			response: `{"data":{"summary":{"total":3},"average_resolution":"n/a"}}`,
			call: func(c *Client) error {
				got, err := c.Analytics(ctx)
				if err == nil && got.Summary.Total != 3 {
					err = errors.New("summary not decoded")
				}
				return err
			},
			wantMethod: http.MethodGet, wantPath: "/analytics",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newServer(t, http.StatusOK, tt.response)
			if err := tt.call(c); err != nil {
				t.Fatal(err)
			}
			if rec.method != tt.wantMethod || rec.path != tt.wantPath {
				t.Fatalf("request = %s %s", rec.method, rec.path)
			}
			if !strings.Contains(rec.body, tt.wantBody) {
				t.Fatalf("body = %q, want %q", rec.body, tt.wantBody)
			}
		})
	}
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	c, _ := newServer(t, http.StatusBadRequest, `{"error":{"code":"VALIDATION_FAILED","message":"message must not be empty"}}`)

	_, err := c.SendMessage(context.Background(), "t-1", " ", false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestErrorWithoutEnvelope(t *testing.T) {
	c, _ := newServer(t, http.StatusBadGateway, "upstream down")

	_, err := c.ListArticles(context.Background(), "", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "upstream down" {
		t.Fatalf("err = %v", err)
	}
}

func TestSSEReaderFrames(t *testing.T) {
	input := "retry: 3000\n: subscribed\n\nid: 1\nevent: change\ndata: {\"a\":1}\n\n: ping\n\ndata: line one\ndata: line two\n\ndata: tail"
	r := newSSEReader(strings.NewReader(input))

	want := []sseFrame{
		{ID: "1", Event: "change", Data: `{"a":1}`},
		{Data: "line one\nline two"},
		{Data: "tail"},
	}
	for i, w := range want {
		got, err := r.next()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("frame %d = %+v, want %+v", i, got, w)
		}
	}
	if _, err := r.next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSubscribeStreamsChangeEvents(t *testing.T) {
	event, err := events.NewChangeEvent(events.TableMessages, events.ChangeInsert, "m-1",
		domain.TicketMessage{ID: "m-1", TicketID: "t-1", Message: "hi"}, map[string]string{"ticket_id": "t-1"})
	if err != nil {
		t.Fatal(err)
	}
	payload, err := event.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "retry: 3000\n: subscribed\n\n")
		_, _ = io.WriteString(w, "id: "+event.ID+"\nevent: change\ndata: "+string(payload)+"\n\n")
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	stream, err := c.Subscribe(context.Background(), events.Filter{Table: events.TableMessages, Event: events.ChangeInsert, Column: "ticket_id", Value: "t-1"})
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if query != "event=INSERT&filter=ticket_id%3Deq.t-1&table=ticket_messages" {
		t.Fatalf("query = %q", query)
	}

	got, err := stream.Next()
	if err != nil {
		t.Fatal(err)
	}
	var msg domain.TicketMessage
	if err := got.Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if got.Key != "m-1" || msg.Message != "hi" {
		t.Fatalf("event = %+v msg = %+v", got, msg)
	}

	if _, err := stream.Next(); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
}

func TestSubscribeRejected(t *testing.T) {
	c, _ := newServer(t, http.StatusUnauthorized, `{"error":{"code":"UNAUTHORIZED","message":"missing authorization header"}}`)
	if _, err := c.Subscribe(context.Background(), events.Filter{}); err == nil {
		t.Fatal("expected error")
	}
}

// sessionServer issues a fresh token on every login and accepts only the latest one.
type sessionServer struct {
	mu      sync.Mutex
	logins  int
	valid   string
	refuse  bool
	granted []string
}

func (s *sessionServer) expire() {
	s.mu.Lock()
	s.valid = ""
	s.mu.Unlock()
}

func (s *sessionServer) state() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins, append([]string(nil), s.granted...)
}

func (s *sessionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Path == "/auth/login" {
		if s.refuse && s.logins > 0 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"code":"UNAUTHORIZED","message":"invalid credentials"}}`)
			return
		}
		s.logins++
		s.valid = fmt.Sprintf("tok-%d", s.logins)
		_, _ = fmt.Fprintf(w, `{"data":{"access_token":%q,"agent":{"name":"Grace"}}}`, s.valid)
		return
	}
	if s.valid == "" || r.Header.Get("Authorization") != "Bearer "+s.valid {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":"UNAUTHORIZED","message":"token expired"}}`)
		return
	}
	s.granted = append(s.granted, r.URL.Path)
	if r.URL.Path == "/realtime" {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "retry: 3000\n: subscribed\n\n")
		return
	}
	_, _ = io.WriteString(w, `{"data":[]}`)
}

func newSessionClient(t *testing.T, s *sessionServer) *Client {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 2*time.Second)
	if _, err := c.Login(context.Background(), "g@x", "pw"); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestExpiredTokenIsRenewedOnce(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		path string
	}{
		{
			name: "request",
			call: func(c *Client) error {
				_, err := c.ListTickets(context.Background(), TicketQuery{})
				return err
			},
			path: "/tickets",
		},
		{
			name: "stream",
			call: func(c *Client) error {
				stream, err := c.Subscribe(context.Background(), events.Filter{Table: events.TableTickets})
				if err == nil {
					_ = stream.Close()
				}
				return err
			},
			path: "/realtime",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sessionServer{}
			c := newSessionClient(t, s)
			s.expire()

			if err := tt.call(c); err != nil {
				t.Fatalf("call after expiry: %v", err)
			}
			logins, granted := s.state()
			if logins != 2 {
				t.Fatalf("logins = %d, want a single renewal", logins)
			}
			if len(granted) != 1 || granted[0] != tt.path {
				t.Fatalf("granted = %v", granted)
			}
			if c.bearer() != "tok-2" {
				t.Fatalf("token = %q", c.bearer())
			}
		})
	}
}

func TestFailedRenewalReturnsOriginalError(t *testing.T) {
	s := &sessionServer{refuse: true}
	c := newSessionClient(t, s)
	s.expire()

	_, err := c.ListArticles(context.Background(), "", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "token expired" {
		t.Fatalf("err = %v", err)
	}
	if logins, _ := s.state(); logins != 1 {
		t.Fatalf("logins = %d", logins)
	}
}

func TestUnauthorizedWithoutLoginIsNotRetried(t *testing.T) {
	s := &sessionServer{}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 2*time.Second)
	c.SetToken("stale")

	if _, err := c.ListTickets(context.Background(), TicketQuery{}); err == nil {
		t.Fatal("expected unauthorized")
	}
	if logins, _ := s.state(); logins != 0 {
		t.Fatalf("logins = %d", logins)
	}
}
