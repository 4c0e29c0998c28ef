package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/supporthub/support-dashboard/internal/domain"
)

func sampleTicket() domain.TicketView {
	view := domain.TicketView{Customer: domain.Customer{Name: "Ada", Company: "Acme"}}
	view.ID = "t-1"
	view.Title = "Login fails"
	view.Description = "Cannot log in"
	view.Category = domain.TicketCategoryTechnical
	view.Priority = domain.TicketPriorityHigh
	return view
}

func thread(n int) []domain.TicketMessage {
	out := make([]domain.TicketMessage, n)
	for i := range out {
		sender := domain.SenderCustomer
		if i%2 == 1 {
			sender = domain.SenderAgent
		}
		out[i] = domain.TicketMessage{ID: string(rune('a' + i)), SenderType: sender, Message: "m" + string(rune('0'+i))}
	}
	return out
}

func TestBuildContext(t *testing.T) {
	got := BuildContext(sampleTicket(), thread(5))
	want := "Ticket: Login fails\n" +
		"Description: Cannot log in\n" +
		"Category: technical\n" +
		"Priority: high\n" +
		"Customer: Ada from Acme\n" +
		"Recent messages: customer: m2\nagent: m3\ncustomer: m4"
	if got != want {
		t.Fatalf("context =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildContextWithoutMessages(t *testing.T) {
	got := BuildContext(sampleTicket(), nil)
	if !strings.HasSuffix(got, "Recent messages: ") {
		t.Fatalf("context = %q", got)
	}
}

func TestPrompt(t *testing.T) {
	if got := Prompt("ctx"); got != "Based on this customer support ticket, suggest a helpful response:\n\nctx" {
		t.Fatalf("prompt = %q", got)
	}
}

func TestFunctionClientInvoke(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody FunctionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Try resetting your password."}`))
	}))
	defer srv.Close()

	client := NewFunctionClient(srv.URL+"/functions/v1/", "key", time.Second)
	got, err := client.Invoke(context.Background(), "ai", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Try resetting your password." {
		t.Errorf("response = %q", got)
	}
	if gotPath != "/functions/v1/ai" || gotAuth != "Bearer key" || gotBody.Message != "hello" {
		t.Errorf("path=%q auth=%q body=%+v", gotPath, gotAuth, gotBody)
	}
}

func TestFunctionClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewFunctionClient(srv.URL, "", time.Second).Invoke(context.Background(), "ai", "x"); err == nil {
		t.Fatal("expected error for 503")
	}
	if _, err := NewFunctionClient("", "", time.Second).Invoke(context.Background(), "ai", "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFunctionClient(srv.URL, "", time.Second).Invoke(ctx, "ai", "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

type countingInvoker struct {
	calls   int
	prompts []string
	reply   string
	err     error
}

func (c *countingInvoker) Invoke(_ context.Context, _ string, message string) (string, error) {
	c.calls++
	c.prompts = append(c.prompts, message)
	return c.reply, c.err
}

type mapCache map[string]string

func (m mapCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m[key] = value
	return nil
}

func TestSuggestCachesPerLatestMessage(t *testing.T) {
	invoker := &countingInvoker{reply: "suggested"}
	cache := mapCache{}
	a := New(Options{Invoker: invoker, Cache: cache, CacheTTL: time.Minute})

	ticket := sampleTicket()
	for i := 0; i < 2; i++ {
		got, err := a.Suggest(context.Background(), ticket, thread(2))
		if err != nil || got != "suggested" {
			t.Fatalf("suggest = %q, %v", got, err)
		}
	}
	if invoker.calls != 1 {
		t.Fatalf("calls = %d, want cached second call", invoker.calls)
	}
	if _, ok := cache[CacheKey("t-1", "b")]; !ok {
		t.Fatalf("cache keys = %v", cache)
	}

	if _, err := a.Suggest(context.Background(), ticket, thread(3)); err != nil {
		t.Fatal(err)
	}
	if invoker.calls != 2 {
		t.Fatalf("a new message must bypass the cache, calls = %d", invoker.calls)
	}
	if !strings.HasPrefix(invoker.prompts[0], promptPrefix) {
		t.Fatalf("prompt = %q", invoker.prompts[0])
	}
}

func TestSuggestPropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	a := New(Options{Invoker: &countingInvoker{err: boom}})
	if _, err := a.Suggest(context.Background(), sampleTicket(), nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestCacheKeyWithoutMessages(t *testing.T) {
	if got := CacheKey("t-1", ""); got != "support:suggestion:t-1:none" {
		t.Fatalf("key = %q", got)
	}
}
