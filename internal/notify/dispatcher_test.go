package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"leadbot/internal/leads"
	"leadbot/pkg/webhook"
)

func testLead() leads.Lead {
	return leads.Lead{
		ID: "L-1",
		Submission: leads.Submission{
			Name:            "Jane Doe",
			Email:           "jane@example.com",
			PhoneNumber:     "555-0100",
			Budget:          "$20,000 - $30,000",
			VehicleWanted:   "Compact SUV",
			DiscordUserID:   "1001",
			DiscordUsername: "jane",
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}
}

// countingPoster records calls without touching the network.
type countingPoster struct {
	calls atomic.Int32
	err   error
}

func (p *countingPoster) PostJSON(ctx context.Context, url string, payload any) error {
	p.calls.Add(1)
	return p.err
}

func TestBuildPayload_Content(t *testing.T) {
	sentAt := time.Date(2026, 3, 1, 12, 31, 0, 0, time.UTC)
	p := BuildPayload(testLead(), sentAt)

	for _, want := range []string{
		"NAME: Jane Doe",
		"EMAIL: jane@example.com",
		"PHONE: 555-0100",
		"VEHICLE: Compact SUV",
		"BUDGET: $20,000 - $30,000",
		"LEADID: L-1",
		"SOURCE: Discord Bot",
		"DATE: 2026-03-01T12:30:00.000Z",
		"DISCORDUSER: jane",
	} {
		if !strings.Contains(p.Content, want) {
			t.Errorf("content missing %q:\n%s", want, p.Content)
		}
	}

	if len(p.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(p.Embeds))
	}
	embed := p.Embeds[0]
	if embed.Color != 0xD4AF37 {
		t.Errorf("color = %#x", embed.Color)
	}
	if embed.Timestamp != "2026-03-01T12:31:00.000Z" {
		t.Errorf("timestamp = %q", embed.Timestamp)
	}
	if embed.Footer == nil || !strings.Contains(embed.Footer.Text, "Discord Bot") {
		t.Errorf("footer = %+v", embed.Footer)
	}

	inline := map[string]bool{}
	for _, f := range embed.Fields {
		inline[f.Name] = f.Inline
	}
	if inline["🚙 Vehicle Wanted"] {
		t.Error("vehicle field should be full width")
	}
	for _, name := range []string{"👤 Name", "📧 Email", "📱 Phone Number", "💰 Budget Range"} {
		if !inline[name] {
			t.Errorf("%s should be inline", name)
		}
	}
}

func TestDeliver_NoURL(t *testing.T) {
	poster := &countingPoster{}
	d := New(poster, NewMemoryQueue(1), Config{}, zap.NewNop())

	if err := d.Deliver(context.Background(), testLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Notify(context.Background(), testLead())

	if n := poster.calls.Load(); n != 0 {
		t.Errorf("expected no network calls, got %d", n)
	}
}

func TestNotify_NoURLDoesNotEnqueue(t *testing.T) {
	q := NewMemoryQueue(1)
	d := New(&countingPoster{}, q, Config{}, zap.NewNop())

	d.Notify(context.Background(), testLead())

	if len(q.items) != 0 {
		t.Errorf("expected empty queue, got %d items", len(q.items))
	}
}

func TestDeliver_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := New(webhook.NewClient(5*time.Second, zap.NewNop()), NewMemoryQueue(1), Config{URL: server.URL}, zap.NewNop())

	err := d.Deliver(context.Background(), testLead())
	if !errors.Is(err, leads.ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
	var statusErr *webhook.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected wrapped 500 status error, got %v", err)
	}
}

func TestDeliver_PostsPayload(t *testing.T) {
	var got discordgo.WebhookParams
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := New(webhook.NewClient(5*time.Second, zap.NewNop()), NewMemoryQueue(1), Config{URL: server.URL}, zap.NewNop())

	if err := d.Deliver(context.Background(), testLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got.Content, "NAME: Jane Doe") || !strings.Contains(got.Content, "LEADID: L-1") {
		t.Errorf("unexpected content: %q", got.Content)
	}
	if len(got.Embeds) != 1 || len(got.Embeds[0].Fields) != 6 {
		t.Errorf("unexpected embeds: %+v", got.Embeds)
	}
}

func TestRun_DeliversQueuedLeadOnce(t *testing.T) {
	var hits atomic.Int32
	received := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var body discordgo.WebhookParams
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body.Content
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := New(
		webhook.NewClient(5*time.Second, zap.NewNop()),
		NewMemoryQueue(4),
		Config{URL: server.URL, RatePerSecond: 100},
		zaptest.NewLogger(t),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	d.Notify(ctx, testLead())

	select {
	case content := <-received:
		if !strings.Contains(content, "LEADID: L-1") {
			t.Errorf("unexpected content: %q", content)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned error: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected exactly 1 request, got %d", n)
	}
}

func TestRun_FailureIsSwallowed(t *testing.T) {
	poster := &countingPoster{err: errors.New("connection refused")}
	q := NewMemoryQueue(2)
	d := New(poster, q, Config{URL: "http://hook.invalid"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	d.Notify(ctx, testLead())
	d.Notify(ctx, testLead())

	deadline := time.Now().Add(5 * time.Second)
	for poster.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run returned error: %v", err)
	}
	if n := poster.calls.Load(); n != 2 {
		t.Errorf("expected one attempt per lead without retries, got %d", n)
	}
}

func TestRun_FinishesDeliveryOnShutdown(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var completed atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
		completed.Add(1)
	}))
	defer server.Close()

	core, logs := observer.New(zap.InfoLevel)
	q := NewMemoryQueue(3)
	d := New(
		webhook.NewClient(5*time.Second, zap.NewNop()),
		q,
		Config{URL: server.URL, RatePerSecond: 100},
		zap.New(core),
	)

	ctx, cancel := context.WithCancel(context.Background())
	for _, id := range []string{"L-1", "L-2", "L-3"} {
		lead := testLead()
		lead.ID = id
		d.Notify(ctx, lead)
	}

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the first POST")
	}

	cancel()
	time.Sleep(300 * time.Millisecond)
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after shutdown")
	}

	if n := completed.Load(); n != 1 {
		t.Errorf("expected the in-flight POST to complete, got %d completed", n)
	}
	if n := logs.FilterMessage("Error sending lead to Discord webhook").Len(); n != 0 {
		t.Errorf("in-flight delivery was aborted: %v", logs.FilterMessage("Error sending lead to Discord webhook").All())
	}
	sent := logs.FilterMessage("Lead data sent to Discord webhook").All()
	if len(sent) != 1 || sent[0].ContextMap()["lead_id"] != "L-1" {
		t.Errorf("expected L-1 to be reported as sent, got %v", sent)
	}

	var left []string
	for _, e := range logs.FilterMessage("Lead notification not sent before shutdown").All() {
		left = append(left, e.ContextMap()["lead_id"].(string))
	}
	if strings.Join(left, ",") != "L-2,L-3" {
		t.Errorf("unsent leads logged = %v, want [L-2 L-3]", left)
	}
	if rest := q.Drain(); len(rest) != 0 {
		t.Errorf("queue still holds %d leads", len(rest))
	}
}

func TestDeliver_IgnoresCancelledContext(t *testing.T) {
	var ctxErr error
	poster := posterFunc(func(ctx context.Context, url string, payload any) error {
		ctxErr = ctx.Err()
		return nil
	})
	d := New(poster, NewMemoryQueue(1), Config{URL: "http://hook.invalid"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Deliver(ctx, testLead()); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if ctxErr != nil {
		t.Errorf("poster got a cancelled context: %v", ctxErr)
	}
}

type posterFunc func(ctx context.Context, url string, payload any) error

func (f posterFunc) PostJSON(ctx context.Context, url string, payload any) error {
	return f(ctx, url, payload)
}
