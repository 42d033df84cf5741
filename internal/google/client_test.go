package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpcomingEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/primary/events" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("orderBy") != "startTime" || q.Get("singleEvents") != "true" || q.Get("maxResults") != "10" {
			t.Errorf("query = %v", q)
		}
		if q.Get("timeMin") == "" {
			t.Error("timeMin not set")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer g-tok" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{"items":[{"id":"e1","summary":"standup","start":{"dateTime":"2026-08-30T09:00:00Z","timeZone":"UTC"},"end":{"dateTime":"2026-08-30T09:15:00Z","timeZone":"UTC"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURLs(srv.URL, srv.URL))
	events, err := c.UpcomingEvents(context.Background(), "g-tok")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 || events[0].ID != "e1" || events[0].Summary != "standup" {
		t.Errorf("events = %+v", events)
	}
	if events[0].Start.DateTime != "2026-08-30T09:00:00Z" {
		t.Errorf("start = %+v", events[0].Start)
	}
}

func TestRecentMessagesFetchesEachMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me/messages":
			if r.URL.Query().Get("maxResults") != "2" {
				t.Errorf("maxResults = %s", r.URL.Query().Get("maxResults"))
			}
			w.Write([]byte(`{"messages":[{"id":"m1"},{"id":"m2"}]}`))
		case "/users/me/messages/m1":
			w.Write([]byte(`{"id":"m1","threadId":"th1","snippet":"hello","internalDate":"1756500000000"}`))
		case "/users/me/messages/m2":
			w.Write([]byte(`{"id":"m2","threadId":"th2","snippet":"world","internalDate":"1756500001000"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(WithBaseURLs(srv.URL, srv.URL))
	messages, err := c.RecentMessages(context.Background(), "g-tok", 2)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 2 || messages[0].Snippet != "hello" || messages[1].Snippet != "world" {
		t.Errorf("messages = %+v", messages)
	}
}

func TestRecentMessagesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURLs(srv.URL, srv.URL))
	if _, err := c.RecentMessages(context.Background(), "g-tok", 5); err == nil {
		t.Error("expected error on upstream failure")
	}
}

func TestSendMessageEncodesRawPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me/messages/send" || r.Method != http.MethodPost {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Raw string `json:"raw"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		decoded, err := base64.RawURLEncoding.DecodeString(payload.Raw)
		if err != nil {
			t.Fatalf("decode raw: %v", err)
		}
		text := string(decoded)
		for _, want := range []string{"To: dest@example.com", "Subject: digest", "the body"} {
			if !strings.Contains(text, want) {
				t.Errorf("raw message missing %q:\n%s", want, text)
			}
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURLs(srv.URL, srv.URL))
	if err := c.SendMessage(context.Background(), "g-tok", "dest@example.com", "digest", "the body"); err != nil {
		t.Fatalf("send: %v", err)
	}
}
