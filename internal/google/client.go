// Package google is a thin read client for the Calendar and Gmail REST
// APIs, authenticated with a per-user delegated access token.
package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"
	defaultGmailBaseURL    = "https://www.googleapis.com/gmail/v1"
)

// EventTime is one end of a calendar event.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// CalendarEvent is a single event from the user's primary calendar.
type CalendarEvent struct {
	ID      string    `json:"id"`
	Summary string    `json:"summary"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
}

// MessageHeader is one RFC-2822 header of a Gmail message.
type MessageHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessagePayload holds the headers and body of a Gmail message.
type MessagePayload struct {
	Headers []MessageHeader `json:"headers"`
	Body    struct {
		Data string `json:"data"`
	} `json:"body"`
}

// Message is a full Gmail message.
type Message struct {
	ID           string         `json:"id"`
	ThreadID     string         `json:"threadId"`
	Snippet      string         `json:"snippet"`
	Payload      MessagePayload `json:"payload"`
	InternalDate string         `json:"internalDate"`
}

// Client calls the Google APIs on behalf of a user. The zero base URLs
// point at the public endpoints; tests override them.
type Client struct {
	calendarBaseURL string
	gmailBaseURL    string
	httpClient      *http.Client
	now             func() time.Time
}

// Option adjusts a Client.
type Option func(*Client)

// WithBaseURLs overrides the API endpoints, primarily for tests.
func WithBaseURLs(calendarBaseURL, gmailBaseURL string) Option {
	return func(c *Client) {
		c.calendarBaseURL = strings.TrimRight(calendarBaseURL, "/")
		c.gmailBaseURL = strings.TrimRight(gmailBaseURL, "/")
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		calendarBaseURL: defaultCalendarBaseURL,
		gmailBaseURL:    defaultGmailBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpcomingEvents returns the next events on the user's primary calendar,
// ordered by start time.
func (c *Client) UpcomingEvents(ctx context.Context, accessToken string) ([]CalendarEvent, error) {
	query := url.Values{
		"timeMin":      {c.now().UTC().Format(time.RFC3339)},
		"maxResults":   {"10"},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}

	var payload struct {
		Items []CalendarEvent `json:"items"`
	}
	endpoint := c.calendarBaseURL + "/calendars/primary/events?" + query.Encode()
	if err := c.get(ctx, endpoint, accessToken, &payload); err != nil {
		return nil, fmt.Errorf("fetching calendar events: %w", err)
	}
	return payload.Items, nil
}

// RecentMessages lists the user's most recent Gmail message ids and fetches
// each full message.
func (c *Client) RecentMessages(ctx context.Context, accessToken string, maxResults int) ([]Message, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	var listing struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	endpoint := fmt.Sprintf("%s/users/me/messages?maxResults=%d", c.gmailBaseURL, maxResults)
	if err := c.get(ctx, endpoint, accessToken, &listing); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	messages := make([]Message, 0, len(listing.Messages))
	for _, ref := range listing.Messages {
		var msg Message
		endpoint := c.gmailBaseURL + "/users/me/messages/" + ref.ID
		if err := c.get(ctx, endpoint, accessToken, &msg); err != nil {
			return nil, fmt.Errorf("fetching message %s: %w", ref.ID, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SendMessage sends a plain HTML mail through the user's Gmail account.
func (c *Client) SendMessage(ctx context.Context, accessToken, to, subject, body string) error {
	raw := strings.Join([]string{
		"To: " + to,
		"Content-Type: text/html; charset=utf-8",
		"MIME-Version: 1.0",
		"Subject: " + subject,
		"",
		body,
	}, "\n")

	payload, err := json.Marshal(map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(raw)),
	})
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	endpoint := c.gmailBaseURL + "/users/me/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("creating send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, accessToken string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
