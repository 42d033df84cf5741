package httpapi

import (
	"context"
	"log"
	"net/http"

	"taskhub/internal/google"
)

// TokenSource exchanges a user id for a provider access token.
type TokenSource interface {
	ProviderToken(ctx context.Context, userID string) (string, error)
}

// CalendarAPI reads a user's upcoming calendar events.
type CalendarAPI interface {
	UpcomingEvents(ctx context.Context, accessToken string) ([]google.CalendarEvent, error)
}

// MailAPI reads a user's recent mail.
type MailAPI interface {
	RecentMessages(ctx context.Context, accessToken string, maxResults int) ([]google.Message, error)
}

// GoogleController proxies calendar and mail reads for the authenticated
// user. It is fully decoupled from the task hierarchy core.
type GoogleController struct {
	tokens   TokenSource
	calendar CalendarAPI
	mail     MailAPI
}

func NewGoogleController(tokens TokenSource, calendar CalendarAPI, mail MailAPI) *GoogleController {
	return &GoogleController{tokens: tokens, calendar: calendar, mail: mail}
}

// GetCalendarEvents handles GET /calendar/events.
func (c *GoogleController) GetCalendarEvents(w http.ResponseWriter, r *http.Request) {
	token, err := c.tokens.ProviderToken(r.Context(), requestUserID(r))
	if err != nil {
		log.Printf("[http] calendar token exchange: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch calendar events")
		return
	}

	events, err := c.calendar.UpcomingEvents(r.Context(), token)
	if err != nil {
		log.Printf("[http] fetch calendar events: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch calendar events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetGmailMessages handles GET /gmail/messages.
func (c *GoogleController) GetGmailMessages(w http.ResponseWriter, r *http.Request) {
	token, err := c.tokens.ProviderToken(r.Context(), requestUserID(r))
	if err != nil {
		log.Printf("[http] gmail token exchange: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch messages")
		return
	}

	messages, err := c.mail.RecentMessages(r.Context(), token, 10)
	if err != nil {
		log.Printf("[http] fetch gmail messages: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
