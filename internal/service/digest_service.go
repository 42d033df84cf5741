package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// TokenSource exchanges a user id for a provider access token.
type TokenSource interface {
	ProviderToken(ctx context.Context, userID string) (string, error)
}

// MailSender delivers a plain message through the user's mail provider.
type MailSender interface {
	SendMessage(ctx context.Context, accessToken, to, subject, body string) error
}

// DigestService periodically mails each task owner a summary of tasks that
// are overdue or coming due. Delivery goes through the owner's own Gmail
// account via the token exchange, so a user without a linked provider is
// skipped rather than failing the whole run.
type DigestService struct {
	repo   *repository.TaskRepository
	tokens TokenSource
	mail   MailSender
	to     string
	window time.Duration
}

func NewDigestService(repo *repository.TaskRepository, tokens TokenSource, mail MailSender, to string, window time.Duration) *DigestService {
	if window <= 0 {
		window = 48 * time.Hour
	}
	return &DigestService{repo: repo, tokens: tokens, mail: mail, to: to, window: window}
}

// Run builds and sends one digest per task owner. Errors for individual
// users are logged and do not stop the sweep.
func (s *DigestService) Run(ctx context.Context, now time.Time) error {
	userIDs, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, userID := range userIDs {
		if err := s.runForUser(ctx, userID, now); err != nil {
			log.Printf("[digest] user %s: %v", userID, err)
		}
	}
	return nil
}

func (s *DigestService) runForUser(ctx context.Context, userID string, now time.Time) error {
	tasks, err := s.repo.ListDueBefore(ctx, userID, now.Add(s.window))
	if err != nil {
		return fmt.Errorf("list due tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	token, err := s.tokens.ProviderToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("provider token: %w", err)
	}

	subject := fmt.Sprintf("Task digest for %s", now.Format("2006-01-02"))
	return s.mail.SendMessage(ctx, token, s.to, subject, BuildDigest(tasks, now))
}

// BuildDigest renders the overdue / due-soon buckets as plain text.
func BuildDigest(tasks []model.Task, now time.Time) string {
	var overdue, dueSoon []model.Task
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		if now.After(*task.DueDate) {
			overdue = append(overdue, task)
		} else {
			dueSoon = append(dueSoon, task)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task digest — %s\n", now.Format("2006-01-02"))

	b.WriteString("\nOverdue:\n")
	if len(overdue) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, task := range overdue {
		fmt.Fprintf(&b, "  ! %s (was due %s)\n", strings.TrimSpace(task.Description), task.DueDate.Format("2006-01-02"))
	}

	b.WriteString("\nDue soon:\n")
	if len(dueSoon) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, task := range dueSoon {
		fmt.Fprintf(&b, "  - %s (due %s)\n", strings.TrimSpace(task.Description), task.DueDate.Format("2006-01-02"))
	}

	return strings.TrimSpace(b.String())
}
