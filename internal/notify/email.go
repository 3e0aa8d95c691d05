// Package notify turns bus events into notification emails.
package notify

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/events"
	"github.com/bogdang40/DouaInimi/internal/logger"
	"github.com/bogdang40/DouaInimi/internal/presence"
	"github.com/bogdang40/DouaInimi/internal/repository"
)

const sendTimeout = 10 * time.Second

// Sender delivers one mail message. Satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier subscribes to the event bus and emails users about new matches
// and new messages.
type Notifier struct {
	cfg      *config.Config
	sender   Sender
	userRepo *repository.UserRepository
	presence *presence.Tracker
}

// NewNotifier creates an email notifier. presence may be nil, in which case
// online suppression is skipped.
func NewNotifier(cfg *config.Config, sender Sender, userRepo *repository.UserRepository, tracker *presence.Tracker) *Notifier {
	if sender == nil {
		sender = gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	}
	return &Notifier{
		cfg:      cfg,
		sender:   sender,
		userRepo: userRepo,
		presence: tracker,
	}
}

// Handle is the bus subscriber entry point.
//
// Behavior:
//   - match_created: both participants who opted into match notifications
//     get an email.
//   - message_sent: only the recipient is considered, and only when they
//     opted in AND are not currently connected. Someone reading the chat
//     live does not need an email about it.
//   - Delivery failures are logged and swallowed; notifications are best
//     effort.
func (n *Notifier) Handle(ev events.Event) {
	if !n.cfg.SMTP.Enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	switch ev.Type {
	case events.TypeMatchCreated:
		if ev.MatchCreated == nil {
			return
		}
		n.notifyMatch(ctx, ev.MatchCreated.User1ID)
		n.notifyMatch(ctx, ev.MatchCreated.User2ID)
	case events.TypeMessageSent:
		if ev.MessageSent == nil {
			return
		}
		n.notifyMessage(ctx, ev.MessageSent)
	}
}

func (n *Notifier) notifyMatch(ctx context.Context, userID uint64) {
	user, err := n.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		logger.Warn("match notification skipped", "user_id", userID, "error", err)
		return
	}
	if !user.Active || !user.NotifyMatches {
		return
	}

	subject := "You have a new match!"
	body := "Someone you liked has liked you back. Open Doua Inimi to start the conversation."
	n.send(user.Email, subject, body)
}

func (n *Notifier) notifyMessage(ctx context.Context, ev *events.MessageSent) {
	user, err := n.userRepo.FindByID(ctx, ev.RecipientID)
	if err != nil || user == nil {
		logger.Warn("message notification skipped", "user_id", ev.RecipientID, "error", err)
		return
	}
	if !user.Active || !user.NotifyMessages {
		return
	}
	if n.presence != nil && n.presence.IsOnline(ctx, ev.RecipientID) {
		return
	}

	subject := "You have a new message"
	body := fmt.Sprintf("You received a new message:\n\n%s\n\nOpen Doua Inimi to reply.", ev.Preview)
	n.send(user.Email, subject, body)
}

func (n *Notifier) send(to, subject, body string) {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.SMTP.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.sender.DialAndSend(m); err != nil {
		logger.Error("failed to send notification email", "to", to, "error", err)
	}
}
