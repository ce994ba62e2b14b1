package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/metrics"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/worker"
)

const emailTimeout = 15 * time.Second

// Mailer sends an HTML e-mail.
type Mailer interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// Notifier records owner notifications and, once they are committed, e-mails them.
type Notifier struct {
	pool   worker.Pool
	mailer Mailer
	logger zerolog.Logger
}

// NewNotifier builds a Notifier. A nil mailer or pool disables e-mail.
func NewNotifier(pool worker.Pool, mailer Mailer) *Notifier {
	return &Notifier{
		pool:   pool,
		mailer: mailer,
		logger: log.With().Str("component", "notifier").Logger(),
	}
}

// staged is a notification written inside a transaction that has not committed yet.
type staged struct {
	notification *models.Notification
	email        string
}

// stage writes an unread notification for recipient using tx. Actions by the
// owner never notify, so stage returns nil for them.
func (n *Notifier) stage(ctx context.Context, tx database.Database, actor Actor, recipient *models.User, message string) (*staged, error) {
	if actor.IsOwner || recipient == nil {
		return nil, nil
	}
	notification := &models.Notification{UserID: recipient.ID, Message: message}
	if err := tx.NotificationRepo().Add(ctx, notification); err != nil {
		return nil, err
	}
	return &staged{notification: notification, email: recipient.Email}, nil
}

// dispatch runs after commit. E-mail delivery is best effort and only logged on failure.
func (n *Notifier) dispatch(s *staged) {
	if s == nil {
		return
	}
	metrics.NotificationsCreated.Inc()
	if n.mailer == nil || n.pool == nil || s.email == "" {
		return
	}

	message := s.notification.Message
	recipient := s.email
	n.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()

		body := fmt.Sprintf("<p>%s</p>", html.EscapeString(message))
		if err := n.mailer.Send(ctx, "New activity on your portfolio", body, []string{recipient}); err != nil {
			n.logger.Warn().Err(err).Str("notificationId", s.notification.ID.String()).Msg("notification e-mail not delivered")
		}
	})
}
