// Package notify delivers user notifications by email.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"

	"centsible/internal/events"
	"centsible/internal/format"
	"centsible/internal/logger"
)

// Notifier sends a bill reminder to its user.
type Notifier interface {
	NotifyBillReminder(ctx context.Context, r *events.BillReminder) error
}

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer sends notifications through an SMTP relay.
type Mailer struct {
	cfg  SMTPConfig
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewMailer creates a Mailer for cfg.
func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{
		cfg: cfg,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// NotifyBillReminder emails the reminder.
func (m *Mailer) NotifyBillReminder(ctx context.Context, r *events.BillReminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := billReminderEmail(m.cfg.From, r, time.Now().UTC())

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(e, addr, auth); err != nil {
		logger.Get().Errorw("failed to send bill reminder", "bill_id", r.BillID, "to", r.Email, "error", err)
		return fmt.Errorf("failed to send bill reminder: %w", err)
	}

	logger.Get().Infow("bill reminder sent", "bill_id", r.BillID, "to", r.Email)
	return nil
}

func billReminderEmail(from string, r *events.BillReminder, today time.Time) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{r.Email}

	amount := format.Money(float64(r.Amount), r.Currency)
	due := r.DueDate.Format("Monday, January 2")
	e.Subject = fmt.Sprintf("%s of %s is due %s", r.Name, amount, when(r.DueDate, today))

	name := r.FirstName
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your bill \"%s\" of %s is due on %s.\n", r.Name, amount, due)
	b.WriteString("Make sure the money is set aside in your budget.\n\n")
	b.WriteString("Centsible")
	e.Text = []byte(b.String())
	return e
}

func when(due, today time.Time) string {
	y1, m1, d1 := due.Date()
	y2, m2, d2 := today.Date()
	days := int(time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC).Sub(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", days)
}

// LogNotifier writes reminders to the log. Used when no SMTP relay is configured.
type LogNotifier struct{}

// NotifyBillReminder implements Notifier.
func (LogNotifier) NotifyBillReminder(_ context.Context, r *events.BillReminder) error {
	logger.Named("notify").Infow("bill reminder", "bill_id", r.BillID, "to", r.Email, "due", r.DueDate)
	return nil
}
