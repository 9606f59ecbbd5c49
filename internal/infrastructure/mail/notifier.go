package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"MediaCurator/internal/config"
	"MediaCurator/internal/ports"
)

// Notifier announces a finished newsletter to all recipients via SMTP.
type Notifier struct {
	cfg           config.MailConfig
	newsletterURL string
	logger        *slog.Logger
	send          func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers SMTP credentials and the public newsletter URL.
func NewNotifier(cfg config.MailConfig, newsletterURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:           cfg,
		newsletterURL: newsletterURL,
		logger:        logger,
		send:          smtp.SendMail,
	}
}

// PublishDigest emails each recipient a link to the published newsletter.
// Delivery failures are collected so one bad address does not block the rest.
func (n *Notifier) PublishDigest(ctx context.Context, date time.Time, count int) error {
	if n.cfg.Host == "" || n.cfg.Username == "" || n.cfg.Password == "" {
		return fmt.Errorf("mail notifier misconfigured")
	}
	if len(n.cfg.Recipients) == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	from := n.cfg.From
	if from == "" {
		from = n.cfg.Username
	}

	day := date.Format("2006-01-02")
	link := fmt.Sprintf("%s?date=%s", n.newsletterURL, day)

	var failures []error
	for name, email := range n.cfg.Recipients {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		msg := n.buildMessage(from, email, name, link, day, count)
		if err := n.send(addr, auth, from, []string{email}, msg); err != nil {
			n.logger.Warn("digest delivery failed", "recipient", name, "error", err)
			failures = append(failures, fmt.Errorf("send to %s: %w", name, err))
			continue
		}
		n.logger.Info("digest sent", "recipient", name)
	}

	return errors.Join(failures...)
}

func (n *Notifier) buildMessage(from, to, name, link, day string, count int) []byte {
	subject := fmt.Sprintf("Medien Newsletter - %d Artikel (%s)", count, day)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "<html><body><p>Hallo %s,</p>", name)
	fmt.Fprintf(&b, "<p>dein Newsletter mit %d Artikeln ist bereit:</p>", count)
	fmt.Fprintf(&b, "<p><a href=%q>Newsletter öffnen</a></p>", link)
	b.WriteString("<p><small>Bewerte Artikel, damit sich die Auswahl verbessert.</small></p>")
	b.WriteString("</body></html>\r\n")

	return []byte(b.String())
}
