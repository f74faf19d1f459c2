package infra

import (
	"fmt"
	"net/smtp"

	"vitalexa/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain-text notifications, optionally with a PDF attached
// (payroll receipts, movement reports).
type Mailer struct {
	host     string
	port     int
	user     string
	password string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
	}
}

func (m *Mailer) Send(to, subject, body, pdfPath string) error {
	msg := email.NewEmail()
	msg.From = m.user
	msg.To = []string{to}
	msg.Subject = subject
	msg.Text = []byte(body)
	if pdfPath != "" {
		if _, err := msg.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("adjuntando %s: %w", pdfPath, err)
		}
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return msg.Send(addr, smtp.PlainAuth("", m.user, m.password, m.host))
}
