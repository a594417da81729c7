package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"morningbyte/internal/config"
	"morningbyte/internal/ports"
)

// KindleMailer sends a generated EPUB to a Send-to-Kindle address over SMTP.
// Amazon converts the attachment and drops it into the Kindle library.
type KindleMailer struct {
	cfg config.DeliveryConfig
}

var _ ports.Mailer = (*KindleMailer)(nil)

// NewKindleMailer wires the SMTP and address settings.
func NewKindleMailer(cfg config.DeliveryConfig) *KindleMailer {
	return &KindleMailer{cfg: cfg}
}

// Configured reports whether everything needed to send is present.
func (m *KindleMailer) Configured() bool {
	return m.cfg.KindleEmail != "" &&
		m.cfg.SenderEmail != "" &&
		m.cfg.SMTPUser != "" &&
		m.cfg.SMTPPassword != ""
}

// Send mails the file at path as an attachment. The context is accepted for
// interface symmetry; gomail drives its own dial timeout.
func (m *KindleMailer) Send(_ context.Context, path string) error {
	if !m.Configured() {
		return fmt.Errorf("kindle mailer misconfigured")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.SenderEmail)
	msg.SetHeader("To", m.cfg.KindleEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Morning Byte - %s", name))
	msg.SetBody("text/plain", "Your daily tech digest is attached.")
	msg.Attach(path)

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send to kindle: %w", err)
	}
	return nil
}

// SetupInstructions explains the one-time Send-to-Kindle configuration.
func SetupInstructions() string {
	return `Kindle Email Delivery Setup
============================

1. Find your Kindle email address:
   amazon.com -> Account -> Content & Devices -> Preferences,
   under "Personal Document Settings" (looks like yourname_abc123@kindle.com).

2. Add your sender address to the "Approved Personal Document E-mail List"
   on the same settings page.

3. For Gmail, generate an app password (Google Account -> Security ->
   App Passwords) and use it instead of your account password.

4. Configure via environment or config file:
   KINDLE_EMAIL=yourname@kindle.com
   SENDER_EMAIL=you@gmail.com
   SMTP_USER=you@gmail.com
   SMTP_PASSWORD=your-app-password

Amazon converts the EPUB automatically; the digest shows up in your
Kindle library within minutes.`
}
