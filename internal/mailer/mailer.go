package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// Mailer sends plain-text notification mail over SMTP. A Mailer with an
// empty Host is disabled and drops everything silently.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.Host != ""
}

func (m *Mailer) send(subject, body string) error {
	if !m.Enabled() {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", m.From)
	fmt.Fprintf(&sb, "To: %s\r\n", m.To)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	fmt.Fprintf(&sb, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	sb.WriteString("\r\n")
	sb.WriteString(body)

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(addr, auth, m.From, []string{m.To}, []byte(sb.String()))
}

// NotifyFeedback tells the shop address that new feedback arrived.
func (m *Mailer) NotifyFeedback(name, email, text string) error {
	body := fmt.Sprintf("New feedback from %s <%s>:\n\n%s\n", name, email, text)
	return m.send("New customer feedback", body)
}
