// Package mail delivers one-off text messages (password reset codes).
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SMTPMailer sends plain-text mail through an SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var a smtp.Auth
	if username != "" {
		a = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		auth: a,
		from: from,
		send: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("mail: header contains line break")
	}
	if err := m.send(m.addr, m.auth, m.from, []string{to}, buildMessage(m.from, to, subject, body, time.Now())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string, at time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + at.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogMailer stands in for SMTP when no relay is configured. The body is
// only written when includeBody is set (local development).
type LogMailer struct {
	log         *zap.Logger
	includeBody bool
}

func NewLogMailer(log *zap.Logger, includeBody bool) *LogMailer {
	return &LogMailer{log: log, includeBody: includeBody}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	fields := []zap.Field{zap.String("to", to), zap.String("subject", subject)}
	if m.includeBody {
		fields = append(fields, zap.String("body", body))
	}
	m.log.Info("mail not sent: smtp is not configured", fields...)
	return nil
}
