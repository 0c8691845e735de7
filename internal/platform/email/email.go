// Copyright (c) 2026 Trailhead. All rights reserved.
// Author: dev@trailhead.app

/*
Package email delivers transactional mail.

The only current sender of mail is the password-reset flow, so the surface
stays deliberately small: a [Sender] interface with an SMTP implementation
for production and a log-only implementation for development, where reset
links land in the console instead of an inbox.
*/
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is one outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message to its recipient.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// # SMTP Sender

// SMTPSender delivers mail through a plain SMTP relay with AUTH.
type SMTPSender struct {
	host string
	port int
	auth smtp.Auth
	from string
}

// NewSMTPSender constructs a sender for the given relay. Credentials may be
// empty for relays that accept unauthenticated submission (mailtrap, local
// debug servers).
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPSender{host: host, port: port, auth: auth, from: from}
}

// Send delivers the message synchronously. Context cancellation is not
// honored mid-dial because net/smtp offers no context hooks; callers bound
// delivery with their own timeout.
func (sender *SMTPSender) Send(_ context.Context, message Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender.from)
	fmt.Fprintf(&b, "To: %s\r\n", message.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", message.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(message.Body)

	addr := fmt.Sprintf("%s:%d", sender.host, sender.port)
	if err := smtp.SendMail(addr, sender.auth, sender.from, []string{message.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}

	return nil
}

// # Log Sender

// LogSender writes mail to the structured log instead of delivering it.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a development sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and always succeeds.
func (sender *LogSender) Send(ctx context.Context, message Message) error {
	sender.logger.InfoContext(ctx, "email_delivered_to_log",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)

	return nil
}
