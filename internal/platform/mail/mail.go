// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

/*
Package mail provides the transactional email collaborator.

It renders embedded HTML templates and delivers them over SMTP. Delivery
failures always propagate to the caller: the activation flow treats a failed
send as a failed registration, because a token the user can never receive
must not be considered issued.
*/
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender is the contract consumed by the auth service.
type Sender interface {
	// Send renders the named template with data and delivers it to the address.
	Send(ctx context.Context, toAddress, subject, templateName string, data any) error
}

// # SMTP Implementation

// SMTPConfig holds the connection settings for the SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     string
	Account  string
	Password string
	From     string
}

// SMTPSender delivers templated mail through a plain-auth SMTP relay.
type SMTPSender struct {
	config    SMTPConfig
	templates *template.Template
}

// NewSMTPSender parses the embedded templates and returns a ready sender.
func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mail: failed to parse templates: %w", err)
	}

	return &SMTPSender{config: config, templates: templates}, nil
}

/*
Send renders the named template and delivers the message.

Parameters:
  - ctx: context.Context (honored up to the blocking SMTP dial)
  - toAddress: Recipient email address
  - subject: Message subject line
  - templateName: File name of an embedded template (e.g. "activation.html")
  - data: Template payload

Returns:
  - error: Rendering or delivery failures (never swallowed)
*/
func (sender *SMTPSender) Send(ctx context.Context, toAddress, subject, templateName string, data any) error {

	// Render the HTML body first so template errors fail before any dial.
	var body bytes.Buffer
	if err := sender.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("mail: failed to render template %q: %w", templateName, err)
	}

	// Bail out early if the caller already gave up.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mail: send aborted: %w", err)
	}

	message := buildMessage(sender.config.From, toAddress, subject, body.String())

	addr := sender.config.Host + ":" + sender.config.Port
	auth := smtp.PlainAuth("", sender.config.Account, sender.config.Password, sender.config.Host)

	if err := smtp.SendMail(addr, auth, sender.config.From, []string{toAddress}, message); err != nil {
		return fmt.Errorf("mail: delivery to %s failed: %w", toAddress, err)
	}

	return nil
}

// buildMessage assembles a minimal MIME message with an HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var message bytes.Buffer

	fmt.Fprintf(&message, "From: %s\r\n", from)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	return message.Bytes()
}
