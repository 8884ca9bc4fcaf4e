// Copyright (c) 2026 Lurnia. All rights reserved.
// Author: thanhvu.do.dev@gmail.com

package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestNewSMTPSender_ParsesEmbeddedTemplates verifies the embedded activation
template parses and renders with the expected fields.
*/
func TestNewSMTPSender_ParsesEmbeddedTemplates(t *testing.T) {
	sender, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: "587"})
	require.NoError(t, err)

	var body strings.Builder
	err = sender.templates.ExecuteTemplate(&body, "activation.html", map[string]any{
		"Name":           "Vu",
		"ActivationCode": "4821",
	})
	require.NoError(t, err)
	assert.Contains(t, body.String(), "Vu")
	assert.Contains(t, body.String(), "4821")
}

/*
TestBuildMessage verifies the MIME framing of outgoing mail.
*/
func TestBuildMessage(t *testing.T) {
	message := string(buildMessage("noreply@lurnia.app", "vu@lurnia.app", "Hello", "<p>Hi</p>"))

	assert.Contains(t, message, "From: noreply@lurnia.app\r\n")
	assert.Contains(t, message, "To: vu@lurnia.app\r\n")
	assert.Contains(t, message, "Subject: Hello\r\n")
	assert.Contains(t, message, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	assert.True(t, strings.HasSuffix(message, "\r\n<p>Hi</p>"))
}
