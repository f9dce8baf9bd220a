package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplates_RenderActivation(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	body, err := tm.Render(TemplateActivation, TemplateData{"Name": "Alice <3", "ActivationCode": "4821"})
	require.NoError(t, err)

	assert.Contains(t, body, "4821")
	// html/template escapes user supplied values
	assert.Contains(t, body, "Alice &lt;3")
}

func TestRender_UnknownTemplate(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)
	_, err = tm.Render("missing.html", nil)
	assert.Error(t, err)
}

func TestNewSMTPSender_ValidatesConfig(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	_, err = NewSMTPSender(SMTPConfig{Port: 587}, tm)
	assert.Error(t, err)

	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.local", Port: 0}, tm)
	assert.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.local", Port: 587}, tm)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.local", Port: 587}, tm)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.SendActivation(ctx, ActivationMail{To: "a@x.com", Name: "A", Code: "1234"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.SendActivation(context.Background(), ActivationMail{To: "a@x.com", Code: "1234"}))
}
