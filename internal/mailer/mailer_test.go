package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

func TestSMTPMailer_SendVerificationCode(t *testing.T) {
	fake := &fakeSender{}
	m := &SMTPMailer{client: fake, from: DefaultFrom}

	require.NoError(t, m.SendVerificationCode(context.Background(), "ana@dryfit.app", "482913", 15*time.Minute))
	require.Len(t, fake.sent, 1)

	var buf bytes.Buffer
	_, err := fake.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "482913")
	assert.Contains(t, buf.String(), "ana@dryfit.app")
	assert.Contains(t, buf.String(), "noreply@dryfit.app")
}

func TestSMTPMailer_PropagatesSendError(t *testing.T) {
	boom := errors.New("connection refused")
	m := &SMTPMailer{client: &fakeSender{err: boom}, from: DefaultFrom}

	err := m.SendVerificationCode(context.Background(), "ana@dryfit.app", "482913", 15*time.Minute)
	assert.ErrorIs(t, err, boom)
}

func TestVerificationMessage_InvalidRecipient(t *testing.T) {
	_, err := verificationMessage(DefaultFrom, "not an address", "482913", time.Minute)
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewWithWriter(&buf, "info", "json"))

	require.NoError(t, m.SendVerificationCode(context.Background(), "ana@dryfit.app", "482913", 15*time.Minute))
	assert.Contains(t, buf.String(), "482913")
}
