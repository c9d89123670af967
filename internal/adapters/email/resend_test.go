package email

import (
	"context"
	"testing"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/stretchr/testify/require"
)

func TestNewResendSenderRequiresCredentials(t *testing.T) {
	_, err := NewResendSender("", "noreply@jansankalp.in")
	require.Error(t, err)
	_, err = NewResendSender("re_test", " ")
	require.Error(t, err)
}

func TestResendSenderRejectsEmptyRecipient(t *testing.T) {
	sender, err := NewResendSender("re_test", "noreply@jansankalp.in")
	require.NoError(t, err)
	err = sender.Send(context.Background(), ports.EmailMessage{Subject: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoggingSenderAcceptsEverything(t *testing.T) {
	require.NoError(t, NewLoggingSender(nil).Send(context.Background(), ports.EmailMessage{To: "a@b.c"}))
}
