package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"github.com/resend/resend-go/v2"
)

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) (*ResendSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("resend api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("email sender address is required")
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg ports.EmailMessage) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: recipient is required", domain.ErrInvalidInput)
	}
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("%w: resend: %v", domain.ErrDependencyUnavailable, err)
	}
	return nil
}

var _ ports.EmailSender = (*ResendSender)(nil)
