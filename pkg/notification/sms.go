package notification

import (
	"context"
	"fmt"
)

type SMSConfig struct {
	SignName     string
	TemplateCode string
}

// SMSClient is the injectable transport. Production adapts the carrier SDK;
// tests substitute a recorder.
type SMSClient interface {
	Send(ctx context.Context, phone, sign, template string, params map[string]string) error
}

// SMS sends templated text messages to emergency contacts.
type SMS struct {
	cfg SMSConfig
	cli SMSClient
}

func NewSMS(cfg SMSConfig, cli SMSClient) *SMS {
	return &SMS{cfg: cfg, cli: cli}
}

// SendAlert notifies one contact about a distress event. The params carry
// the owner's name and a maps link for the recorded coordinates.
func (s *SMS) SendAlert(ctx context.Context, phone string, params map[string]string) error {
	if s.cli == nil {
		return fmt.Errorf("SMSClient not configured")
	}
	return s.cli.Send(ctx, phone, s.cfg.SignName, s.cfg.TemplateCode, params)
}
