package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dilshat/sms-responder/config"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const smtpTimeout = 15 * time.Second

type mailNotifier struct {
	cfg    config.SMTPConfig
	brand  string
	logger *zap.Logger
}

func (n *mailNotifier) Notify(ctx context.Context, template, recipient string, data map[string]string) error {
	m, err := n.message(template, recipient, data)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(smtpTimeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if n.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.User),
			mail.WithPassword(n.cfg.Password))
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("email sent", zap.String("template", template), zap.String("message_id", m.GetMessageID()))
	return nil
}

func (n *mailNotifier) message(template, recipient string, data map[string]string) (*mail.Msg, error) {
	subject, body, err := render(template, n.brand, data)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := m.To(recipient); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	m.SetMessageID()

	return m, nil
}
