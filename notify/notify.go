// Package notify sends the email notifications triggered by SMS conversations.
package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/dilshat/sms-responder/config"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
)

const (
	Welcome      = "welcome"
	ConfirmPhone = "confirm_phone"
)

type Notifier interface {
	//Notify sends the email template to recipient
	Notify(ctx context.Context, template, recipient string, data map[string]string) error
}

type emailTemplate struct {
	subject string
	body    string
}

var templates = map[string]emailTemplate{
	Welcome: {
		subject: "Welcome to {{brand}}",
		body: "Thanks for joining {{brand}}!\n\n" +
			"Coupons from businesses near {{zip}} will arrive in your inbox and, if you opted in, on your phone.\n\n" +
			"Text STOP to unsubscribe from text alerts at any time.\n",
	},
	ConfirmPhone: {
		subject: "Confirm your mobile number",
		body: "A phone ending in {{phone}} asked to receive {{brand}} coupons for this email address.\n\n" +
			"If that was you, sign in to {{brand}} to confirm the number. Otherwise you can ignore this message.\n",
	},
}

// render returns subject and body of template filled with data.
func render(template, brand string, data map[string]string) (string, string, error) {
	tpl, ok := templates[template]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", template)
	}

	tagFunc := func(w io.Writer, tag string) (int, error) {
		if tag == "brand" {
			return w.Write([]byte(brand))
		}
		return w.Write([]byte(data[tag]))
	}

	subject, err := fasttemplate.ExecuteFuncStringWithErr(tpl.subject, "{{", "}}", tagFunc)
	if err != nil {
		return "", "", err
	}
	body, err := fasttemplate.ExecuteFuncStringWithErr(tpl.body, "{{", "}}", tagFunc)
	if err != nil {
		return "", "", err
	}

	return subject, body, nil
}

// New returns an SMTP notifier, or one that only logs when no SMTP host is configured.
func New(cfg config.SMTPConfig, brand string, logger *zap.Logger) Notifier {
	logger = logger.Named("notifier")
	if cfg.Host == "" {
		return &logNotifier{brand: brand, logger: logger}
	}
	return &mailNotifier{cfg: cfg, brand: brand, logger: logger}
}

type logNotifier struct {
	brand  string
	logger *zap.Logger
}

func (n *logNotifier) Notify(ctx context.Context, template, recipient string, data map[string]string) error {
	subject, _, err := render(template, n.brand, data)
	if err != nil {
		return err
	}
	n.logger.Info("email not sent, smtp is not configured", zap.String("template", template), zap.String("subject", subject))
	return nil
}
