package log

import (
	"strings"

	"github.com/dilshat/sms-responder/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VisibleDigits is how many trailing phone digits survive redaction.
const VisibleDigits = 4

// New builds the process logger. Debug mode switches to the human readable
// development encoder and enables debug level.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Redact masks all but the last VisibleDigits characters of a phone number.
func Redact(phone string) string {
	if len(phone) <= VisibleDigits {
		return phone
	}
	return strings.Repeat("*", len(phone)-VisibleDigits) + util.LastDigits(phone, VisibleDigits)
}

// Phone is a zap field carrying a redacted phone number.
func Phone(key, phone string) zap.Field {
	return zap.String(key, Redact(phone))
}

func WarnIfErr(logger *zap.Logger, description string, err error) {
	if err != nil {
		logger.Warn(description, zap.Error(err))
	}
}

func ErrIfErr(logger *zap.Logger, description string, err error) {
	if err != nil {
		logger.Error(description, zap.Error(err))
	}
}
