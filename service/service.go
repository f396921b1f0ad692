package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/dilshat/sms-responder/conversation"
	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/identity"
	"github.com/dilshat/sms-responder/service/dto"
	"github.com/dilshat/sms-responder/sms"
	"github.com/dilshat/sms-responder/worker"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

type InvalidPayloadErr struct {
	message string
}

func (e *InvalidPayloadErr) Error() string {
	return e.message
}

func NewInvalidPayloadError(msg string) *InvalidPayloadErr {
	return &InvalidPayloadErr{message: msg}
}

func IsInvalidPayload(err error) bool {
	var invalid *InvalidPayloadErr
	return errors.As(err, &invalid)
}

// Submitter queues an accepted inbound message for processing.
type Submitter interface {
	Submit(inboundId uint32) (worker.Job, error)
}

type Service interface {
	//ReceiveInbound validates, deduplicates and stores an inbound message, then queues it
	ReceiveInbound(ctx context.Context, params url.Values) error
	//Process resolves the sender, runs the conversation and sends the replies
	Process(ctx context.Context, inboundId uint32) error
	//ReceiveReport stores a delivery report of an outbound message
	ReceiveReport(ctx context.Context, params url.Values) error
	//CheckStatusOfOutbound returns an outbound message with its delivery reports
	CheckStatusOfOutbound(id uint32) (dto.OutboundStatus, error)
	//CleanupReports removes expired delivery reports
	CleanupReports() error
}

type Deps struct {
	InboundDao  dao.InboundDao
	OutboundDao dao.OutboundDao
	ReportDao   dao.ReportDao
	Resolver    identity.Resolver
	Handler     conversation.Handler
	Dispatcher  sms.Dispatcher
	Submitter   Submitter
	Logger      *zap.Logger

	NetworkAliases  map[string]string
	SmsMaxLen       int
	ReportStoreDays int
}

type service struct {
	inboundDao      dao.InboundDao
	outboundDao     dao.OutboundDao
	reportDao       dao.ReportDao
	resolver        identity.Resolver
	handler         conversation.Handler
	dispatcher      sms.Dispatcher
	submitter       Submitter
	networkAliases  map[string]string
	smsMaxLen       int
	reportStoreDays int
	validate        *validator.Validate
	logger          *zap.Logger
}

func NewService(deps Deps) Service {
	return &service{
		inboundDao:      deps.InboundDao,
		outboundDao:     deps.OutboundDao,
		reportDao:       deps.ReportDao,
		resolver:        deps.Resolver,
		handler:         deps.Handler,
		dispatcher:      deps.Dispatcher,
		submitter:       deps.Submitter,
		networkAliases:  deps.NetworkAliases,
		smsMaxLen:       deps.SmsMaxLen,
		reportStoreDays: deps.ReportStoreDays,
		validate:        newValidator(),
		logger:          deps.Logger.Named("service"),
	}
}

// newValidator reports fields by their query parameter names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("query"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

func (s *service) validateStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return NewInvalidPayloadError("Invalid parameters: " + strings.Join(fields, ", "))
}

func requireParams(params url.Values, names ...string) error {
	for _, name := range names {
		if _, ok := params[name]; !ok {
			return NewInvalidPayloadError("Missing parameter " + name)
		}
	}
	return nil
}

// parseDate falls back to the date part when the timestamp is malformed and
// to the receive time when even that fails.
func parseDate(value string, received time.Time) time.Time {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateTimeLayout, value); err == nil {
		return t
	}
	if len(value) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, value[:len(dateLayout)]); err == nil {
			return t
		}
	}
	return received
}

func (s *service) CleanupReports() error {
	if err := s.reportDao.RemoveOlderThanDays(s.reportStoreDays); err != nil {
		return fmt.Errorf("cleanup reports: %w", err)
	}
	return nil
}
