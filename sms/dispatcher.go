package sms

import (
	"context"
	"fmt"

	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/log"
	"github.com/dilshat/sms-responder/model"
	"github.com/dilshat/sms-responder/util"
	"go.uber.org/zap"
)

type RateLimiter interface {
	// Wait blocks until the limiter permits an event to happen.
	Wait(ctx context.Context) error
}

type Dispatcher interface {
	//Dispatch renders and sends reply to the phone and records it in the response ledger
	Dispatch(ctx context.Context, inbound model.InboundMessage, phone model.MobilePhone, reply Reply) (model.OutboundMessage, error)
}

type dispatcher struct {
	client      Client
	templates   *Templates
	carrierDao  dao.CarrierDao
	outboundDao dao.OutboundDao
	responseDao dao.ResponseDao
	rateLimiter RateLimiter
	shortCode   string
	logger      *zap.Logger
}

func NewDispatcher(client Client, templates *Templates, carrierDao dao.CarrierDao, outboundDao dao.OutboundDao,
	responseDao dao.ResponseDao, rateLimiter RateLimiter, shortCode string, logger *zap.Logger) Dispatcher {
	return &dispatcher{
		client:      client,
		templates:   templates,
		carrierDao:  carrierDao,
		outboundDao: outboundDao,
		responseDao: responseDao,
		rateLimiter: rateLimiter,
		shortCode:   shortCode,
		logger:      logger.Named("dispatcher"),
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, inbound model.InboundMessage, phone model.MobilePhone, reply Reply) (model.OutboundMessage, error) {
	rendered, err := d.templates.Render(reply.Template, reply.Context)
	if err != nil {
		return model.OutboundMessage{}, err
	}
	text := ToASCII(rendered)

	//the same text already went out for this inbound message
	if previous, ok, err := d.previousResponse(inbound.Id, phone.Number, text); err != nil {
		return model.OutboundMessage{}, err
	} else if ok {
		d.logger.Info("reply already sent", zap.Uint32("inbound", inbound.Id), zap.Uint32("outbound", previous.Id))
		return previous, nil
	}

	var carrier model.Carrier
	if phone.CarrierId != 0 {
		carrier, err = d.carrierDao.GetOneById(phone.CarrierId)
		if err != nil && !dao.IsNotFound(err) {
			return model.OutboundMessage{}, err
		}
	}
	if !carrier.HasCredentials() {
		return model.OutboundMessage{}, fmt.Errorf("%w: carrier %d of phone %s", ErrMissingCredentials, phone.CarrierId, log.Redact(phone.Number))
	}

	if err = d.rateLimiter.Wait(ctx); err != nil {
		return model.OutboundMessage{}, err
	}

	from := inbound.To
	if util.IsBlank(from) {
		from = d.shortCode
	}

	msg := model.OutboundMessage{
		To:       phone.Number,
		From:     from,
		Text:     text,
		Template: string(reply.Template),
		Status:   model.SUBMIT_OK,
	}

	externalId, sendErr := d.client.Send(ctx, Credentials{Username: carrier.Username, Password: carrier.Password}, from, phone.Number, text)
	if sendErr != nil {
		//not retried, the message is stored without an external id
		d.logger.Warn("carrier send failed", log.Phone("to", phone.Number), zap.String("carrier", carrier.Name), zap.Error(sendErr))
		msg.Status = model.SUBMIT_FAIL
	}
	msg.ExternalId = externalId

	msg, err = d.outboundDao.Create(msg)
	if err != nil {
		return model.OutboundMessage{}, err
	}

	if err = d.responseDao.Link(inbound.Id, msg.Id, reply.OptOut); err != nil {
		return msg, err
	}

	d.logger.Info("reply sent", log.Phone("to", phone.Number), zap.String("template", msg.Template),
		zap.String("external_id", msg.ExternalId), zap.Bool("sent", msg.Sent()))

	return msg, nil
}

func (d *dispatcher) previousResponse(inboundId uint32, to, text string) (model.OutboundMessage, bool, error) {
	links, err := d.responseDao.GetAllByInboundId(inboundId)
	if err != nil {
		return model.OutboundMessage{}, false, err
	}

	for _, link := range links {
		out, err := d.outboundDao.GetOneById(link.OutboundId)
		if dao.IsNotFound(err) {
			continue
		}
		if err != nil {
			return model.OutboundMessage{}, false, err
		}
		if out.To == to && out.Text == text {
			return out, true, nil
		}
	}

	return model.OutboundMessage{}, false, nil
}
