// Package conversation decides how to answer an inbound message given its
// intent and the current state of the sender's identity.
package conversation

import (
	"context"
	"fmt"

	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/identity"
	"github.com/dilshat/sms-responder/intent"
	"github.com/dilshat/sms-responder/log"
	"github.com/dilshat/sms-responder/model"
	"github.com/dilshat/sms-responder/notify"
	"github.com/dilshat/sms-responder/sms"
	"go.uber.org/zap"
)

type State struct {
	Inbound  model.InboundMessage
	Intent   intent.Intent
	Identity identity.Resolution
}

// Outcome lists the replies to send, in order. Empty means no reply.
type Outcome struct {
	Replies []sms.Reply
}

type Handler interface {
	//Handle applies the side effects of the message and returns the replies to send
	Handle(ctx context.Context, state State) (Outcome, error)
}

// column is the identity state a message is evaluated against.
type column int

const (
	colNew column = iota
	colZipUnknown
	colZipKnown
	colSubscribed
)

func columnOf(res identity.Resolution) column {
	switch {
	case res.Created:
		return colNew
	case !res.Subscriber.ZipKnown():
		return colZipUnknown
	case !res.Subscriber.HasSubscription(model.CouponAlerts):
		return colZipKnown
	default:
		return colSubscribed
	}
}

type handler struct {
	subscriberDao dao.SubscriberDao
	consumerDao   dao.ConsumerDao
	siteDao       dao.SiteDao
	notifier      notify.Notifier
	defaultSiteId uint32
	logger        *zap.Logger
}

func NewHandler(subscriberDao dao.SubscriberDao, consumerDao dao.ConsumerDao, siteDao dao.SiteDao,
	notifier notify.Notifier, defaultSiteId uint32, logger *zap.Logger) Handler {
	return &handler{
		subscriberDao: subscriberDao,
		consumerDao:   consumerDao,
		siteDao:       siteDao,
		notifier:      notifier,
		defaultSiteId: defaultSiteId,
		logger:        logger.Named("conversation"),
	}
}

func (h *handler) Handle(ctx context.Context, state State) (Outcome, error) {
	var (
		replies []sms.Reply
		err     error
	)

	col := columnOf(state.Identity)
	sub := state.Identity.Subscriber

	switch state.Intent.Kind {
	case intent.Help:
		replies = reply(sms.Help)
	case intent.Unsubscribe:
		replies, err = h.optOut(sub)
	case intent.Save:
		replies = h.save(col)
	case intent.No:
		replies, err = h.no(col, sub)
	case intent.Yes:
		replies, err = h.yes(col, sub)
	case intent.ZipCode:
		replies, err = h.zipCode(col, sub, state.Intent.Zip)
	case intent.AdvertiserIntent:
		replies, err = h.advertiser(col, sub)
	case intent.EmailWord:
		replies = h.emailWord(ctx, col, state.Identity)
	case intent.EmailAddress:
		replies, err = h.emailAddress(ctx, col, state.Identity, state.Intent.Email)
	default:
		h.logger.Debug("no reply", zap.Stringer("intent", state.Intent.Kind), zap.Uint32("inbound", state.Inbound.Id))
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("handle %s: %w", state.Intent.Kind, err)
	}

	if len(replies) > 0 && state.Identity.NewlyVerified {
		replies = append([]sms.Reply{{Template: sms.PhoneVerified}}, replies...)
	}

	return Outcome{Replies: replies}, nil
}

func reply(template sms.Template) []sms.Reply {
	return []sms.Reply{{Template: template}}
}

func optInSuccess(sub model.Subscriber) []sms.Reply {
	return []sms.Reply{{Template: sms.OptInSuccess, Context: map[string]string{"zip": sub.ZipPostal}}}
}

func (h *handler) optOut(sub model.Subscriber) ([]sms.Reply, error) {
	if _, err := h.subscriberDao.ClearSubscriptions(sub.Id); err != nil {
		return nil, err
	}
	h.logger.Info("subscriber opted out", zap.Uint32("subscriber", sub.Id))
	return []sms.Reply{{Template: sms.OptOutSuccess, OptOut: true}}, nil
}

func (h *handler) save(col column) []sms.Reply {
	if col == colNew || col == colZipUnknown {
		return reply(sms.RequestZip)
	}
	return reply(sms.RequestDoubleOptIn)
}

func (h *handler) no(col column, sub model.Subscriber) ([]sms.Reply, error) {
	if col == colNew || col == colZipUnknown {
		return reply(sms.RequestZip), nil
	}
	return h.optOut(sub)
}

func (h *handler) yes(col column, sub model.Subscriber) ([]sms.Reply, error) {
	if col == colNew || col == colZipUnknown {
		return reply(sms.RequestZip), nil
	}
	sub, err := h.subscriberDao.AddSubscription(sub.Id, model.CouponAlerts)
	if err != nil {
		return nil, err
	}
	return optInSuccess(sub), nil
}

func (h *handler) zipCode(col column, sub model.Subscriber, zip string) ([]sms.Reply, error) {
	sub, err := h.subscriberDao.SetZip(sub.Id, zip, h.siteId(zip))
	if err != nil {
		return nil, err
	}
	if col == colSubscribed {
		return optInSuccess(sub), nil
	}
	return reply(sms.RequestDoubleOptIn), nil
}

func (h *handler) advertiser(col column, sub model.Subscriber) ([]sms.Reply, error) {
	sub, err := h.subscriberDao.AddSubscription(sub.Id, model.AdvertiserList)
	if err != nil {
		return nil, err
	}
	if col == colNew || col == colZipUnknown {
		return reply(sms.RequestZip), nil
	}
	return optInSuccess(sub), nil
}

func (h *handler) emailWord(ctx context.Context, col column, res identity.Resolution) []sms.Reply {
	if col == colNew || col == colZipUnknown {
		return reply(sms.RequestZip)
	}
	if res.Consumer == nil {
		return reply(sms.RequestEmailAddress)
	}

	h.welcome(ctx, *res.Consumer, res.Subscriber)
	return []sms.Reply{{Template: sms.EmailSent, Context: map[string]string{"email": res.Consumer.Email}}}
}

// siteId returns the market site serving zip, or the default site.
func (h *handler) siteId(zip string) uint32 {
	site, err := h.siteDao.FindByZip(zip)
	if err != nil {
		if !dao.IsNotFound(err) {
			log.WarnIfErr(h.logger, "find site by zip", err)
		}
		return h.defaultSiteId
	}
	return site.Id
}

func (h *handler) welcome(ctx context.Context, consumer model.Consumer, sub model.Subscriber) {
	zip := sub.ZipPostal
	if !sub.ZipKnown() {
		zip = consumer.ZipPostal
	}
	err := h.notifier.Notify(ctx, notify.Welcome, consumer.Email, map[string]string{"zip": zip, "email": consumer.Email})
	log.WarnIfErr(h.logger, "send welcome email", err)
}
