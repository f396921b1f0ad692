package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/identity"
	"github.com/dilshat/sms-responder/log"
	"github.com/dilshat/sms-responder/model"
	"github.com/dilshat/sms-responder/notify"
	"github.com/dilshat/sms-responder/sms"
	"github.com/dilshat/sms-responder/util"
	"go.uber.org/zap"
)

// reconciliation is the result of matching an email address against the
// consumer records.
type reconciliation struct {
	consumer   model.Consumer
	subscriber model.Subscriber
	//address belongs to another subscriber or the subscriber has another consumer
	mismatch bool
	//consumer got linked to the subscriber by this message
	linked bool
	//subscriber zip was copied from the consumer
	zipFilled bool
}

func (h *handler) emailAddress(ctx context.Context, col column, res identity.Resolution, email string) ([]sms.Reply, error) {
	rec, err := h.reconcile(ctx, res, email)
	if err != nil {
		return nil, err
	}

	if rec.mismatch {
		return reply(sms.ConfirmByEmail), nil
	}

	if rec.zipFilled && (col == colNew || col == colZipUnknown) {
		col = colZipKnown
	}

	switch col {
	case colNew:
		return reply(sms.RequestZip), nil
	case colZipUnknown:
		h.welcome(ctx, rec.consumer, rec.subscriber)
		return reply(sms.RequestDoubleOptIn), nil
	case colZipKnown:
		if rec.linked {
			h.welcome(ctx, rec.consumer, rec.subscriber)
		}
		return reply(sms.RequestDoubleOptIn), nil
	default:
		return optInSuccess(rec.subscriber), nil
	}
}

// linkAttempts bounds the retries when a concurrent message wins a
// create or link race on the same address or subscriber.
const linkAttempts = 3

func (h *handler) reconcile(ctx context.Context, res identity.Resolution, email string) (reconciliation, error) {
	rec := reconciliation{subscriber: res.Subscriber}

	for attempt := 0; attempt < linkAttempts; attempt++ {
		//re-read on every attempt, the resolution may be stale
		_, err := h.consumerDao.GetOneBySubscriberId(res.Subscriber.Id)
		if err != nil && !dao.IsNotFound(err) {
			return rec, fmt.Errorf("get linked consumer: %w", err)
		}
		hasCurrent := err == nil

		consumer, err := h.consumerDao.GetOneByEmail(email)
		switch {
		case err == nil:
			rec, err = h.reconcileExisting(ctx, res, hasCurrent, consumer)
			if errors.Is(err, dao.ErrAlreadyLinked) || dao.IsDuplicate(err) {
				continue
			}
			return rec, err
		case !dao.IsNotFound(err):
			return rec, fmt.Errorf("get consumer: %w", err)
		}

		if hasCurrent {
			//subscriber is linked to another address, the new one stays unlinked
			consumer, err = h.consumerDao.Create(model.Consumer{Email: email})
			if dao.IsDuplicate(err) {
				continue
			}
			if err != nil {
				return rec, fmt.Errorf("create consumer: %w", err)
			}
			h.mismatch(ctx, res, consumer)
			rec.consumer = consumer
			rec.mismatch = true
			return rec, nil
		}

		consumer = model.Consumer{Email: email, SubscriberId: res.Subscriber.Id}
		if res.Subscriber.ZipKnown() {
			consumer.ZipPostal = res.Subscriber.ZipPostal
			consumer.SiteId = res.Subscriber.SiteId
		}
		//duplicate means the address or the subscriber got a consumer meanwhile
		consumer, err = h.consumerDao.Create(consumer)
		if dao.IsDuplicate(err) {
			continue
		}
		if err != nil {
			return rec, fmt.Errorf("create consumer: %w", err)
		}

		h.logger.Info("consumer created", zap.Uint32("consumer", consumer.Id), zap.Uint32("subscriber", res.Subscriber.Id))
		rec.consumer = consumer
		rec.linked = true
		return rec, nil
	}

	return rec, errors.New("link consumer: too many concurrent updates")
}

// reconcileExisting links an unlinked consumer to the subscriber. Link
// failures caused by a concurrent message are returned unwrapped so the
// caller can retry against fresh state.
func (h *handler) reconcileExisting(ctx context.Context, res identity.Resolution, hasCurrent bool, consumer model.Consumer) (reconciliation, error) {
	rec := reconciliation{consumer: consumer, subscriber: res.Subscriber}

	if consumer.SubscriberId == res.Subscriber.Id {
		return rec, nil
	}

	if consumer.HasSubscriber() || hasCurrent {
		h.mismatch(ctx, res, consumer)
		rec.mismatch = true
		return rec, nil
	}

	var zip string
	var siteId uint32
	if res.Subscriber.ZipKnown() {
		zip, siteId = res.Subscriber.ZipPostal, res.Subscriber.SiteId
	}
	linked, err := h.consumerDao.Link(consumer.Id, res.Subscriber.Id, zip, siteId)
	if errors.Is(err, dao.ErrAlreadyLinked) || dao.IsDuplicate(err) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("link consumer: %w", err)
	}
	h.logger.Info("consumer linked", zap.Uint32("consumer", linked.Id), zap.Uint32("subscriber", res.Subscriber.Id))
	rec.consumer = linked
	rec.linked = true

	if !res.Subscriber.ZipKnown() && !util.IsBlank(linked.ZipPostal) && linked.ZipPostal != model.UnknownZip {
		site := linked.SiteId
		if site == 0 {
			site = h.siteId(linked.ZipPostal)
		}
		sub, err := h.subscriberDao.SetZip(res.Subscriber.Id, linked.ZipPostal, site)
		if err != nil {
			return rec, fmt.Errorf("fill subscriber zip: %w", err)
		}
		rec.subscriber = sub
		rec.zipFilled = true
	}

	return rec, nil
}

// mismatch asks the owner of the address to confirm the phone by email.
// Nothing is overwritten.
func (h *handler) mismatch(ctx context.Context, res identity.Resolution, consumer model.Consumer) {
	h.logger.Warn("email mismatch", log.Phone("phone", res.Phone.Number),
		zap.Uint32("subscriber", res.Subscriber.Id), zap.Uint32("consumer", consumer.Id),
		zap.Uint32("consumer_subscriber", consumer.SubscriberId))

	err := h.notifier.Notify(ctx, notify.ConfirmPhone, consumer.Email,
		map[string]string{"phone": util.LastDigits(res.Phone.Number, log.VisibleDigits)})
	log.WarnIfErr(h.logger, "send confirm phone email", err)
}
