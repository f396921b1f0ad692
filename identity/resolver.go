// Package identity resolves the sender of an inbound message to its mobile
// phone, subscriber and, when one is linked, consumer records.
package identity

import (
	"context"
	"fmt"

	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/log"
	"github.com/dilshat/sms-responder/model"
	"github.com/dilshat/sms-responder/util"
	"go.uber.org/zap"
)

// CarrierLookup finds the carrier code of a phone number.
type CarrierLookup interface {
	Lookup(ctx context.Context, number string) (string, error)
}

type Resolution struct {
	Phone      model.MobilePhone
	Subscriber model.Subscriber
	//nil when no consumer is linked to the subscriber
	Consumer *model.Consumer
	//identity was created by this message
	Created bool
	//an existing unverified phone got verified by this message
	NewlyVerified bool
}

type Resolver interface {
	//Resolve finds or creates the identity of number
	Resolve(ctx context.Context, number, network, zipHint string) (Resolution, error)
}

type resolver struct {
	phoneDao      dao.PhoneDao
	subscriberDao dao.SubscriberDao
	consumerDao   dao.ConsumerDao
	carrierDao    dao.CarrierDao
	lookup        CarrierLookup
	//carrier name used when neither the network nor the lookup resolve one
	fallback      string
	logger        *zap.Logger
}

// NewResolver returns a resolver. lookup may be nil when no lookup API is available,
// fallbackCarrier may be blank when phones without a known carrier stay unassigned.
func NewResolver(phoneDao dao.PhoneDao, subscriberDao dao.SubscriberDao, consumerDao dao.ConsumerDao,
	carrierDao dao.CarrierDao, lookup CarrierLookup, fallbackCarrier string, logger *zap.Logger) Resolver {
	return &resolver{
		phoneDao:      phoneDao,
		subscriberDao: subscriberDao,
		consumerDao:   consumerDao,
		carrierDao:    carrierDao,
		lookup:        lookup,
		fallback:      fallbackCarrier,
		logger:        logger.Named("resolver"),
	}
}

func (r *resolver) Resolve(ctx context.Context, number, network, zipHint string) (Resolution, error) {
	var res Resolution

	phone, err := r.phoneDao.GetOneByNumber(number)
	switch {
	case dao.IsNotFound(err):
		carrierId := r.carrierId(ctx, number, network, 0)
		phone, res.Created, err = r.create(number, carrierId, zipHint)
		if err != nil {
			return Resolution{}, err
		}
	case err != nil:
		return Resolution{}, fmt.Errorf("get phone: %w", err)
	default:
		res.NewlyVerified, err = r.refresh(ctx, &phone, network)
		if err != nil {
			return Resolution{}, err
		}
	}
	res.Phone = phone

	res.Subscriber, err = r.subscriberDao.GetOneById(phone.SubscriberId)
	if err != nil {
		return Resolution{}, fmt.Errorf("get subscriber %d: %w", phone.SubscriberId, err)
	}

	consumer, err := r.consumerDao.GetOneBySubscriberId(res.Subscriber.Id)
	if err == nil {
		res.Consumer = &consumer
	} else if !dao.IsNotFound(err) {
		return Resolution{}, fmt.Errorf("get consumer: %w", err)
	}

	return res, nil
}

// create stores a new subscriber and its verified phone. When a concurrent
// message for the same number wins the race the winner's phone is returned.
func (r *resolver) create(number string, carrierId uint32, zipHint string) (model.MobilePhone, bool, error) {
	zip := model.UnknownZip
	if len(zipHint) == 5 && util.IsDigits(zipHint) {
		zip = zipHint
	}

	phone, _, err := r.phoneDao.Create(
		model.MobilePhone{Number: number, Verified: true, CarrierId: carrierId},
		model.Subscriber{ZipPostal: zip},
	)
	if dao.IsDuplicate(err) {
		r.logger.Debug("phone created concurrently", log.Phone("number", number))
		phone, err = r.phoneDao.GetOneByNumber(number)
		if err != nil {
			return model.MobilePhone{}, false, fmt.Errorf("get phone after duplicate: %w", err)
		}
		return phone, false, nil
	}
	if err != nil {
		return model.MobilePhone{}, false, fmt.Errorf("create phone: %w", err)
	}

	r.logger.Info("identity created", log.Phone("number", number), zap.Uint32("subscriber", phone.SubscriberId))
	return phone, true, nil
}

// refresh corrects the carrier of an existing phone and verifies it.
// Returns true when the phone was not verified before.
func (r *resolver) refresh(ctx context.Context, phone *model.MobilePhone, network string) (bool, error) {
	changed := false
	newlyVerified := false

	if carrierId := r.carrierId(ctx, phone.Number, network, phone.CarrierId); carrierId != 0 && carrierId != phone.CarrierId {
		r.logger.Info("carrier changed", log.Phone("number", phone.Number),
			zap.Uint32("from", phone.CarrierId), zap.Uint32("to", carrierId))
		phone.CarrierId = carrierId
		changed = true
	}
	if !phone.Verified {
		phone.Verified = true
		newlyVerified = true
		changed = true
	}

	if changed {
		if err := r.phoneDao.Update(*phone); err != nil {
			return false, fmt.Errorf("update phone: %w", err)
		}
	}

	return newlyVerified, nil
}

// carrierId maps the network reported by the gateway to a carrier. Falls back
// to the lookup API and then to the fallback carrier when the network is
// unknown and the phone has no carrier. Returns 0 when no carrier can be determined.
func (r *resolver) carrierId(ctx context.Context, number, network string, current uint32) uint32 {
	id := r.resolveCarrier(ctx, number, network, current)
	if id != 0 || current != 0 || util.IsBlank(r.fallback) {
		return id
	}

	carrier, err := r.carrierDao.GetOneByName(r.fallback)
	if err != nil {
		r.logger.Warn("fallback carrier unavailable", zap.String("carrier", r.fallback), zap.Error(err))
		return 0
	}
	r.logger.Info("fallback carrier assigned", log.Phone("number", number), zap.String("carrier", carrier.Name))
	return carrier.Id
}

func (r *resolver) resolveCarrier(ctx context.Context, number, network string, current uint32) uint32 {
	if !util.IsBlank(network) {
		carrier, err := r.carrierDao.GetOneByName(network)
		if err == nil {
			return carrier.Id
		}
		if !dao.IsNotFound(err) {
			log.WarnIfErr(r.logger, "get carrier by network", err)
			return 0
		}
		r.logger.Warn("unknown carrier", zap.String("network", network), log.Phone("number", number))
	}

	if current != 0 || r.lookup == nil {
		return 0
	}

	code, err := r.lookup.Lookup(ctx, number)
	if err != nil {
		r.logger.Warn("carrier lookup failed", log.Phone("number", number), zap.Error(err))
		return 0
	}
	carrier, err := r.carrierDao.GetOneByCode(code)
	if err != nil {
		r.logger.Warn("unknown carrier code", zap.String("code", code), zap.Error(err))
		return 0
	}

	return carrier.Id
}
