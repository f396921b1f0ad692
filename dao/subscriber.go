package dao

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/sms-responder/model"
)

type SubscriberDao interface {
	//GetOneById returns subscriber by id
	GetOneById(id uint32) (model.Subscriber, error)
	//AddSubscription adds the subscriber to a distribution list, no-op if already there
	AddSubscription(id, list uint32) (model.Subscriber, error)
	//ClearSubscriptions removes the subscriber from every distribution list
	ClearSubscriptions(id uint32) (model.Subscriber, error)
	//SetZip updates zip code and market site
	SetZip(id uint32, zip string, siteId uint32) (model.Subscriber, error)
	//GetAll returns all subscribers
	GetAll() ([]model.Subscriber, error)
}

func NewSubscriberDao(db Db) SubscriberDao {
	return &subscriberDao{db: db}
}

type subscriberDao struct {
	db Db
}

func (d subscriberDao) GetOneById(id uint32) (subscriber model.Subscriber, err error) {
	err = d.db.One("Id", id, &subscriber)
	return
}

func (d subscriberDao) AddSubscription(id, list uint32) (model.Subscriber, error) {
	return d.modify(id, func(s *model.Subscriber) {
		if !s.HasSubscription(list) {
			s.Subscriptions = append(s.Subscriptions, list)
		}
	})
}

func (d subscriberDao) ClearSubscriptions(id uint32) (model.Subscriber, error) {
	return d.modify(id, func(s *model.Subscriber) {
		s.Subscriptions = []uint32{}
	})
}

func (d subscriberDao) SetZip(id uint32, zip string, siteId uint32) (model.Subscriber, error) {
	return d.modify(id, func(s *model.Subscriber) {
		s.ZipPostal = zip
		if siteId != 0 {
			s.SiteId = siteId
		}
	})
}

func (d subscriberDao) GetAll() (subscribers []model.Subscriber, err error) {
	err = d.db.All(&subscribers)
	return
}

// modify does read-modify-write inside a single write transaction so that
// concurrent updates of the same subscriber do not lose each other's changes.
func (d subscriberDao) modify(id uint32, fn func(s *model.Subscriber)) (model.Subscriber, error) {
	var subscriber model.Subscriber
	err := inTx(d.db, func(tx storm.Node) error {
		if err := tx.One("Id", id, &subscriber); err != nil {
			return err
		}
		fn(&subscriber)
		subscriber.UpdatedAt = time.Now()
		return tx.Save(&subscriber)
	})

	return subscriber, err
}
